// Package objectstore 负责附件在对象存储上的地址：签发直传 URL、补全公开访问地址
// 服务端从不经手文件内容
package objectstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"event-submission-system/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Store struct {
	Endpoint     string
	BaseURL      string
	Bucket       string
	Region       string
	Prefix       string
	UsePathStyle bool

	accessKey string
	secretKey string

	mu       sync.Mutex
	s3Client *s3.Client
}

var (
	defaultStore *Store
	once         sync.Once
)

// Default 使用全局配置构建的 Store
func Default() *Store {
	once.Do(func() {
		defaultStore = New(config.Get().S3)
	})
	return defaultStore
}

func New(cfg config.S3) *Store {
	return &Store{
		Endpoint:     cfg.Endpoint,
		BaseURL:      cfg.BaseURL,
		Bucket:       cfg.Bucket,
		Region:       cfg.Region,
		Prefix:       cfg.Prefix,
		UsePathStyle: cfg.UsePathStyle,
		accessKey:    cfg.AccessKey,
		secretKey:    cfg.SecretAccessKey,
	}
}

// InitS3 懒加载 S3 客户端
func (s *Store) InitS3(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.s3Client != nil {
		return nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.Region),
	}
	if s.accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.accessKey, s.secretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("加载 S3 配置失败: %w", err)
	}

	s.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = s.UsePathStyle
	})
	return nil
}

func (s *Store) client(ctx context.Context) (*s3.Client, error) {
	if err := s.InitS3(ctx); err != nil {
		return nil, err
	}
	return s.s3Client, nil
}

func (s *Store) publicBase() string {
	base := strings.TrimRight(s.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(s.Endpoint, "/")
	}
	return base
}

// PublicURL 对象 key 的公开访问地址
func (s *Store) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	base := s.publicBase()
	if s.UsePathStyle && s.Bucket != "" {
		return base + "/" + s.Bucket + "/" + key
	}
	return base + "/" + key
}

// ResolveURL 将存储的相对路径补全为绝对地址，已是绝对地址的原样返回
func (s *Store) ResolveURL(raw string) string {
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(raw, "//") {
		return raw
	}
	if s.publicBase() == "" {
		return raw
	}
	return s.PublicURL(raw)
}
