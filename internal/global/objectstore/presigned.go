package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultUploadExpires = 15 * time.Minute

var ErrBucketNotConfigured = errors.New("S3 bucket 未配置")

// PresignedUploadRequest 预签名上传请求参数
type PresignedUploadRequest struct {
	Filename    string        // 原始文件名
	ContentType string        // 文件 MIME 类型
	Size        int64         // 声明的文件大小，写入 Content-Length 签名
	ExpiresIn   time.Duration // 默认 15 分钟
}

// PresignedUploadResponse 预签名上传响应
type PresignedUploadResponse struct {
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// ObjectKey 前缀/日期/uuid+扩展名
func (s *Store) ObjectKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	key := path.Join(strings.Trim(s.Prefix, "/"), "attachments", now.Format("20060102"), uuid.NewString()+ext)
	return strings.TrimLeft(key, "/")
}

// GeneratePresignedUploadURL 前端凭此 URL 直接 PUT 到对象存储
func (s *Store) GeneratePresignedUploadURL(ctx context.Context, req PresignedUploadRequest) (*PresignedUploadResponse, error) {
	if s.Bucket == "" {
		return nil, ErrBucketNotConfigured
	}
	if req.Filename == "" {
		return nil, fmt.Errorf("文件名不能为空")
	}
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	if req.ExpiresIn <= 0 {
		req.ExpiresIn = defaultUploadExpires
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := s.ObjectKey(req.Filename, time.Now())

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}
	if req.Size > 0 {
		input.ContentLength = aws.Int64(req.Size)
	}

	presignedReq, err := s3.NewPresignClient(client).PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = req.ExpiresIn
	})
	if err != nil {
		return nil, fmt.Errorf("生成预签名 URL 失败: %w", err)
	}

	resp := &PresignedUploadResponse{
		UploadURL: presignedReq.URL,
		FileKey:   key,
		FileURL:   s.PublicURL(key),
		ExpiresAt: time.Now().Add(req.ExpiresIn),
		Method:    presignedReq.Method,
		Headers: map[string]string{
			"Content-Type": contentType,
		},
	}
	for k, v := range presignedReq.SignedHeader {
		if len(v) > 0 {
			resp.Headers[k] = v[0]
		}
	}
	return resp, nil
}
