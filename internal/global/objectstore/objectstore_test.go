package objectstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"event-submission-system/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	s := New(config.S3{BaseURL: "https://cdn.example.com/", Bucket: "files"})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"relative", "attachments/a.pdf", "https://cdn.example.com/attachments/a.pdf"},
		{"leading slash", "/attachments/a.pdf", "https://cdn.example.com/attachments/a.pdf"},
		{"absolute https", "https://other.example.com/x.png", "https://other.example.com/x.png"},
		{"absolute http upper", "HTTP://other.example.com/x.png", "HTTP://other.example.com/x.png"},
		{"protocol relative", "//other.example.com/x.png", "//other.example.com/x.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ResolveURL(tt.raw))
		})
	}
}

func TestPublicURLPathStyle(t *testing.T) {
	s := New(config.S3{Endpoint: "http://minio:9000", Bucket: "files", UsePathStyle: true})
	assert.Equal(t, "http://minio:9000/files/a/b.png", s.PublicURL("a/b.png"))
}

func TestResolveURLWithoutBase(t *testing.T) {
	s := New(config.S3{})
	assert.Equal(t, "attachments/a.pdf", s.ResolveURL("attachments/a.pdf"))
}

func TestObjectKey(t *testing.T) {
	s := New(config.S3{Prefix: "/prod/"})
	key := s.ObjectKey("Slides.PDF", time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "prod/attachments/20260309/"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"), key)
}

func TestPresignRequiresBucket(t *testing.T) {
	s := New(config.S3{})
	_, err := s.GeneratePresignedUploadURL(context.Background(), PresignedUploadRequest{Filename: "a.png"})
	require.ErrorIs(t, err, ErrBucketNotConfigured)
}

func TestPresignUploadURL(t *testing.T) {
	s := New(config.S3{
		Endpoint:        "http://127.0.0.1:9000",
		BaseURL:         "https://cdn.example.com",
		Bucket:          "files",
		Region:          "us-east-1",
		AccessKey:       "ak",
		SecretAccessKey: "sk",
		UsePathStyle:    true,
	})
	resp, err := s.GeneratePresignedUploadURL(context.Background(), PresignedUploadRequest{
		Filename:    "demo.mp4",
		ContentType: "video/mp4",
		Size:        1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "PUT", resp.Method)
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "https://cdn.example.com/files/"+resp.FileKey, resp.FileURL)
	assert.Equal(t, "video/mp4", resp.Headers["Content-Type"])
}
