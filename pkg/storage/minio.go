package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"whitelight-store/pkg/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage 基于 minio-go 的实现
type MinioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string // 不带末尾斜杠
}

// NewMinioStorage 初始化对象存储客户端
func NewMinioStorage(cfg config.StorageConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	log.Printf("Object storage ready: bucket=%s public=%s", cfg.Bucket, publicURL)
	return &MinioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// buildKey 时间戳前缀 + 随机段，保留原始扩展名
func buildKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "uploads"
	}
	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UnixMilli(), uuid.New().String()[:8], ext)
}

func (s *MinioStorage) Upload(ctx context.Context, reader io.Reader, size int64, contentType, folder, filename string) UploadResult {
	key := buildKey(folder, filename)

	// 公共读通过 x-amz-acl 头声明 (桶策略兜底)
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, reader, size, opts); err != nil {
		return UploadResult{Success: false, Error: err.Error()}
	}

	return UploadResult{Success: true, URL: s.PublicURL(key), Key: key}
}

func (s *MinioStorage) Delete(ctx context.Context, key string) DeleteResult {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return DeleteResult{Success: false, Error: err.Error()}
	}
	return DeleteResult{Success: true}
}

func (s *MinioStorage) PublicURL(key string) string {
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

func (s *MinioStorage) Owns(url string) bool {
	return strings.HasPrefix(url, s.publicURL+"/")
}

func (s *MinioStorage) KeyFromURL(url string) string {
	if !s.Owns(url) {
		return ""
	}
	return strings.TrimPrefix(url, s.publicURL+"/")
}
