package storage

import (
	"context"
	"io"
)

// UploadResult 上传结果
// 故意不用 error 返回：单张图片失败不应中断商品写入流程，
// 调用方根据 Success 决定跳过还是入库
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Key     string `json:"key,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DeleteResult 删除结果
type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Storage S3 兼容对象存储的抽象，MinIO 实现适用于任何 S3 兼容服务
type Storage interface {
	// Upload 把数据流写入 folder 下，key 带时间戳前缀保证不覆盖
	Upload(ctx context.Context, reader io.Reader, size int64, contentType, folder, filename string) UploadResult
	// Delete 按 key 删除对象
	Delete(ctx context.Context, key string) DeleteResult
	// PublicURL 构造对象的公网访问地址
	PublicURL(key string) string
	// Owns 判断 URL 是否指向本存储 (外链图片不归我们管，删除时跳过)
	Owns(url string) bool
	// KeyFromURL 从公网 URL 反推对象 key，非本存储的 URL 返回空串
	KeyFromURL(url string) string
}
