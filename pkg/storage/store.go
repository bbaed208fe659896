// Package storage 提供了与 S3 兼容对象存储（MinIO、AWS S3、Cloudflare R2）交互的功能。
package storage

import (
	"context"
	"fmt"
	"io"
	"vidhub-go/internal/config"
)

// MultipartSession 是一次分片上传会话在存储端的句柄。
type MultipartSession struct {
	Bucket   string
	Key      string
	UploadID string
}

// CompletedPart 是已上传分片的回执：分片序号（从 1 开始）和存储端返回的 ETag。
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// ObjectStore 定义了上传协调器和播放服务所需的最小对象存储能力集。
type ObjectStore interface {
	// BeginMultipartUpload 在 bucket 中为 key 开启一个分片上传会话。
	BeginMultipartUpload(ctx context.Context, bucket, key, contentType string) (*MultipartSession, error)
	// UploadPart 上传一个分片并返回其 ETag。
	UploadPart(ctx context.Context, session *MultipartSession, partNumber int, data io.Reader, size int64) (string, error)
	// CompleteMultipartUpload 按 parts 的顺序提交清单，parts 必须按分片序号升序排列。
	CompleteMultipartUpload(ctx context.Context, session *MultipartSession, parts []CompletedPart) error
	// AbortMultipartUpload 放弃会话并释放存储端已上传的分片。
	AbortMultipartUpload(ctx context.Context, session *MultipartSession) error
	// GetObject 读取完整对象，调用方负责关闭返回的 ReadCloser。
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// NewObjectStore 根据 storage.driver 创建对应的对象存储实现。
func NewObjectStore(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Driver {
	case "", "minio":
		core, err := InitMinIO(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewMinioStore(core), nil
	case "s3":
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client), nil
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}
