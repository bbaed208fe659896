package storage

import (
	"context"
	"fmt"
	"io"
	"vidhub-go/internal/config"
	"vidhub-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// InitMinIO 初始化 MinIO Core 客户端并确保指定的存储桶存在。
// Core 暴露了底层的分片上传 API（NewMultipartUpload / PutObjectPart / CompleteMultipartUpload）。
func InitMinIO(ctx context.Context, cfg config.StorageConfig) (*minio.Core, error) {
	// 1. 初始化 MinIO 客户端
	core, err := minio.NewCore(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	// 2. 检查存储桶 (Bucket) 是否存在，如果不存在则创建
	bucketName := cfg.BucketName
	exists, err := core.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := core.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}
	return core, nil
}

// MinioStore 是基于 minio-go Core 的 ObjectStore 实现。
type MinioStore struct {
	core *minio.Core
}

// NewMinioStore 创建一个新的 MinioStore 实例。
func NewMinioStore(core *minio.Core) *MinioStore {
	return &MinioStore{core: core}
}

// BeginMultipartUpload 开启分片上传会话。
func (s *MinioStore) BeginMultipartUpload(ctx context.Context, bucket, key, contentType string) (*MultipartSession, error) {
	uploadID, err := s.core.NewMultipartUpload(ctx, bucket, key, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, err
	}
	return &MultipartSession{Bucket: bucket, Key: key, UploadID: uploadID}, nil
}

// UploadPart 上传单个分片。
func (s *MinioStore) UploadPart(ctx context.Context, session *MultipartSession, partNumber int, data io.Reader, size int64) (string, error) {
	part, err := s.core.PutObjectPart(ctx, session.Bucket, session.Key, session.UploadID, partNumber, data, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", err
	}
	return part.ETag, nil
}

// CompleteMultipartUpload 提交分片清单。
func (s *MinioStore) CompleteMultipartUpload(ctx context.Context, session *MultipartSession, parts []CompletedPart) error {
	completeParts := make([]minio.CompletePart, len(parts))
	for i, p := range parts {
		completeParts[i] = minio.CompletePart{PartNumber: p.PartNumber, ETag: p.ETag}
	}
	_, err := s.core.CompleteMultipartUpload(ctx, session.Bucket, session.Key, session.UploadID, completeParts, minio.PutObjectOptions{})
	return err
}

// AbortMultipartUpload 放弃分片上传会话。
func (s *MinioStore) AbortMultipartUpload(ctx context.Context, session *MultipartSession) error {
	return s.core.AbortMultipartUpload(ctx, session.Bucket, session.Key, session.UploadID)
}

// GetObject 读取对象。Core.GetObject 会立即发起请求，因此对象不存在时在这里就返回错误。
func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	body, _, _, err := s.core.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return body, nil
}

var _ ObjectStore = (*MinioStore)(nil)
