package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// uploadProgressTTL 限定进度记录的存活时间，异常退出的上传不会永久残留。
const uploadProgressTTL = 24 * time.Hour

// UploadProgressRepository 在 Redis 中记录进行中上传的分片完成情况（位图）。
// 它只用于查询进度，不支持断点续传。
type UploadProgressRepository interface {
	StartUpload(ctx context.Context, objectKey string, totalParts int) error
	MarkPartUploaded(ctx context.Context, objectKey string, partNumber int) error
	GetUploadedParts(ctx context.Context, objectKey string) (uploaded []int, totalParts int, err error)
	DeleteUpload(ctx context.Context, objectKey string) error
}

type uploadProgressRepository struct {
	redisClient *redis.Client
}

// NewUploadProgressRepository 创建一个新的 UploadProgressRepository 实例。
func NewUploadProgressRepository(redisClient *redis.Client) UploadProgressRepository {
	return &uploadProgressRepository{redisClient: redisClient}
}

func bitmapKey(objectKey string) string { return "upload:parts:" + objectKey }
func totalKey(objectKey string) string  { return "upload:total:" + objectKey }

// StartUpload 记录总分片数并清除旧位图。
func (r *uploadProgressRepository) StartUpload(ctx context.Context, objectKey string, totalParts int) error {
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, bitmapKey(objectKey))
		pipe.Set(ctx, totalKey(objectKey), totalParts, uploadProgressTTL)
		return nil
	})
	return err
}

// MarkPartUploaded 把分片对应的位置 1。分片序号从 1 开始，位图下标从 0 开始。
func (r *uploadProgressRepository) MarkPartUploaded(ctx context.Context, objectKey string, partNumber int) error {
	key := bitmapKey(objectKey)
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetBit(ctx, key, int64(partNumber-1), 1)
		pipe.Expire(ctx, key, uploadProgressTTL)
		return nil
	})
	return err
}

// GetUploadedParts 返回已完成的分片序号（升序）与总分片数。
// 记录不存在时返回 redis.Nil。
func (r *uploadProgressRepository) GetUploadedParts(ctx context.Context, objectKey string) ([]int, int, error) {
	totalStr, err := r.redisClient.Get(ctx, totalKey(objectKey)).Result()
	if err != nil {
		return nil, 0, err
	}
	totalParts, err := strconv.Atoi(totalStr)
	if err != nil {
		return nil, 0, err
	}

	bitmap, err := r.redisClient.Get(ctx, bitmapKey(objectKey)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}
	return decodeBitmap(bitmap, totalParts), totalParts, nil
}

// DeleteUpload 删除进度记录。
func (r *uploadProgressRepository) DeleteUpload(ctx context.Context, objectKey string) error {
	return r.redisClient.Del(ctx, bitmapKey(objectKey), totalKey(objectKey)).Err()
}

// decodeBitmap 解析 Redis SETBIT 位图（每个字节高位在前）。
func decodeBitmap(bitmap []byte, totalParts int) []int {
	uploaded := make([]int, 0)
	for i := 0; i < totalParts; i++ {
		byteIndex := i / 8
		bitIndex := i % 8
		if byteIndex < len(bitmap) && (bitmap[byteIndex]>>(7-bitIndex))&1 == 1 {
			uploaded = append(uploaded, i+1)
		}
	}
	return uploaded
}
