package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/metrics"
	"vidhub-go/pkg/storage"
)

// ErrFetch 表示读取对象失败。对象不存在和存储不可达不做区分。
var ErrFetch = errors.New("读取视频失败")

// PlaybackService 按对象 key 读取完整视频。
type PlaybackService interface {
	Fetch(ctx context.Context, objectKey string) (contentType string, data []byte, err error)
}

type playbackService struct {
	store      storage.ObjectStore
	bucketName string
	observer   metrics.Observer
}

// NewPlaybackService 创建一个新的 PlaybackService 实例。
func NewPlaybackService(store storage.ObjectStore, bucketName string, observer metrics.Observer) PlaybackService {
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &playbackService{store: store, bucketName: bucketName, observer: observer}
}

// Fetch 每次都从存储重新读取整个对象，没有缓存也不重试。
func (s *playbackService) Fetch(ctx context.Context, objectKey string) (contentType string, data []byte, err error) {
	start := time.Now()
	defer func() {
		s.observer.RecordFetch(time.Since(start), int64(len(data)), err)
	}()

	body, err := s.store.GetObject(ctx, s.bucketName, objectKey)
	if err != nil {
		log.Errorf("[Fetch] 获取对象失败, objectKey: %s, error: %v", objectKey, err)
		return "", nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		log.Errorf("[Fetch] 读取对象内容失败, objectKey: %s, error: %v", objectKey, err)
		return "", nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return VideoContentType, buf.Bytes(), nil
}
