// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"vidhub-go/internal/config"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/metrics"
	"vidhub-go/pkg/storage"
	"vidhub-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// VideoContentType 是所有视频对象统一使用的 Content-Type。
const VideoContentType = "video/mp4"

const objectKeyIDLength = 10

var (
	// ErrFileTooLarge 表示文件超过配置的大小上限。
	ErrFileTooLarge = errors.New("文件大小超过上限")
	// ErrUnsupportedFileType 表示文件扩展名不在支持列表中。
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
	// ErrMetadata 表示写入视频元数据失败，此时尚未调用对象存储。
	ErrMetadata = errors.New("写入视频元数据失败")
	// ErrStorage 表示分片上传会话的某一步失败。
	ErrStorage = errors.New("对象存储上传失败")
	// ErrUploadNotFound 表示没有进行中的上传记录。
	ErrUploadNotFound = errors.New("上传记录不存在")
)

// supportedExtensions 列出接受的视频扩展名（不含点）。
var supportedExtensions = map[string]string{
	"mp4": "MP4视频",
	"m4v": "MP4视频",
}

// UploadRequest 是一次视频上传的输入，File 只会被顺序读取一次。
type UploadRequest struct {
	File      io.Reader
	Size      int64
	FileName  string
	Extension string
	GroupID   uint
}

// UploadResult 是上传成功后的结果。
type UploadResult struct {
	VideoID   uint   `json:"videoId"`
	ObjectKey string `json:"objectKey"`
	Size      int64  `json:"size"`
	Parts     int    `json:"parts"`
}

// EventPublisher 发布上传完成事件。
type EventPublisher interface {
	PublishVideoUploaded(ctx context.Context, task tasks.VideoUploadedTask) error
}

// UploadService 接口定义了视频上传相关的业务操作。
type UploadService interface {
	UploadVideo(ctx context.Context, req UploadRequest) (*UploadResult, error)
	GetUploadProgress(ctx context.Context, objectKey string) (uploadedParts []int, totalParts int, err error)
	GetSupportedFileTypes() map[string]interface{}
}

type uploadService struct {
	groupRepo    repository.GroupRepository
	videoRepo    repository.VideoRepository
	progressRepo repository.UploadProgressRepository
	store        storage.ObjectStore
	publisher    EventPublisher
	observer     metrics.Observer
	storageCfg   config.StorageConfig
}

// NewUploadService 创建一个新的 UploadService 实例。publisher 为 nil 时不发送事件。
func NewUploadService(
	groupRepo repository.GroupRepository,
	videoRepo repository.VideoRepository,
	progressRepo repository.UploadProgressRepository,
	store storage.ObjectStore,
	publisher EventPublisher,
	observer metrics.Observer,
	storageCfg config.StorageConfig,
) UploadService {
	if observer == nil {
		observer = metrics.NopObserver{}
	}
	return &uploadService{
		groupRepo:    groupRepo,
		videoRepo:    videoRepo,
		progressRepo: progressRepo,
		store:        store,
		publisher:    publisher,
		observer:     observer,
		storageCfg:   storageCfg,
	}
}

// uploadSession 是一次上传调用期间的内存状态，不会持久化。
type uploadSession struct {
	handle *storage.MultipartSession
	parts  []storage.CompletedPart
	offset int64
}

// UploadVideo 把请求中的文件以分片上传的方式写入对象存储，并关联到群组。
// 顺序固定为：校验 → 确认群组存在 → 生成 key → 写元数据 → 开启会话 → 顺序上传分片 → 提交清单。
// 元数据先于对象写入，因此失败时可能留下指向不存在对象的视频记录。
func (s *uploadService) UploadVideo(ctx context.Context, req UploadRequest) (result *UploadResult, err error) {
	start := time.Now()
	var parts int
	defer func() {
		s.observer.RecordUpload(time.Since(start), req.Size, parts, err)
	}()

	log.Infof("[UploadVideo] 开始上传视频，文件名: %s, 大小: %d, 群组ID: %d", req.FileName, req.Size, req.GroupID)

	// 1. 校验，所有检查都在任何 I/O 之前完成
	if req.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if s.storageCfg.MaxFileSizeBytes > 0 && req.Size > s.storageCfg.MaxFileSizeBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, req.Size, s.storageCfg.MaxFileSizeBytes)
	}
	ext := normalizeExtension(req.Extension)
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, req.Extension)
	}
	plan, err := PlanChunks(req.Size, s.storageCfg.PartSizeBytes, s.storageCfg.MaxParts)
	if err != nil {
		return nil, err
	}
	parts = len(plan)

	// 2. 群组必须存在，否则不写任何元数据也不触碰存储
	if _, err := s.groupRepo.FindByID(req.GroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrGroupNotFound, req.GroupID)
		}
		log.Errorf("[UploadVideo] 查询群组失败, groupID: %d, error: %v", req.GroupID, err)
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	// 3. 生成对象 key
	id, err := gonanoid.New(objectKeyIDLength)
	if err != nil {
		return nil, fmt.Errorf("生成对象 key 失败: %w", err)
	}
	objectKey := id + "." + ext

	// 4. 写入元数据
	video := &model.Video{
		Name:      req.FileName,
		ObjectKey: objectKey,
		Size:      req.Size,
		IsPublic:  true,
	}
	if err := s.videoRepo.Create(video); err != nil {
		log.Errorf("[UploadVideo] 创建视频记录失败, objectKey: %s, error: %v", objectKey, err)
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if err := s.videoRepo.LinkToGroup(req.GroupID, video.ID); err != nil {
		log.Errorf("[UploadVideo] 关联群组失败, videoID: %d, groupID: %d, error: %v", video.ID, req.GroupID, err)
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}

	// 5. 开启分片上传会话
	handle, err := s.store.BeginMultipartUpload(ctx, s.storageCfg.BucketName, objectKey, VideoContentType)
	if err != nil {
		log.Errorf("[UploadVideo] 开启分片上传失败, objectKey: %s, error: %v", objectKey, err)
		return nil, fmt.Errorf("%w: 开启会话: %v", ErrStorage, err)
	}
	session := &uploadSession{handle: handle, parts: make([]storage.CompletedPart, 0, len(plan))}
	if err := s.progressRepo.StartUpload(ctx, objectKey, len(plan)); err != nil {
		log.Warnf("[UploadVideo] 记录上传进度失败, objectKey: %s, error: %v", objectKey, err)
	}
	defer func() {
		if err := s.progressRepo.DeleteUpload(context.WithoutCancel(ctx), objectKey); err != nil {
			log.Warnf("[UploadVideo] 清理上传进度失败, objectKey: %s, error: %v", objectKey, err)
		}
	}()

	// 6. 按序上传分片，整个上传只复用一个缓冲区
	if err := s.uploadParts(ctx, session, plan, req.File); err != nil {
		s.abort(ctx, session)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// 7. 提交清单，失败时不清理已上传的分片
	if err := s.store.CompleteMultipartUpload(ctx, session.handle, session.parts); err != nil {
		log.Errorf("[UploadVideo] 提交分片清单失败, objectKey: %s, uploadID: %s, error: %v", objectKey, handle.UploadID, err)
		return nil, fmt.Errorf("%w: 提交清单: %v", ErrStorage, err)
	}

	s.publish(ctx, tasks.VideoUploadedTask{
		VideoID:     video.ID,
		GroupID:     req.GroupID,
		ObjectKey:   objectKey,
		FileName:    req.FileName,
		Size:        req.Size,
		Parts:       len(plan),
		ContentType: VideoContentType,
		UploadedAt:  time.Now(),
	})

	log.Infof("[UploadVideo] 视频上传完成, objectKey: %s, videoID: %d, 分片数: %d", objectKey, video.ID, len(plan))
	return &UploadResult{
		VideoID:   video.ID,
		ObjectKey: objectKey,
		Size:      req.Size,
		Parts:     len(plan),
	}, nil
}

// uploadParts 逐个读取并上传分片，遇到第一个错误即停止。
func (s *uploadService) uploadParts(ctx context.Context, session *uploadSession, plan []ChunkPart, file io.Reader) error {
	buf := make([]byte, plan[0].Length)
	for _, part := range plan {
		chunk := buf[:part.Length]
		if _, err := io.ReadFull(file, chunk); err != nil {
			log.Errorf("[UploadVideo] 读取分片失败, objectKey: %s, part: %d, offset: %d, error: %v", session.handle.Key, part.PartNumber, part.Offset, err)
			return fmt.Errorf("读取分片 %d: %w", part.PartNumber, err)
		}

		partStart := time.Now()
		etag, err := s.store.UploadPart(ctx, session.handle, part.PartNumber, bytes.NewReader(chunk), part.Length)
		s.observer.RecordPart(time.Since(partStart), part.Length, err)
		if err != nil {
			log.Errorf("[UploadVideo] 上传分片失败, objectKey: %s, part: %d, error: %v", session.handle.Key, part.PartNumber, err)
			return fmt.Errorf("上传分片 %d: %w", part.PartNumber, err)
		}

		session.parts = append(session.parts, storage.CompletedPart{PartNumber: part.PartNumber, ETag: etag})
		session.offset += part.Length
		if err := s.progressRepo.MarkPartUploaded(ctx, session.handle.Key, part.PartNumber); err != nil {
			log.Warnf("[UploadVideo] 标记分片进度失败, objectKey: %s, part: %d, error: %v", session.handle.Key, part.PartNumber, err)
		}
	}
	return nil
}

// abort 放弃会话，使用不可取消的 context，保证请求被取消后仍能释放存储端的分片。
func (s *uploadService) abort(ctx context.Context, session *uploadSession) {
	if err := s.store.AbortMultipartUpload(context.WithoutCancel(ctx), session.handle); err != nil {
		log.Errorf("[UploadVideo] 放弃分片上传失败, objectKey: %s, uploadID: %s, error: %v", session.handle.Key, session.handle.UploadID, err)
		return
	}
	log.Infof("[UploadVideo] 已放弃分片上传, objectKey: %s, 已上传字节: %d", session.handle.Key, session.offset)
}

func (s *uploadService) publish(ctx context.Context, task tasks.VideoUploadedTask) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishVideoUploaded(ctx, task); err != nil {
		log.Warnf("[UploadVideo] 发送上传完成事件失败, objectKey: %s, error: %v", task.ObjectKey, err)
	}
}

// GetUploadProgress 返回进行中上传的已完成分片列表和总分片数。
func (s *uploadService) GetUploadProgress(ctx context.Context, objectKey string) ([]int, int, error) {
	uploaded, total, err := s.progressRepo.GetUploadedParts(ctx, objectKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, ErrUploadNotFound
		}
		log.Errorf("[GetUploadProgress] 从Redis获取上传进度失败, objectKey: %s, error: %v", objectKey, err)
		return nil, 0, err
	}
	return uploaded, total, nil
}

// GetSupportedFileTypes 返回系统支持的视频类型。
func (s *uploadService) GetSupportedFileTypes() map[string]interface{} {
	extensions := make([]string, 0, len(supportedExtensions))
	uniqueTypes := make(map[string]struct{})
	types := make([]string, 0)
	for ext, t := range supportedExtensions {
		extensions = append(extensions, "."+ext)
		if _, exists := uniqueTypes[t]; !exists {
			uniqueTypes[t] = struct{}{}
			types = append(types, t)
		}
	}
	sort.Strings(extensions)
	sort.Strings(types)

	return map[string]interface{}{
		"supportedExtensions": extensions,
		"supportedTypes":      types,
		"contentType":         VideoContentType,
		"maxFileSizeBytes":    s.storageCfg.MaxFileSizeBytes,
		"partSizeBytes":       s.storageCfg.PartSizeBytes,
		"description":         "系统支持的视频文件，上传后统一以 video/mp4 播放",
	}
}

// IsSupportedExtension 判断扩展名是否被接受，ext 可以带点也可以不带。
func IsSupportedExtension(ext string) bool {
	_, ok := supportedExtensions[normalizeExtension(ext)]
	return ok
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
