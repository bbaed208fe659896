package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// calculateProgress 计算上传进度百分比。
func calculateProgress(uploadedParts []int, totalParts int) float64 {
	if totalParts == 0 {
		return 0.0
	}
	return (float64(len(uploadedParts)) / float64(totalParts)) * 100
}

// StorageHandler 负责视频上传与播放的 API 请求。
type StorageHandler struct {
	uploadService   service.UploadService
	playbackService service.PlaybackService
	maxBodyBytes    int64
}

// NewStorageHandler 创建一个新的 StorageHandler 实例。maxBodyBytes <= 0 表示不限制请求体大小。
func NewStorageHandler(uploadService service.UploadService, playbackService service.PlaybackService, maxBodyBytes int64) *StorageHandler {
	return &StorageHandler{
		uploadService:   uploadService,
		playbackService: playbackService,
		maxBodyBytes:    maxBodyBytes,
	}
}

// UploadVideo 处理 multipart 表单字段 "file" 的视频上传，并关联到路径中的群组。
func (h *StorageHandler) UploadVideo(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}

	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			log.Warnf("UploadVideo: request body exceeds %d bytes", h.maxBodyBytes)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"code": http.StatusRequestEntityTooLarge, "message": "请求体过大"})
			return
		}
		log.Warnf("UploadVideo: missing file field, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少文件字段 file"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("UploadVideo: failed to open uploaded file", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法读取上传文件"})
		return
	}
	defer file.Close()

	result, err := h.uploadService.UploadVideo(c.Request.Context(), service.UploadRequest{
		File:      file,
		Size:      fileHeader.Size,
		FileName:  fileHeader.Filename,
		Extension: filepath.Ext(fileHeader.Filename),
		GroupID:   groupID,
	})
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": "群组不存在"})
			return
		}
		if isValidationError(err) {
			log.Warnf("UploadVideo: rejected '%s', error: %v", fileHeader.Filename, err)
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		log.Error("UploadVideo: upload failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "视频上传失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}

// Playback 返回完整的视频字节。
func (h *StorageHandler) Playback(c *gin.Context) {
	key := c.Param("key")
	contentType, data, err := h.playbackService.Fetch(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "读取视频失败"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// GetUploadProgress 返回进行中上传的分片完成情况。
// 上传接口只在完成后才返回对象 key；进行中的 key 可通过 GET /api/v1/groups/:groupId/videos 获得，
// 视频记录在第一个分片上传之前就已写入。上传结束（成功或失败）后进度被清除，返回 404。
func (h *StorageHandler) GetUploadProgress(c *gin.Context) {
	key := c.Param("key")
	uploaded, total, err := h.uploadService.GetUploadProgress(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
			return
		}
		log.Error("GetUploadProgress: failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取上传进度失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"objectKey":     key,
			"uploadedParts": uploaded,
			"totalParts":    total,
			"progress":      calculateProgress(uploaded, total),
		},
	})
}

// GetSupportedTypes 返回支持的视频类型。
func (h *StorageHandler) GetSupportedTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.uploadService.GetSupportedFileTypes()})
}

func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyFile) ||
		errors.Is(err, service.ErrTooManyParts) ||
		errors.Is(err, service.ErrFileTooLarge) ||
		errors.Is(err, service.ErrUnsupportedFileType)
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
