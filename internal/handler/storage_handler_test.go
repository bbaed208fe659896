package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"vidhub-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUploadService struct {
	got      service.UploadRequest
	body     []byte
	err      error
	progress []int
	total    int
	progErr  error
}

func (s *stubUploadService) UploadVideo(_ context.Context, req service.UploadRequest) (*service.UploadResult, error) {
	s.got = req
	s.body, _ = io.ReadAll(req.File)
	if s.err != nil {
		return nil, s.err
	}
	return &service.UploadResult{VideoID: 1, ObjectKey: "abcdefghij.mp4", Size: req.Size, Parts: 1}, nil
}

func (s *stubUploadService) GetUploadProgress(context.Context, string) ([]int, int, error) {
	return s.progress, s.total, s.progErr
}

func (s *stubUploadService) GetSupportedFileTypes() map[string]interface{} {
	return map[string]interface{}{"supportedExtensions": []string{".mp4"}}
}

type stubPlaybackService struct {
	data []byte
	err  error
}

func (s *stubPlaybackService) Fetch(context.Context, string) (string, []byte, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return service.VideoContentType, s.data, nil
}

func newStorageRouter(h *StorageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload/video/:groupId", h.UploadVideo)
	r.GET("/playback/:key", h.Playback)
	r.GET("/uploads/:key/progress", h.GetUploadProgress)
	r.GET("/supported-types", h.GetSupportedTypes)
	return r
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUploadVideo_Success(t *testing.T) {
	svc := &stubUploadService{}
	r := newStorageRouter(NewStorageHandler(svc, &stubPlaybackService{}, 1<<20))
	body, contentType := multipartBody(t, "file", "holiday.mp4", []byte("fake video"))

	req := httptest.NewRequest(http.MethodPost, "/upload/video/12", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(12), svc.got.GroupID)
	assert.Equal(t, ".mp4", svc.got.Extension)
	assert.Equal(t, "holiday.mp4", svc.got.FileName)
	assert.Equal(t, int64(10), svc.got.Size)
	assert.Equal(t, []byte("fake video"), svc.body)

	env := decodeEnvelope(t, rec)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "abcdefghij.mp4", data["objectKey"])
}

func TestUploadVideo_StatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrEmptyFile, http.StatusBadRequest},
		{fmt.Errorf("%w: \"avi\"", service.ErrUnsupportedFileType), http.StatusBadRequest},
		{service.ErrTooManyParts, http.StatusBadRequest},
		{service.ErrFileTooLarge, http.StatusBadRequest},
		{fmt.Errorf("%w: 99", service.ErrGroupNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: boom", service.ErrMetadata), http.StatusInternalServerError},
		{fmt.Errorf("%w: boom", service.ErrStorage), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r := newStorageRouter(NewStorageHandler(&stubUploadService{err: tt.err}, &stubPlaybackService{}, 1<<20))
			body, contentType := multipartBody(t, "file", "a.mp4", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/upload/video/1", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestUploadVideo_RejectsBadRequests(t *testing.T) {
	svc := &stubUploadService{}
	r := newStorageRouter(NewStorageHandler(svc, &stubPlaybackService{}, 1<<20))

	body, contentType := multipartBody(t, "file", "a.mp4", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/upload/video/abc", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-numeric group id")

	body, contentType = multipartBody(t, "video", "a.mp4", []byte("x"))
	req = httptest.NewRequest(http.MethodPost, "/upload/video/1", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong field name")

	assert.Nil(t, svc.got.File, "service must not be called")
}

func TestUploadVideo_BodyLimit(t *testing.T) {
	svc := &stubUploadService{}
	r := newStorageRouter(NewStorageHandler(svc, &stubPlaybackService{}, 512))
	body, contentType := multipartBody(t, "file", "big.mp4", bytes.Repeat([]byte("v"), 4096))

	req := httptest.NewRequest(http.MethodPost, "/upload/video/1", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, svc.got.File)
}

func TestPlayback(t *testing.T) {
	r := newStorageRouter(NewStorageHandler(&stubUploadService{}, &stubPlaybackService{data: []byte("mp4 bytes")}, 0))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playback/abc.mp4", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp4 bytes", rec.Body.String())

	r = newStorageRouter(NewStorageHandler(&stubUploadService{}, &stubPlaybackService{err: service.ErrFetch}, 0))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playback/missing.mp4", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetUploadProgress(t *testing.T) {
	svc := &stubUploadService{progress: []int{1, 2}, total: 4}
	r := newStorageRouter(NewStorageHandler(svc, &stubPlaybackService{}, 0))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/k.mp4/progress", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["progress"])
	assert.Equal(t, float64(4), data["totalParts"])

	svc.progErr = service.ErrUploadNotFound
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/k.mp4/progress", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSupportedTypes(t *testing.T) {
	r := newStorageRouter(NewStorageHandler(&stubUploadService{}, &stubPlaybackService{}, 0))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/supported-types", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".mp4")
}
