package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/storage"
	"vidhub-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
)

// fakeStore 记录所有调用，并可以在指定分片或步骤上注入错误。
type fakeStore struct {
	mu          sync.Mutex
	calls       []string
	partNumbers []int
	partSizes   []int64
	completed   []storage.CompletedPart
	objects     map[string][]byte
	uploaded    map[int][]byte

	beginErr    error
	failPart    int
	partErr     error
	completeErr error
	getErr      error
	abortCtxErr error

	// onPart 在分片数据上传前被调用，用于观察上传进行中的状态。
	onPart func(partNumber int)
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, uploaded: map[int][]byte{}}
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeStore) BeginMultipartUpload(_ context.Context, bucket, key, contentType string) (*storage.MultipartSession, error) {
	f.record("begin")
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &storage.MultipartSession{Bucket: bucket, Key: key, UploadID: "upload-" + key}, nil
}

func (f *fakeStore) UploadPart(_ context.Context, _ *storage.MultipartSession, partNumber int, data io.Reader, size int64) (string, error) {
	f.record("part")
	f.partNumbers = append(f.partNumbers, partNumber)
	f.partSizes = append(f.partSizes, size)
	if f.onPart != nil {
		f.onPart(partNumber)
	}
	if f.failPart == partNumber {
		return "", f.partErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if int64(len(b)) != size {
		return "", fmt.Errorf("part %d: got %d bytes, declared %d", partNumber, len(b), size)
	}
	f.uploaded[partNumber] = b
	return fmt.Sprintf("etag-%d", partNumber), nil
}

func (f *fakeStore) CompleteMultipartUpload(_ context.Context, session *storage.MultipartSession, parts []storage.CompletedPart) error {
	f.record("complete")
	f.completed = append([]storage.CompletedPart(nil), parts...)
	if f.completeErr != nil {
		return f.completeErr
	}
	var obj bytes.Buffer
	for _, p := range parts {
		obj.Write(f.uploaded[p.PartNumber])
	}
	f.objects[session.Key] = obj.Bytes()
	return nil
}

func (f *fakeStore) AbortMultipartUpload(ctx context.Context, _ *storage.MultipartSession) error {
	f.record("abort")
	f.abortCtxErr = ctx.Err()
	return nil
}

func (f *fakeStore) GetObject(_ context.Context, _, key string) (io.ReadCloser, error) {
	f.record("get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return io.NopCloser(bytes.NewReader(obj)), nil
}

// fakeVideoRepo 是内存中的 VideoRepository。
var (
	_ repository.VideoRepository          = (*fakeVideoRepo)(nil)
	_ repository.UploadProgressRepository = (*fakeProgressRepo)(nil)
	_ repository.GroupRepository          = (*fakeGroupRepo)(nil)
)

type fakeVideoRepo struct {
	videos    []*model.Video
	links     []model.GroupVideo
	createErr error
	linkErr   error
	store     *fakeStore
}

func (r *fakeVideoRepo) Create(video *model.Video) error {
	if r.store != nil {
		r.store.record("insertVideo")
	}
	if r.createErr != nil {
		return r.createErr
	}
	video.ID = uint(len(r.videos) + 1)
	video.CreatedAt = time.Now()
	r.videos = append(r.videos, video)
	return nil
}

func (r *fakeVideoRepo) LinkToGroup(groupID, videoID uint) error {
	if r.store != nil {
		r.store.record("linkGroup")
	}
	if r.linkErr != nil {
		return r.linkErr
	}
	r.links = append(r.links, model.GroupVideo{GroupID: groupID, VideoID: videoID})
	return nil
}

func (r *fakeVideoRepo) FindByGroupID(groupID uint) ([]model.Video, error) {
	var out []model.Video
	for _, l := range r.links {
		if l.GroupID != groupID {
			continue
		}
		for _, v := range r.videos {
			if v.ID == l.VideoID && !v.IsDeleted {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) ExistsInGroup(groupID uint, name string) (bool, error) {
	videos, _ := r.FindByGroupID(groupID)
	for _, v := range videos {
		if v.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// fakeProgressRepo 记录进度调用，可以注入错误以验证进度写入不影响上传。
type fakeProgressRepo struct {
	total   map[string]int
	marked  map[string][]int
	deleted []string
	err     error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{total: map[string]int{}, marked: map[string][]int{}}
}

func (r *fakeProgressRepo) StartUpload(_ context.Context, key string, totalParts int) error {
	r.total[key] = totalParts
	return r.err
}

func (r *fakeProgressRepo) MarkPartUploaded(_ context.Context, key string, partNumber int) error {
	r.marked[key] = append(r.marked[key], partNumber)
	return r.err
}

func (r *fakeProgressRepo) GetUploadedParts(_ context.Context, key string) ([]int, int, error) {
	total, ok := r.total[key]
	if !ok {
		return nil, 0, redis.Nil
	}
	return r.marked[key], total, nil
}

func (r *fakeProgressRepo) DeleteUpload(_ context.Context, key string) error {
	r.deleted = append(r.deleted, key)
	return r.err
}

type fakePublisher struct {
	tasks []tasks.VideoUploadedTask
	err   error
}

func (p *fakePublisher) PublishVideoUploaded(_ context.Context, task tasks.VideoUploadedTask) error {
	p.tasks = append(p.tasks, task)
	return p.err
}

type fakeObserver struct {
	uploads   int
	uploadErr error
	parts     int
	fetches   int
}

func (o *fakeObserver) RecordUpload(_ time.Duration, _ int64, _ int, err error) {
	o.uploads++
	o.uploadErr = err
}
func (o *fakeObserver) RecordPart(time.Duration, int64, error)  { o.parts++ }
func (o *fakeObserver) RecordFetch(time.Duration, int64, error) { o.fetches++ }
