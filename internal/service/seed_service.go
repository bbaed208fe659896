package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/log"

	"gorm.io/gorm"
)

// SeedImporter 在启动时把 <dir>/<groupId>/ 下的视频通过标准上传流程导入对应群组。
type SeedImporter struct {
	groupRepo repository.GroupRepository
	videoRepo repository.VideoRepository
	uploadSvc UploadService
}

// NewSeedImporter 创建一个新的 SeedImporter 实例。
func NewSeedImporter(groupRepo repository.GroupRepository, videoRepo repository.VideoRepository, uploadSvc UploadService) *SeedImporter {
	return &SeedImporter{groupRepo: groupRepo, videoRepo: videoRepo, uploadSvc: uploadSvc}
}

// Import 扫描目录并导入（幂等）：群组中已有同名视频的文件会被跳过。返回成功导入的文件数。
func (s *SeedImporter) Import(ctx context.Context, dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Infof("[SeedImporter] 目录 '%s' 不存在或不可用，跳过初始化导入", dir)
		return 0
	}

	imported := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		groupID, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			log.Warnf("[SeedImporter] 子目录名不是群组 ID，跳过: %s", entry.Name())
			continue
		}
		if _, err := s.groupRepo.FindByID(uint(groupID)); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warnf("[SeedImporter] 群组 %d 不存在，跳过目录", groupID)
			} else {
				log.Errorf("[SeedImporter] 查询群组 %d 失败: %v", groupID, err)
			}
			continue
		}
		imported += s.importGroup(ctx, filepath.Join(dir, entry.Name()), uint(groupID))
	}
	log.Infof("[SeedImporter] 初始化导入完成，共导入 %d 个视频", imported)
	return imported
}

func (s *SeedImporter) importGroup(ctx context.Context, dir string, groupID uint) int {
	files, err := os.ReadDir(dir)
	if err != nil {
		log.Warnf("[SeedImporter] 读取目录失败: %s, err=%v", dir, err)
		return 0
	}

	imported := 0
	for _, f := range files {
		if ctx.Err() != nil {
			return imported
		}
		if f.IsDir() || !IsSupportedExtension(filepath.Ext(f.Name())) {
			continue
		}
		exists, err := s.videoRepo.ExistsInGroup(groupID, f.Name())
		if err != nil {
			log.Warnf("[SeedImporter] 幂等检查失败: %s, err=%v", f.Name(), err)
			continue
		}
		if exists {
			log.Infof("[SeedImporter] 已存在，跳过: %s (group=%d)", f.Name(), groupID)
			continue
		}
		if err := s.importFile(ctx, filepath.Join(dir, f.Name()), groupID); err != nil {
			log.Warnf("[SeedImporter] 导入失败: %s, err=%v", f.Name(), err)
			continue
		}
		imported++
	}
	return imported
}

func (s *SeedImporter) importFile(ctx context.Context, path string, groupID uint) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	res, err := s.uploadSvc.UploadVideo(ctx, UploadRequest{
		File:      file,
		Size:      info.Size(),
		FileName:  info.Name(),
		Extension: filepath.Ext(info.Name()),
		GroupID:   groupID,
	})
	if err != nil {
		return err
	}
	log.Infof("[SeedImporter] 导入完成: %s -> %s", info.Name(), res.ObjectKey)
	return nil
}
