package repository

import (
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

// VideoRepository 是上传协调器使用的元数据存储。
// Create 与 LinkToGroup 是两次独立的单行写入，没有跨调用的事务。
type VideoRepository interface {
	Create(video *model.Video) error
	LinkToGroup(groupID, videoID uint) error
	FindByGroupID(groupID uint) ([]model.Video, error)
	ExistsInGroup(groupID uint, name string) (bool, error)
}

type videoRepository struct {
	db *gorm.DB
}

// NewVideoRepository 创建一个新的 VideoRepository 实例。
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create 插入视频记录，成功后 video.ID 被回填。
func (r *videoRepository) Create(video *model.Video) error {
	return r.db.Create(video).Error
}

// LinkToGroup 插入 group_videos 记录。
func (r *videoRepository) LinkToGroup(groupID, videoID uint) error {
	return r.db.Create(&model.GroupVideo{GroupID: groupID, VideoID: videoID}).Error
}

// FindByGroupID 返回群组下未删除的视频，按创建时间倒序。
func (r *videoRepository) FindByGroupID(groupID uint) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.Model(&model.Video{}).
		Joins("JOIN group_videos ON group_videos.video_id = videos.id").
		Where("group_videos.group_id = ? AND videos.is_deleted = ?", groupID, false).
		Order("videos.created_at desc").
		Find(&videos).Error
	return videos, err
}

// ExistsInGroup 判断群组中是否已有同名视频，供启动时的种子导入做幂等检查。
func (r *videoRepository) ExistsInGroup(groupID uint, name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Video{}).
		Joins("JOIN group_videos ON group_videos.video_id = videos.id").
		Where("group_videos.group_id = ? AND videos.name = ? AND videos.is_deleted = ?", groupID, name, false).
		Count(&count).Error
	return count > 0, err
}
