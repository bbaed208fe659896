package model

import "time"

// Video 对应于数据库中的 'videos' 表。
// 该记录在对象上传完成之前写入，因此 ObjectKey 指向的对象可能并不存在。
type Video struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ObjectKey string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"objectKey"`
	Size      int64     `gorm:"not null" json:"size"`
	IsDeleted bool      `gorm:"not null;default:false" json:"isDeleted"`
	IsPublic  bool      `gorm:"not null;default:true" json:"isPublic"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Video) TableName() string {
	return "videos"
}

// GroupVideo 把视频关联到群组。
type GroupVideo struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID uint `gorm:"not null;index" json:"groupId"`
	VideoID uint `gorm:"not null;index" json:"videoId"`
}

func (GroupVideo) TableName() string {
	return "group_videos"
}

// VideoDTO 是返回给前端的视频信息。
type VideoDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	ObjectKey string    `json:"objectKey"`
	Size      int64     `json:"size"`
	CreatedAt LocalTime `json:"createdAt"`
}

// NewVideoDTO 把 Video 转换为 VideoDTO。
func NewVideoDTO(v Video) VideoDTO {
	return VideoDTO{
		ID:        v.ID,
		Name:      v.Name,
		ObjectKey: v.ObjectKey,
		Size:      v.Size,
		CreatedAt: LocalTime(v.CreatedAt),
	}
}

// AllModels 返回需要 AutoMigrate 的全部模型。
func AllModels() []interface{} {
	return []interface{}{&User{}, &Group{}, &GroupUser{}, &Video{}, &GroupVideo{}}
}
