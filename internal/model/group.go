package model

import "time"

// Group 对应于数据库中的 'groups' 表，视频归属于群组。
type Group struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);not null" json:"name"`
	// Password 为空表示加入群组无需密码。
	Password  string    `gorm:"type:varchar(255)" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Group) TableName() string {
	return "groups"
}

// GroupUser 记录用户加入的群组。
type GroupUser struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"groupId"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_group_user" json:"userId"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

func (GroupUser) TableName() string {
	return "group_users"
}
