// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

const (
	// RoleAdmin 管理员角色
	RoleAdmin = "ADMIN"
	// RoleUser 普通注册用户角色
	RoleUser = "USER"
)

// User 对应于数据库中的 'users' 表。
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"type:varchar(100);not null" json:"username"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	// Password 保存 bcrypt 哈希，从不序列化到响应中。
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	IsDeleted bool      `gorm:"not null;default:false" json:"isDeleted"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
