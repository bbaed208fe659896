package repository

import (
	"vidhub-go/internal/model"

	"gorm.io/gorm"
)

// GroupRepository 接口定义了群组及成员关系的数据操作方法。
type GroupRepository interface {
	Create(group *model.Group) error
	FindAll() ([]model.Group, error)
	FindByID(groupID uint) (*model.Group, error)
	AddMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建一个新的 GroupRepository 实例。
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

func (r *groupRepository) FindAll() ([]model.Group, error) {
	var groups []model.Group
	err := r.db.Order("id asc").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) FindByID(groupID uint) (*model.Group, error) {
	var group model.Group
	if err := r.db.First(&group, groupID).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember 插入 group_users 记录。
func (r *groupRepository) AddMember(groupID, userID uint) error {
	return r.db.Create(&model.GroupUser{GroupID: groupID, UserID: userID}).Error
}

func (r *groupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupUser{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
