package service

import (
	"errors"
	"strings"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/hash"
	"vidhub-go/pkg/log"

	"gorm.io/gorm"
)

var (
	// ErrGroupNotFound 表示群组不存在。
	ErrGroupNotFound = errors.New("群组不存在")
	// ErrWrongGroupPassword 表示加入群组的密码错误。
	ErrWrongGroupPassword = errors.New("群组密码错误")
	// ErrAlreadyMember 表示用户已在群组中。
	ErrAlreadyMember = errors.New("已经是群组成员")
)

// GroupService 接口定义了群组相关的业务操作。
type GroupService interface {
	CreateGroup(name, password string, creatorID uint) (*model.Group, error)
	ListGroups() ([]model.Group, error)
	JoinGroup(groupID, userID uint, password string) error
	ListGroupVideos(groupID uint) ([]model.VideoDTO, error)
}

type groupService struct {
	groupRepo repository.GroupRepository
	videoRepo repository.VideoRepository
}

// NewGroupService 创建一个新的 GroupService 实例。
func NewGroupService(groupRepo repository.GroupRepository, videoRepo repository.VideoRepository) GroupService {
	return &groupService{groupRepo: groupRepo, videoRepo: videoRepo}
}

// CreateGroup 创建群组，创建者自动成为成员。password 为空表示无需密码即可加入。
func (s *groupService) CreateGroup(name, password string, creatorID uint) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	group := &model.Group{Name: name}
	if password != "" {
		hashed, err := hash.HashPassword(password)
		if err != nil {
			return nil, err
		}
		group.Password = hashed
	}
	if err := s.groupRepo.Create(group); err != nil {
		log.Errorf("[GroupService] 创建群组失败, name: %s, error: %v", name, err)
		return nil, err
	}
	if err := s.groupRepo.AddMember(group.ID, creatorID); err != nil {
		log.Errorf("[GroupService] 添加群组创建者失败, groupID: %d, userID: %d, error: %v", group.ID, creatorID, err)
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups() ([]model.Group, error) {
	return s.groupRepo.FindAll()
}

// JoinGroup 校验密码后把用户加入群组。
func (s *groupService) JoinGroup(groupID, userID uint, password string) error {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if group.Password != "" && !hash.CheckPasswordHash(password, group.Password) {
		return ErrWrongGroupPassword
	}

	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	return s.groupRepo.AddMember(groupID, userID)
}

// ListGroupVideos 返回群组内未删除的视频。
func (s *groupService) ListGroupVideos(groupID uint) ([]model.VideoDTO, error) {
	if _, err := s.groupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	videos, err := s.videoRepo.FindByGroupID(groupID)
	if err != nil {
		return nil, err
	}
	dtos := make([]model.VideoDTO, 0, len(videos))
	for _, v := range videos {
		dtos = append(dtos, model.NewVideoDTO(v))
	}
	return dtos, nil
}
