package service

import (
	"errors"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/log"

	"gorm.io/gorm"
)

// UserListResponse 定义了用户列表 API 的响应结构。
type UserListResponse struct {
	Content       []UserDetailResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// UserDetailResponse 定义了用户列表项的详细结构。
type UserDetailResponse struct {
	UserID    uint            `json:"userId"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	IsDeleted bool            `json:"isDeleted"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// AdminService 接口定义了所有管理员相关的业务操作。
type AdminService interface {
	ListUsers(page, size int) (*UserListResponse, error)
	DeleteUser(userID uint) error
	RestoreUser(userID uint) error
}

// adminService 是 AdminService 接口的实现。
type adminService struct {
	userRepo repository.UserRepository
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

// ListUsers 以分页的形式返回用户列表，page 从 1 开始。
func (s *adminService) ListUsers(page, size int) (*UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	offset := (page - 1) * size
	users, total, err := s.userRepo.FindWithPagination(offset, size)
	if err != nil {
		return nil, err
	}

	userResponses := make([]UserDetailResponse, 0, len(users))
	for _, u := range users {
		userResponses = append(userResponses, UserDetailResponse{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			IsDeleted: u.IsDeleted,
			CreatedAt: model.LocalTime(u.CreatedAt),
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}

	return &UserListResponse{
		Content:       userResponses,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}

// DeleteUser 软删除用户，被删除的用户无法登录，已签发的 token 也会在认证时被拒绝。
func (s *adminService) DeleteUser(userID uint) error {
	return s.setDeleted(userID, true)
}

// RestoreUser 恢复被软删除的用户。
func (s *adminService) RestoreUser(userID uint) error {
	return s.setDeleted(userID, false)
}

func (s *adminService) setDeleted(userID uint, deleted bool) error {
	if err := s.userRepo.SetDeleted(userID, deleted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		log.Errorf("[AdminService] 更新用户删除状态失败, userID: %d, deleted: %t, error: %v", userID, deleted, err)
		return err
	}
	log.Infof("[AdminService] 用户删除状态已更新, userID: %d, deleted: %t", userID, deleted)
	return nil
}
