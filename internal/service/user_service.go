package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"vidhub-go/internal/model"
	"vidhub-go/internal/repository"
	"vidhub-go/pkg/hash"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/token"

	"gorm.io/gorm"
)

var (
	// ErrUserExists 表示邮箱已被注册。
	ErrUserExists = errors.New("邮箱已被注册")
	// ErrInvalidCredentials 表示邮箱或密码错误。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled 表示用户已被删除。
	ErrUserDisabled = errors.New("用户已被禁用")
	// ErrNotAdmin 表示用户不具备管理员角色。
	ErrNotAdmin = errors.New("权限不足，需要管理员权限")
	// ErrUserNotFound 表示用户不存在。
	ErrUserNotFound = errors.New("用户不存在")
	// ErrInvalidInput 表示请求参数不合法。
	ErrInvalidInput = errors.New("参数不合法")
)

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, email, password string) (*model.User, error)
	Login(email, password string) (accessToken, refreshToken string, err error)
	AdminLogin(email, password string) (accessToken, refreshToken string, err error)
	GetProfile(userID uint) (*model.User, error)
	ListUsers() ([]model.User, error)
	Logout(ctx context.Context, tokenString string) error
	IsTokenRevoked(ctx context.Context, tokenString string) (bool, error)
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// 1. 检查邮箱是否已存在
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 对密码进行哈希处理
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. 创建新用户
	newUser := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		log.Errorf("[UserService] 创建用户失败, email: %s, error: %v", email, err)
		return nil, err
	}
	return newUser, nil
}

// Login 处理用户登录的业务逻辑。
func (s *userService) Login(email, password string) (string, string, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return "", "", err
	}
	return s.issueTokens(user)
}

// AdminLogin 与 Login 相同，但要求用户具有 ADMIN 角色。
func (s *userService) AdminLogin(email, password string) (string, string, error) {
	user, err := s.authenticate(email, password)
	if err != nil {
		return "", "", err
	}
	if user.Role != model.RoleAdmin {
		log.Warnf("[UserService] 非管理员尝试登录管理后台, userID: %d", user.ID)
		return "", "", ErrNotAdmin
	}
	return s.issueTokens(user)
}

func (s *userService) authenticate(email, password string) (*model.User, error) {
	// 1. 查找用户
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. 验证密码
	if !hash.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsDeleted {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func (s *userService) issueTokens(user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 根据用户 ID 获取用户详细信息。
func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers 返回全部用户（最多前 1000 个）。
func (s *userService) ListUsers() ([]model.User, error) {
	users, _, err := s.userRepo.FindWithPagination(0, 1000)
	return users, err
}

// Logout 处理用户登出逻辑，将 token 加入 Redis 黑名单。
// token 的剩余有效期将作为 Redis key 的过期时间。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	return s.tokenRepo.Revoke(ctx, tokenString, time.Until(claims.ExpiresAt.Time))
}

// IsTokenRevoked 判断 token 是否已登出。
func (s *userService) IsTokenRevoked(ctx context.Context, tokenString string) (bool, error) {
	return s.tokenRepo.IsRevoked(ctx, tokenString)
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(refreshTokenString string) (string, string, error) {
	// 1. 验证 refresh token 是否有效
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	// 2. 检查用户是否存在且未被删除
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", "", ErrUserNotFound
	}
	if user.IsDeleted {
		return "", "", ErrUserDisabled
	}

	// 3. 签发新的 token
	return s.issueTokens(user)
}
