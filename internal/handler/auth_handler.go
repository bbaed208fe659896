package handler

import (
	"errors"
	"net/http"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/log"
	"vidhub-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责处理认证相关的 API 请求，例如刷新 token 和管理员登录。
type AuthHandler struct {
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService, jwtManager *token.JWTManager) *AuthHandler {
	return &AuthHandler{userService: userService, jwtManager: jwtManager}
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
// refreshToken 为空时从 refresh_token cookie 中读取。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
			req.RefreshToken = cookie
		}
	}
	if req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：refreshToken 不能为空"})
		return
	}

	newAccessToken, newRefreshToken, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 refresh token"})
		return
	}

	setTokenCookies(c, h.jwtManager, newAccessToken, newRefreshToken)
	log.Info("Token refreshed successfully")
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Token refreshed successfully",
		"data": gin.H{
			"token":        newAccessToken,
			"refreshToken": newRefreshToken,
		},
	})
}

// AdminLogin 处理管理员登录，非 ADMIN 角色返回 403。
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：邮箱和密码不能为空"})
		return
	}

	accessToken, refreshToken, err := h.userService.AdminLogin(req.Email, req.Password)
	if err != nil {
		log.Warnf("AdminLogin: authentication failed for '%s', error: %v", req.Email, err)
		if errors.Is(err, service.ErrNotAdmin) {
			c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": err.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的凭证"})
		return
	}

	setTokenCookies(c, h.jwtManager, accessToken, refreshToken)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "Login successful",
		"data": gin.H{
			"token":        accessToken,
			"refreshToken": refreshToken,
		},
	})
}
