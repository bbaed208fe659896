// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"vidhub-go/internal/model"
	"vidhub-go/pkg/token"

	"github.com/gin-gonic/gin"
)

const (
	// AccessTokenCookie 是保存 access token 的 cookie 名。
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie 是保存 refresh token 的 cookie 名。
	RefreshTokenCookie = "refresh_token"
)

// currentUser 取出 AuthMiddleware 注入的用户。
func currentUser(c *gin.Context) (*model.User, bool) {
	userValue, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := userValue.(*model.User)
	return user, ok && user != nil
}

// TokenFromRequest 优先读取 Authorization 头，其次读取 access_token cookie。
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// setTokenCookies 把 token 写入 HttpOnly cookie。
func setTokenCookies(c *gin.Context, jwtManager *token.JWTManager, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, accessToken, int(jwtManager.AccessTokenTTL().Seconds()), "/", "", false, true)
	c.SetCookie(RefreshTokenCookie, refreshToken, int(jwtManager.RefreshTokenTTL().Seconds()), "/", "", false, true)
}

func clearTokenCookies(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", false, true)
}

// parseIDParam 解析路径中的数字 ID。
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 " + name, "data": nil})
		return 0, false
	}
	return uint(id), true
}
