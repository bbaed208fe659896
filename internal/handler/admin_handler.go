package handler

import (
	"errors"
	"net/http"
	"strconv"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler 负责处理所有与管理员相关的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers 处理分页获取用户列表的请求。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	resp, err := h.adminService.ListUsers(page, size)
	if err != nil {
		log.Error("ListUsers: Failed to list users", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取用户列表失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": resp})
}

// DeleteUser 软删除用户。
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.setDeleted(c, true)
}

// RestoreUser 恢复被删除的用户。
func (h *AdminHandler) RestoreUser(c *gin.Context) {
	h.setDeleted(c, false)
}

func (h *AdminHandler) setDeleted(c *gin.Context, deleted bool) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var err error
	if deleted {
		err = h.adminService.DeleteUser(userID)
	} else {
		err = h.adminService.RestoreUser(userID)
	}
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error(), "data": nil})
			return
		}
		log.Error("AdminHandler: Failed to update user", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "更新用户状态失败", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}
