package handler

import (
	"errors"
	"net/http"
	"vidhub-go/internal/service"
	"vidhub-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// GroupHandler 负责处理群组相关的 API 请求。
type GroupHandler struct {
	groupService service.GroupService
}

// NewGroupHandler 创建一个新的 GroupHandler 实例。
func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroupRequest 定义了创建群组的请求体。
type CreateGroupRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

// CreateGroup 创建群组，当前用户成为第一个成员。
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载：群组名称不能为空"})
		return
	}
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "未认证用户"})
		return
	}

	group, err := h.groupService.CreateGroup(req.Name, req.Password, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		log.Error("CreateGroup: Failed to create group", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "创建群组失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": group})
}

// ListGroups 返回所有群组。
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.ListGroups()
	if err != nil {
		log.Error("ListGroups: Failed to list groups", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取群组列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": groups})
}

// JoinGroupRequest 定义了加入群组的请求体。
type JoinGroupRequest struct {
	Password string `json:"password"`
}

// JoinGroup 把当前用户加入群组。
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	var req JoinGroupRequest
	_ = c.ShouldBindJSON(&req)
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "未认证用户"})
		return
	}

	err := h.groupService.JoinGroup(groupID, user.ID, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success"})
	case errors.Is(err, service.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
	case errors.Is(err, service.ErrWrongGroupPassword):
		c.JSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": err.Error()})
	case errors.Is(err, service.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": err.Error()})
	default:
		log.Error("JoinGroup: Failed to join group", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "加入群组失败"})
	}
}

// ListGroupVideos 返回群组内的视频列表。
func (h *GroupHandler) ListGroupVideos(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}
	videos, err := h.groupService.ListGroupVideos(groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": http.StatusNotFound, "message": err.Error()})
			return
		}
		log.Error("ListGroupVideos: Failed to list videos", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "获取视频列表失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": videos})
}
