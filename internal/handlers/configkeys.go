package handlers

import (
	"errors"
	"net/http"
	"strings"

	"navboard-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// ConfigHandler manages the set of configuration keys
type ConfigHandler struct {
	apps *repository.AppRepository
}

func NewConfigHandler(apps *repository.AppRepository) *ConfigHandler {
	return &ConfigHandler{apps: apps}
}

type configKeyRequest struct {
	Key string `json:"key"`
}

// Get lists the existing configuration keys.
func (h *ConfigHandler) Get(c *gin.Context) {
	view := h.apps.ReadAppData("")
	c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys})
}

// Post creates a new configuration key seeded with default data.
func (h *ConfigHandler) Post(c *gin.Context) {
	var req configKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请输入配置 key"})
		return
	}

	view, err := h.apps.CreateConfigKey(key)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "配置 key 已存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "创建失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys, "data": view.Data})
}

// Delete removes a configuration key; the last remaining key is protected.
func (h *ConfigHandler) Delete(c *gin.Context) {
	var req configKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "缺少配置 key"})
		return
	}

	view, err := h.apps.DeleteConfigKey(key)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUnknownKey):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "配置 key 不存在"})
		case errors.Is(err, repository.ErrLastKeyProtected):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "至少保留一个配置"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "删除失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys, "data": view.Data})
}
