package handlers

import (
	"encoding/json"
	"net/http"

	"navboard-be/internal/models"
	"navboard-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// HomeHandler serves the dashboard data of a configuration key
type HomeHandler struct {
	apps      *repository.AppRepository
	snapshots *repository.SnapshotRepository
	opts      models.NormalizeOptions
}

func NewHomeHandler(apps *repository.AppRepository, snapshots *repository.SnapshotRepository, opts models.NormalizeOptions) *HomeHandler {
	return &HomeHandler{apps: apps, snapshots: snapshots, opts: opts}
}

type saveHomeRequest struct {
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// Get returns the resolved key's full data view.
func (h *HomeHandler) Get(c *gin.Context) {
	view := h.apps.ReadAppData(c.Query("key"))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// Put normalizes the payload and persists it under the resolved key.
func (h *HomeHandler) Put(c *gin.Context) {
	var req saveHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "保存失败，数据格式错误"})
		return
	}

	key := req.Key
	if key == "" {
		key = h.apps.ReadAppData("").Key
	}

	data := models.NormalizeRaw(req.Data, h.opts)
	view, err := h.apps.WriteAppData(key, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "保存失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// Import replaces the resolved key's data with an uploaded backup, taking a
// before_import snapshot of the current state first.
func (h *HomeHandler) Import(c *gin.Context) {
	var req saveHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "导入失败，数据格式错误"})
		return
	}

	view, err := h.snapshots.ImportAppData(req.Key, req.Data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "导入失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}
