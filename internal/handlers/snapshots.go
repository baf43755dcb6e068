package handlers

import (
	"errors"
	"net/http"
	"strings"

	"navboard-be/internal/models"
	"navboard-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// SnapshotHandler manages per-key snapshot history
type SnapshotHandler struct {
	snapshots *repository.SnapshotRepository
}

func NewSnapshotHandler(snapshots *repository.SnapshotRepository) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

type snapshotActionRequest struct {
	Action     string `json:"action"`
	Key        string `json:"key"`
	Note       string `json:"note"`
	SnapshotID string `json:"snapshotId"`
}

type snapshotDeleteRequest struct {
	Key        string `json:"key"`
	SnapshotID string `json:"snapshotId"`
}

// Get lists snapshot metadata for the resolved key, most recent first.
func (h *SnapshotHandler) Get(c *gin.Context) {
	view := h.snapshots.ListSnapshots(c.Query("key"))
	c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys, "snapshots": view.Snapshots})
}

// Post handles the create and restore actions.
func (h *SnapshotHandler) Post(c *gin.Context) {
	var req snapshotActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}

	switch strings.TrimSpace(req.Action) {
	case "create":
		view, err := h.snapshots.CreateSnapshot(strings.TrimSpace(req.Key), models.SnapshotReasonManual, strings.TrimSpace(req.Note))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "快照创建失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys, "created": view.Created, "snapshot": view.Snapshot})

	case "restore":
		snapshotID := strings.TrimSpace(req.SnapshotID)
		if snapshotID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "缺少 snapshotId"})
			return
		}
		targetKey := strings.TrimSpace(req.Key)
		if targetKey == "" {
			targetKey = models.DefaultKey
		}
		view, err := h.snapshots.RestoreSnapshot(targetKey, snapshotID)
		if err != nil {
			if errors.Is(err, repository.ErrSnapshotNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "快照不存在"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "恢复失败"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys, "data": view.Data})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "不支持的操作"})
	}
}

// Delete removes one snapshot.
func (h *SnapshotHandler) Delete(c *gin.Context) {
	var req snapshotDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}
	key := strings.TrimSpace(req.Key)
	snapshotID := strings.TrimSpace(req.SnapshotID)
	if key == "" || snapshotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "缺少 key 或 snapshotId"})
		return
	}

	view, err := h.snapshots.DeleteSnapshot(key, snapshotID)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "快照不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "key": view.Key, "keys": view.Keys})
}
