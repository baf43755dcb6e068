package handlers

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"navboard-be/config"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 5 << 20 // 5MB

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".svg":  true,
}

var acceptedUploadTypes = map[string]bool{
	"image/png":     true,
	"image/jpeg":    true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

// MediaHandler stores and lists uploaded images under the media directory
type MediaHandler struct {
	cfg *config.Config
}

func NewMediaHandler(cfg *config.Config) *MediaHandler {
	return &MediaHandler{cfg: cfg}
}

// Upload saves one image file. Only common image types are accepted, capped
// at 5MB; the stored name is timestamp plus a short random suffix.
func (h *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请选择图片文件"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !acceptedUploadTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "仅支持 PNG/JPG/WEBP/GIF/SVG"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "图片需小于 5MB"})
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if ext == "" {
		ext = "png"
	}
	filename := fmt.Sprintf("%d-%06x.%s", time.Now().UnixMilli(), rand.Intn(1<<24), ext)

	if err := os.MkdirAll(h.cfg.MediaDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "上传失败"})
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.cfg.MediaDir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "上传失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"filename": filename,
			"url":      "/media/" + filename,
		},
	})
}

type mediaFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// List returns uploaded images, newest name first, capped at 100, optionally
// filtered by a substring query.
func (h *MediaHandler) List(c *gin.Context) {
	query := strings.ToLower(strings.TrimSpace(c.Query("q")))

	entries, err := os.ReadDir(h.cfg.MediaDir)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusOK, gin.H{"success": true, "files": []mediaFile{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "读取失败"})
		return
	}

	files := []mediaFile{}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if len(names) > 100 {
		names = names[:100]
	}
	for _, name := range names {
		files = append(files, mediaFile{Name: name, URL: "/media/" + name})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "files": files})
}
