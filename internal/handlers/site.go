package handlers

import (
	"net/http"

	"navboard-be/internal/models"
	"navboard-be/internal/repository"

	"github.com/gin-gonic/gin"
)

// SiteHandler exposes the unauthenticated header subset used by the login
// screen
type SiteHandler struct {
	apps *repository.AppRepository
}

func NewSiteHandler(apps *repository.AppRepository) *SiteHandler {
	return &SiteHandler{apps: apps}
}

// Get returns the public presentation info of the resolved key.
func (h *SiteHandler) Get(c *gin.Context) {
	view := h.apps.ReadAppData(c.Query("key"))

	head := &models.HeadConfig{}
	if view.Data.Layout != nil && view.Data.Layout.Head != nil {
		head = view.Data.Layout.Head
	}
	name := head.Name
	if name == "" {
		name = "Home"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     view.Key,
		"site": gin.H{
			"name":            name,
			"subtitle":        head.Subtitle,
			"backgroundImage": head.BackgroundImage,
			"overlayOpacity":  head.OverlayOpacity,
			"navOpacity":      head.NavOpacity,
			"backgroundBlur":  head.BackgroundBlur,
		},
	})
}
