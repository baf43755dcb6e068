package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"navboard-be/config"

	"github.com/gin-gonic/gin"
)

const unsplashAPI = "https://api.unsplash.com"

// UnsplashHandler proxies collection search and photo listing so the access
// key never reaches the browser
type UnsplashHandler struct {
	cfg    *config.Config
	client *http.Client
}

func NewUnsplashHandler(cfg *config.Config) *UnsplashHandler {
	return &UnsplashHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *UnsplashHandler) fetch(c *gin.Context, endpoint string, out interface{}) bool {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unsplash 请求失败"})
		return false
	}
	req.Header.Set("Authorization", "Client-ID "+h.cfg.UnsplashAccessKey)

	resp, err := h.client.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unsplash 请求失败"})
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unsplash 请求失败"})
		return false
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Unsplash 请求失败"})
		return false
	}
	return true
}

type unsplashCollection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TotalPhotos int    `json:"totalPhotos"`
	Cover       string `json:"cover"`
}

// SearchCollections looks up wallpaper collections.
func (h *UnsplashHandler) SearchCollections(c *gin.Context) {
	if h.cfg.UnsplashAccessKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "未配置 UNSPLASH_ACCESS_KEY"})
		return
	}

	query := c.DefaultQuery("q", "wallpaper")
	page := c.DefaultQuery("page", "1")
	perPage := c.DefaultQuery("perPage", "12")
	endpoint := fmt.Sprintf("%s/search/collections?query=%s&page=%s&per_page=%s",
		unsplashAPI, url.QueryEscape(query), url.QueryEscape(page), url.QueryEscape(perPage))

	var payload struct {
		Results []struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			TotalPhotos int    `json:"total_photos"`
			CoverPhoto  struct {
				URLs struct {
					Small string `json:"small"`
				} `json:"urls"`
			} `json:"cover_photo"`
		} `json:"results"`
	}
	if !h.fetch(c, endpoint, &payload) {
		return
	}

	collections := make([]unsplashCollection, 0, len(payload.Results))
	for _, item := range payload.Results {
		collections = append(collections, unsplashCollection{
			ID:          item.ID,
			Title:       item.Title,
			TotalPhotos: item.TotalPhotos,
			Cover:       item.CoverPhoto.URLs.Small,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "collections": collections})
}

type collectionPhotosRequest struct {
	CollectionID string `json:"collectionId"`
	Page         string `json:"page"`
	PerPage      string `json:"perPage"`
}

type unsplashPhoto struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Thumb   string `json:"thumb"`
	Regular string `json:"regular"`
	Author  string `json:"author"`
}

// CollectionPhotos lists photos of one collection.
func (h *UnsplashHandler) CollectionPhotos(c *gin.Context) {
	if h.cfg.UnsplashAccessKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "未配置 UNSPLASH_ACCESS_KEY"})
		return
	}

	var req collectionPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}
	collectionID := strings.TrimSpace(req.CollectionID)
	if collectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "缺少 collectionId"})
		return
	}
	page := req.Page
	if page == "" {
		page = "1"
	}
	perPage := req.PerPage
	if perPage == "" {
		perPage = "24"
	}

	endpoint := fmt.Sprintf("%s/collections/%s/photos?page=%s&per_page=%s",
		unsplashAPI, url.PathEscape(collectionID), url.QueryEscape(page), url.QueryEscape(perPage))

	var payload []struct {
		ID             string `json:"id"`
		AltDescription string `json:"alt_description"`
		URLs           struct {
			Thumb   string `json:"thumb"`
			Regular string `json:"regular"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if !h.fetch(c, endpoint, &payload) {
		return
	}

	photos := make([]unsplashPhoto, 0, len(payload))
	for _, item := range payload {
		photos = append(photos, unsplashPhoto{
			ID:      item.ID,
			Title:   item.AltDescription,
			Thumb:   item.URLs.Thumb,
			Regular: item.URLs.Regular,
			Author:  item.User.Name,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "photos": photos})
}
