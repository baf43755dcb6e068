package handlers

import (
	"net/http"
	"strings"
	"time"

	"navboard-be/config"
	"navboard-be/internal/middleware"
	"navboard-be/internal/services"
	"navboard-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// failureDelay slows down password guessing a little on top of the
// sliding-window limiter.
const failureDelay = 220 * time.Millisecond

const maxPasswordLength = 256

type AuthHandler struct {
	cfg     *config.Config
	limiter *services.LoginLimiter
}

func NewAuthHandler(cfg *config.Config, limiter *services.LoginLimiter) *AuthHandler {
	return &AuthHandler{cfg: cfg, limiter: limiter}
}

type loginRequest struct {
	Password string `json:"password"`
}

// clientID fingerprints the caller for rate limiting: client IP plus a
// truncated user agent.
func clientID(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown-ip"
	}
	ua := c.GetHeader("User-Agent")
	if ua == "" {
		ua = "unknown-ua"
	}
	if len(ua) > 120 {
		ua = ua[:120]
	}
	return ip + ":" + ua
}

// Login validates the shared password and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	client := clientID(c)
	if !h.limiter.Allow(client) {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "尝试次数过多，请稍后再试"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Password) > maxPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "请求格式错误"})
		return
	}

	if !utils.IsPasswordValid(req.Password, h.cfg.LoginPassword) {
		h.limiter.RegisterFailure(client)
		time.Sleep(failureDelay)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "账号或密码错误"})
		return
	}

	token, err := utils.IssueToken(h.cfg.LoginPassword, h.cfg.JWTSecret, h.cfg.TokenExpiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "登录失败"})
		return
	}

	h.limiter.Reset(client)
	secure := strings.HasPrefix(h.cfg.FrontendURL, "https://")
	c.SetCookie(middleware.AuthCookieName, token, int(h.cfg.TokenExpiration.Seconds()), "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session reports whether the caller holds a valid token.
func (h *AuthHandler) Session(c *gin.Context) {
	token, err := c.Cookie(middleware.AuthCookieName)
	if err != nil || token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	authenticated := false
	if token != "" {
		if _, err := utils.ValidateToken(token, h.cfg.LoginPassword, h.cfg.JWTSecret); err == nil {
			authenticated = true
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "authenticated": authenticated})
}
