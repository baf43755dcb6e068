package middleware

import (
	"net/http"
	"strings"

	"navboard-be/config"
	"navboard-be/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthCookieName is the session cookie set on login.
const AuthCookieName = "home_v2_auth"

// AuthMiddleware gates protected routes behind the access-guard token,
// accepted from the session cookie or an Authorization bearer header.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AuthCookieName)
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
		}

		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "未登录"})
			return
		}
		if _, err := utils.ValidateToken(token, cfg.LoginPassword, cfg.JWTSecret); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "未登录"})
			return
		}

		c.Next()
	}
}
