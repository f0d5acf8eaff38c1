package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/dkolesni/eventboard/config"

	"github.com/gin-gonic/gin"
)

// AdminAuth guards the admin console with the two static credential strings
// from configuration. The storefront routes stay open.
func AdminAuth(cfg *config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, password, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}
