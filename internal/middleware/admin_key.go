package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKey guards catalog management with the X-Admin-Key header.
// An empty key disables the routes entirely.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.GetHeader("X-Admin-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(clientKey), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
