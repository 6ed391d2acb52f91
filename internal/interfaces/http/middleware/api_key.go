package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const HeaderAPIKey = "X-API-Key"

// APIKey rejects requests whose X-API-Key header does not match key.
// An empty key disables the check.
func APIKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}
		got := []byte(c.GetHeader(HeaderAPIKey))
		if subtle.ConstantTimeCompare(expected, got) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing api key"})
			return
		}
		c.Next()
	}
}
