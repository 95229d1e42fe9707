package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Deprecated marks responses from a superseded route and points clients at successor.
func Deprecated(successor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		applyHeader(c, "Deprecation", "true")
		if successor != "" {
			applyHeader(c, "Link", fmt.Sprintf(`<%s>; rel="successor-version"`, successor))
		}
		c.Next()
	}
}

func applyHeader(c *gin.Context, key, value string) {
	if c == nil || key == "" || value == "" {
		return
	}
	c.Writer.Header().Set(key, value)
}
