package controlplane

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

var corsConfig = cors.Config{
	AllowAllOrigins: true,
	AllowMethods:    []string{"GET", "POST", "HEAD"},
	AllowHeaders: []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	},
	MaxAge: 12 * time.Hour,
}

func CORS() gin.HandlerFunc {
	return cors.New(corsConfig)
}

func Gzip() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression)
}

// TokenAuth accepts the token as a bearer header or a ?token= query value.
// An empty token disables the check.
func TokenAuth(token string) gin.HandlerFunc {
	if token == "" {
		slog.Info("control plane auth disabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if got == "" {
			got = c.Query("token")
		}

		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			slog.Debug("control plane unauthorized", "ip", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, &ErrorResponse{
				Code:  ErrCodeUnauthorized,
				Error: "unauthorized",
			})
			return
		}

		c.Next()
	}
}
