package controlplane

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Ermachok/yandex-drive-sych/internal/mirror"
	"github.com/Ermachok/yandex-drive-sych/internal/version"
)

// Mirror is the part of the sync manager the API reads and drives.
type Mirror interface {
	Status() *mirror.Status
	CurrentState() mirror.Snapshot
	Trigger()
}

var _ Mirror = (*mirror.Manager)(nil)

type RouteConfig struct {
	Token     string
	RateLimit int64 // requests per second, 0 uses the default
}

func SetupRoutes(m Mirror, config *RouteConfig) http.Handler {
	r := gin.New()

	rate := config.RateLimit
	if rate <= 0 {
		rate = 10
	}
	rateLimiter := limiter.New(memory.NewStore(), limiter.Rate{
		Period: 1 * time.Second,
		Limit:  rate,
	})

	h := &handler{mirror: m}

	r.Use(gin.Recovery())
	r.Use(sloggin.NewWithConfig(slog.Default(), sloggin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
	}))
	r.Use(CORS())
	r.Use(Gzip())
	r.Use(mgin.NewMiddleware(rateLimiter))

	r.GET("/", func(c *gin.Context) {
		c.PureJSON(http.StatusOK, version.Detailed())
	})

	v1 := r.Group("/v1")
	v1.Use(TokenAuth(config.Token))
	{
		v1.GET("/status", h.Status)
		v1.GET("/state", h.State)
		v1.POST("/sync", h.Sync)
	}

	r.NoRoute(func(c *gin.Context) {
		c.PureJSON(http.StatusNotFound, &ErrorResponse{Code: ErrCodeNotFound, Error: "not found"})
	})

	return r.Handler()
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
