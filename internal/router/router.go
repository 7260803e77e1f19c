package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hotelops/roomboard/internal/domain/classify/handler"
	"github.com/hotelops/roomboard/pkg/config"
)

// New builds the HTTP router.
func New(cfg *config.Config, h *handler.ClassifyHandler, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RateLimit(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst))
	r.Use(BodySizeLimit(cfg.Upload.MaxSizeBytes))

	r.GET("/health", h.Health())
	if cfg.Server.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.POST("/upload", h.Upload())
	r.POST("/manual-edit", h.ManualEdit())
	r.GET("/download/:id", h.Download())

	return r
}
