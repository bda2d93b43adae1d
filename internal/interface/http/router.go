package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/yt-summarizer/internal/infra/config"
	"github.com/yanqian/yt-summarizer/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// A nil recorder disables the metrics endpoint.
func NewRouter(cfg *config.Config, handler *SummaryHandler, recorder *metrics.PrometheusRecorder, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logger.With("component", "http.router")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/healthz", handler.Health)
	if cfg.Metrics.Enabled && recorder != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(recorder.Handler()))
	}

	api := router.Group("/api/v1", rateLimitMiddleware(cfg.HTTP.RateLimit, logger))
	{
		api.POST("/summaries", handler.Summarize)
		api.POST("/tokens", handler.Tokens)
		api.POST("/templates/reload", handler.ReloadTemplate)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
