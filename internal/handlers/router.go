package handlers

import (
	"net/http"
	"time"

	"github.com/churchsite/backend/internal/metrics"
	"github.com/churchsite/backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by every resource handler
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// RouterConfig describes the global middleware stack
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxRequestSize     int64
	UploadsRoot        string
	Recorder           metrics.Recorder
	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// NewRouter mounts the resource handlers under /api/v1, the stored files under /uploads,
// and the operational endpoints at the root
func NewRouter(cfg RouterConfig, health *HealthHandler, resources ...RouteRegistrar) chi.Router {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.Nop{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(cfg.Logger))
	r.Use(middleware.RecoveryMiddleware(cfg.Logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.MetricsMiddleware(cfg.Recorder))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}
	if cfg.MaxRequestSize > 0 {
		r.Use(middleware.RequestSizeLimitMiddleware(cfg.MaxRequestSize))
	}

	if health != nil {
		r.Get("/health", health.Health)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Gatherer))
	}
	if cfg.UploadsRoot != "" {
		r.Handle("/uploads/*", StaticUploads(cfg.UploadsRoot))
	}

	r.Route("/api/v1", func(r chi.Router) {
		for _, res := range resources {
			res.RegisterRoutes(r)
		}
	})

	return r
}

// LoginLimiter throttles login attempts per client IP
func LoginLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.LimitByIP(perMinute, time.Minute)
}
