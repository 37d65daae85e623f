package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/infrastructure/logger"
	"github.com/storefront/console/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultBodyLimit bounds request bodies when EngineConfig.BodyLimit is zero
const DefaultBodyLimit = 1 << 20

// EngineConfig configures the middleware chain of the console engine
type EngineConfig struct {
	Logger *zap.Logger
	// LogSkipPaths are not request-logged (health checks, the SSE stream)
	LogSkipPaths   []string
	CORS           middleware.CORSConfig
	Tracing        middleware.TracingConfig
	Meter          metric.Meter
	TrustedProxies []string
	BodyLimit      int64
}

// NewEngine creates a gin engine with the console middleware chain:
// request id, tracing, request logging, recovery, CORS, security headers, metrics and body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limit := cfg.BodyLimit
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(cfg.Tracing)...)
	engine.Use(logger.GinMiddleware(log, cfg.LogSkipPaths...))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.Secure())
	engine.Use(middleware.HTTPMetrics(cfg.Meter))
	engine.Use(middleware.BodyLimit(limit))

	return engine, nil
}
