package router

import (
	"github.com/gin-gonic/gin"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/phoneshop/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig configures the global middleware stack
type EngineConfig struct {
	ServiceName    string
	MaxBodySize    int64
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	Meter          metric.Meter // nil disables HTTP metrics
	Logger         *zap.Logger
}

// NewEngine builds a gin engine with the middleware stack applied in order:
// request ID, recovery, tracing, access log, security headers, body limit, metrics.
func NewEngine(cfg EngineConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
		Provider:    cfg.TracerProvider,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.HTTPMetrics(cfg.Meter, log))

	return engine
}
