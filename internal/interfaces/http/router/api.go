package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpulse/invsync/internal/infrastructure/logger"
	"github.com/stockpulse/invsync/internal/interfaces/http/handler"
	"github.com/stockpulse/invsync/internal/interfaces/http/middleware"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	System *handler.SystemHandler
	Sync   *handler.SyncHandler
	Alert  *handler.AlertHandler
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	WebhookSecret string
	RateLimit     float64
	RateBurst     int
	BodyLimit     int64
	Tracing       middleware.TracingConfig
}

// NewEngine builds the gin engine with the shared middleware chain.
// Everything under /api/v1 except /system requires the webhook secret.
func NewEngine(h Handlers, cfg EngineConfig, l *zap.Logger) *gin.Engine {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = middleware.DefaultBodyLimit
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(
		logger.Recovery(l),
		logger.GinMiddleware(l),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
		middleware.BodyLimit(cfg.BodyLimit),
	)

	engine.GET("/healthz", h.System.Health)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, 10*time.Minute)
	webhooks := NewDomainGroup("webhooks", "/webhooks").
		Use(middleware.RateLimit(limiter), middleware.WebhookSecret(cfg.WebhookSecret)).
		POST("/stores/:id/sync", h.Sync.SyncStore).
		POST("/products/:id/sync", h.Sync.SyncProduct).
		POST("/alerts/check", h.Alert.CheckAlerts)

	audit := NewDomainGroup("audit", "").
		Use(middleware.WebhookSecret(cfg.WebhookSecret)).
		GET("/stores/:id/sync-logs", h.Sync.ListStoreLogs).
		GET("/sync-logs/:id", h.Sync.GetLog)

	NewRouter(engine).
		Register(system).
		Register(webhooks).
		Register(audit).
		Setup()

	return engine
}
