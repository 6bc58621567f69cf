package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/tasktracker/internal/audit"
	"github.com/mrlokans/tasktracker/internal/auth"
	"github.com/mrlokans/tasktracker/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(audit.RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	router.Use(cfg.Metrics.Middleware())

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	requireAuth := auth.NewMiddleware(cfg.TokenVerifier).Handler()

	// Auth endpoints
	authController := auth.NewAuthController(cfg.AuthService, cfg.AuditService, cfg.Metrics)
	authController.RegisterRoutes(router, requireAuth)

	// Everything below requires a bearer token
	protected := router.Group("/", requireAuth)

	todosController := NewTodosController(cfg.TodoService, cfg.AuditService)
	todosController.RegisterRoutes(protected)

	if cfg.AuditService != nil {
		auditController := NewAuditController(cfg.AuditService)
		protected.GET("/audit/events", auditController.GetAuditEvents)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		audit.RequestIDHeader,
	}
	config.ExposeHeaders = []string{audit.RequestIDHeader}
	config.MaxAge = 12 * time.Hour
	return config
}
