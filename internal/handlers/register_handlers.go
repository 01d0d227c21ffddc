package handlers

import (
	"github.com/SscSPs/token_ledger/cmd/docs"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/SscSPs/token_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteDeps carries the optional per-request collaborators of the v1 group.
type RouteDeps struct {
	Limiter *limiter.Limiter
	Tracker middleware.UsageTracker
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Register public authentication routes
	registerAuthRoutes(r, services.Accounts)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, deps)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	// API keys take precedence; AuthMiddleware skips requests they already authenticated
	handlers := []gin.HandlerFunc{
		middleware.APITokenAuth(service.Accounts),
		middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer),
	}
	if deps.Limiter != nil {
		handlers = append(handlers, middleware.RateLimit(deps.Limiter))
	}
	if deps.Tracker != nil {
		handlers = append(handlers, middleware.PosthogMiddleware(deps.Tracker))
	}
	v1 := r.Group("/api/v1", handlers...)

	// Delegate route registration to specific handlers, passing required services
	registerCurrencyRoutes(v1, service.Ledger)
	RegisterLedgerRoutes(v1, service.Ledger)
	RegisterAccountRoutes(v1, service.Accounts, service.Ledger)
	RegisterAPIKeyRoutes(v1, service.Accounts)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
