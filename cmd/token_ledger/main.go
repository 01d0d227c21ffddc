package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/token_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/token_ledger/internal/core/ports/services"
	"github.com/SscSPs/token_ledger/internal/core/services"
	"github.com/SscSPs/token_ledger/internal/handlers"
	"github.com/SscSPs/token_ledger/internal/middleware"
	"github.com/SscSPs/token_ledger/internal/notifications"
	"github.com/SscSPs/token_ledger/internal/platform/config"
	"github.com/SscSPs/token_ledger/internal/repositories/database/leveldb"
	"github.com/SscSPs/token_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/token_ledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// @title Token Ledger API
// @version 1.0
// @description Fungible token ledger: currencies, balances, transfers and per-currency admins.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description Account API key returned by /auth/register or /keys.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	repos, err := openRepositories(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open record store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := repos.Store.Close(); cerr != nil {
			logger.Error("Error closing record store", slog.String("error", cerr.Error()))
		}
	}()

	posthogSink, err := notifications.NewPosthogSink(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	if err != nil {
		logger.Error("Failed to initialize posthog sink", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer posthogSink.Close()

	sinks := []portssvc.EventSink{notifications.NewLogSink(logger), posthogSink}
	serviceContainer := services.NewServiceContainer(cfg, repos, sinks...)

	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register request validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, handlers.RouteDeps{
		Limiter: limiter.New(memory.NewStore(), rate),
		Tracker: posthogSink,
	})

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openRepositories opens the record store selected by STORE_DRIVER.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.RepositoryProvider, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverLevelDB:
		db, err := database.NewLevelDB(cfg.LevelDBPath)
		if err != nil {
			return repositories.RepositoryProvider{}, err
		}
		logger.Info("LevelDB record store opened.", slog.String("path", cfg.LevelDBPath))
		return leveldb.NewRepositoryProvider(db), nil
	case config.StoreDriverMemory:
		db, err := database.NewMemLevelDB()
		if err != nil {
			return repositories.RepositoryProvider{}, err
		}
		logger.Warn("Using in-memory record store; state is lost on exit.")
		return leveldb.NewRepositoryProvider(db), nil
	default:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return repositories.RepositoryProvider{}, err
		}
		logger.Info("Database connection pool established.")

		logger.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			dbPool.Close()
			return repositories.RepositoryProvider{}, err
		}
		return pgsql.NewRepositoryProvider(dbPool), nil
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
