package routes

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mwangi-george/virtual-wallet-app/internal/admin"
	"github.com/mwangi-george/virtual-wallet-app/internal/analytics"
	"github.com/mwangi-george/virtual-wallet-app/internal/auth"
	"github.com/mwangi-george/virtual-wallet-app/internal/config"
	"github.com/mwangi-george/virtual-wallet-app/internal/identity"
	"github.com/mwangi-george/virtual-wallet-app/internal/middleware"
	"github.com/mwangi-george/virtual-wallet-app/internal/notification"
	"github.com/mwangi-george/virtual-wallet-app/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Stores fall back to in-memory implementations in dev without a DB.
	var walletStore wallet.Store
	if d.DB != nil {
		walletStore = wallet.NewPostgresStore(d.DB)
	} else {
		walletStore = wallet.NewMemoryStore()
	}
	var userRepo identity.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(walletStore, identity.NewDirectory(userRepo), notifier, d.Logger, d.Cfg.Currency)
	identitySvc := identity.NewService(userRepo, walletSvc, notifier, d.Logger)
	authSvc := auth.NewService(d.Cfg, userRepo)
	analyticsSvc := analytics.NewService(walletSvc)
	adminSvc := admin.NewService(userRepo, identitySvc, notifier)

	authHandler := auth.NewHandler(identitySvc, authSvc, notifier)
	walletHandler := wallet.NewHandler(walletSvc)
	analyticsHandler := analytics.NewHandler(analyticsSvc)
	adminHandler := admin.NewHandler(adminSvc)

	api := app.Group("/api/v1")

	// Public routes
	var rateLimiter fiber.Handler
	if d.Cache != nil {
		rateLimiter = middleware.LoginRateLimit(d.Cache, 5)
	}
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(authSvc, userRepo)
	protected := api.Group("", jwtmw)
	if d.Cache != nil {
		// Idempotency runs after JWT so the cache key is scoped per user.
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterWalletRoutes(protected, walletHandler)
	RegisterAnalyticsRoutes(protected, analyticsHandler)

	adminGroup := protected.Group("/admin", middleware.RequireAdmin())
	RegisterAdminRoutes(adminGroup, adminHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
