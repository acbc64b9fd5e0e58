package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-api/internal/api/http"
	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/clock"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/persistence"
	"github.com/spec-kit/storefront-api/internal/ratelimit"
	"github.com/spec-kit/storefront-api/internal/repository"
	"github.com/spec-kit/storefront-api/internal/repository/memory"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    repository.UserRepository
	resets   repository.PasswordResetRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clk := clock.Real()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	repos := buildRepositories(pg, clk)

	var redis *persistence.Redis
	var limiter ratelimit.Limiter
	switch cfg.Auth.OTPCooldownBackend {
	case config.CooldownBackendRedis:
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		limiter = ratelimit.NewRedisLimiter(redis.Client, clk, cfg.Auth.OTPCooldown())
	default:
		memLimiter := ratelimit.NewMemoryLimiter(clk, cfg.Auth.OTPCooldown(), cfg.Auth.OTPCooldownRetention())
		worker.StartCooldownSweeper(ctx, memLimiter, cfg.Auth.OTPCooldownSweep(), logger)
		limiter = memLimiter
	}
	logger.Info("otp cooldown backend selected", zap.String("backend", cfg.Auth.OTPCooldownBackend))
	if cfg.Auth.OTPDebugEcho {
		logger.Warn("AUTH_OTP_DEBUG_ECHO enabled; codes and reset tokens are returned in responses")
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), clk)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          repos.users,
		PasswordResetRepo: repos.resets,
		Limiter:           limiter,
		Tokens:            tokens,
		Clock:             clk,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	userService := service.NewUserService(repos.users)
	cartService := service.NewCartService(repos.carts, repos.products)
	catalogService := service.NewCatalogService(repos.products)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:  repos.orders,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(tokens, repos.users)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, cfg.App, logger, metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Cart:           handlers.NewCartHandler(cartService),
		Orders:         handlers.NewOrdersHandler(orderService),
		Products:       handlers.NewProductsHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func buildRepositories(pg *persistence.Postgres, clk clock.Clock) repositories {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repositories{
			users:    repository.NewUserRepository(pool),
			resets:   repository.NewPasswordResetRepository(pool),
			products: repository.NewProductRepository(pool),
			carts:    repository.NewCartRepository(pool, clk),
			orders:   repository.NewOrderRepository(pool),
		}
	}
	store := memory.New(clk)
	return repositories{
		users:    store.Users(),
		resets:   store.PasswordResets(),
		products: store.Products(),
		carts:    store.Carts(),
		orders:   store.Orders(),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
