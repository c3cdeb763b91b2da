package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/shopfront-backend/api/controllers"
	"github.com/angelmondragon/shopfront-backend/api/routes"
	"github.com/angelmondragon/shopfront-backend/internal/auth"
	"github.com/angelmondragon/shopfront-backend/internal/cart"
	product "github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/users"
	"github.com/angelmondragon/shopfront-backend/pkg/auth/session"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/migrate"
	"github.com/angelmondragon/shopfront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(userRepo)
	if err != nil {
		return err
	}

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo, logg)
	if err != nil {
		return err
	}

	locker, err := newCartLocker(cfg.Cart, redisClient)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:            cart.NewRepository(dbClient.DB()),
		Tx:              dbClient,
		Products:        productRepo,
		Locker:          locker,
		Logger:          logg,
		Metrics:         metrics.NewCartMetrics(registry),
		LockWait:        cfg.Cart.LockWait,
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
	})
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_lock":    cfg.Cart.LockBackend,
		"sqlite_local": cfg.FeatureFlags.UseSQLite,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			map[string]controllers.Pinger{"database": dbClient, "redis": redisClient},
			redisClient,
			redisClient,
			sessionManager,
			metrics.NewHTTPMetrics(registry),
			registry,
			authService,
			userService,
			productService,
			cartService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newCartLocker(cfg config.CartConfig, redisClient *redis.Client) (cart.Locker, error) {
	if cfg.UsesRedisLock() {
		return cart.NewRedisLocker(redisClient, cfg.LockTTL)
	}
	return cart.NewLocalLocker(), nil
}
