package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/fjod/go_storefront/internal/cache"
	"github.com/fjod/go_storefront/internal/config"
	"github.com/fjod/go_storefront/internal/health"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/logger"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/fjod/go_storefront/internal/service"
	"github.com/fjod/go_storefront/internal/session"
	"github.com/fjod/go_storefront/internal/shopify"
	"github.com/fjod/go_storefront/internal/view"
)

const limiterSweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(nil).Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(&cfg.Log).With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Caches are bypassed while Redis is down.
		log.Warn("redis ping failed", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		log.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
	}

	shop, err := shopify.NewClient(&cfg.Shopify, m)
	if err != nil {
		log.Fatal("failed to create storefront client", zap.Error(err))
	}

	cartService := service.NewCartService(shop, cache.NewRedisCache(redisClient, cfg.Cache.CartTTL), m)
	catalogService := service.NewCatalogService(shop, cache.NewCatalogCache(redisClient, cfg.Cache.CatalogTTL), m)
	customerService := service.NewCustomerService(shop)
	wishlistService := service.NewWishlistService(cache.NewWishlistStore(redisClient, cfg.Cache.WishlistTTL), catalogService)

	sessions, err := session.NewManager(cfg.Session.Secret, session.WithSecureCookies(cfg.Session.SecureCookie))
	if err != nil {
		log.Fatal("failed to create session manager", zap.Error(err))
	}

	views, err := view.New()
	if err != nil {
		log.Fatal("failed to parse templates", zap.Error(err))
	}

	healthHandler := health.NewHandler(cfg.App.Version)
	healthHandler.RegisterChecker("redis", health.NewSimpleChecker("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))
	healthHandler.RegisterChecker("shopify", health.NewBreakerChecker("shopify", shop.BreakerState))

	var limiter *h.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = h.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx, limiterSweepInterval)
	}

	timeout := cfg.HTTP.RequestTimeout
	router := h.NewRouter(h.RouterConfig{
		RequestTimeout: timeout,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
	}, log, sessions, limiter, h.Handlers{
		Cart:     h.NewCartHandler(cartService, views, timeout),
		Catalog:  h.NewCatalogHandler(catalogService, wishlistService, cartService, views, timeout),
		Account:  h.NewAccountHandler(customerService, sessions, wishlistService, cartService, views, timeout),
		Wishlist: h.NewWishlistHandler(wishlistService, cartService, views, timeout),
		Webhook:  h.NewWebhookHandler(cfg.Webhook.Secret, catalogService, timeout),
		Health:   healthHandler,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      otelhttp.NewHandler(router, cfg.App.Name),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTP.Port), zap.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited")
}
