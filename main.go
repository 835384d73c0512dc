// @title Modeva Discovery API
// @version 1.0
// @description Storefront catalog search and infinite-scroll discovery sessions
// @host localhost:8081
// @BasePath /api/v1
// @schemes http
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Modeva-Ecommerce/modeva-discovery/cache"
	"github.com/Modeva-Ecommerce/modeva-discovery/config"
	"github.com/Modeva-Ecommerce/modeva-discovery/controllers/discovery/session_controller"
	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/middleware"
	"github.com/Modeva-Ecommerce/modeva-discovery/routes/discovery_routes"
	"github.com/Modeva-Ecommerce/modeva-discovery/routes/ecommerce_routes"
	"github.com/Modeva-Ecommerce/modeva-discovery/services"
)

func init() {
	_ = godotenv.Load()
}

func main() {
	logger := config.InitLogger()
	defer config.SyncLogger()

	cfg := config.LoadDiscoveryConfig()

	// Connect to DB
	config.InitDB()
	defer config.CloseDB()
	// Redis connection
	config.ConnectRedis()
	defer config.CloseRedis()

	gateway := buildGateway(cfg, logger)

	registry := services.NewSessionRegistry(gateway, discovery.EngineConfig{
		PageLimit:    cfg.PageLimit,
		LeadDistance: cfg.LeadDistance,
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger.Named("discovery"),
	}, cfg.SessionIdleTTL, logger.Named("sessions"))
	defer registry.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx, time.Minute)

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger.Named("http")))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Request-ID", "X-Requested-With"},
		ExposeHeaders:    []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api/v1")

	// Public storefront (no rate limiter)
	ecommerce_routes.SetupStorefrontRoutes(api)

	sessions := session_controller.NewSessionController(registry, cfg.FetchTimeout, logger.Named("sessions"))
	discovery_routes.SetupDiscoveryRoutes(api, sessions,
		middleware.RateLimiter(config.RedisClient, 300, time.Minute, logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Addr), zap.String("catalog", cfg.CatalogBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildGateway wires the catalog client with its throttle and page cache.
func buildGateway(cfg config.DiscoveryConfig, logger *zap.Logger) discovery.Gateway {
	var gateway discovery.Gateway = services.NewHTTPSearchGateway(cfg.CatalogBaseURL,
		services.WithRateLimit(cfg.GatewayRPS, cfg.GatewayBurst),
		services.WithGatewayLogger(logger.Named("gateway")))

	var pages cache.PageCache
	switch cfg.CacheMode {
	case config.CacheMemory:
		pages = cache.NewMemoryPageCache(cfg.CacheTTL, 2048)
	case config.CacheRedis:
		pages = cache.NewRedisPageCache(config.RedisClient, cfg.CacheTTL, logger.Named("page_cache"))
	default:
		return gateway
	}
	return services.NewCachedGateway(gateway, pages, cfg.FetchTimeout, logger.Named("gateway"))
}
