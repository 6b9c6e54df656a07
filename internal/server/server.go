package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/storage"
	"storefront/internal/telemetry"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CatalogTTL is how long catalog reads stay cached
const CatalogTTL = 5 * time.Minute

// Store is the database the server runs against
type Store interface {
	DB() *sql.DB
	Health() map[string]string
	Close() error
}

type Server struct {
	*http.Server
	config          *config.Config
	logger          *zap.Logger
	store           Store
	redis           *redis.Client
	shutdownTracing telemetry.ShutdownFunc
}

// NewRedisClient connects to Redis, or returns nil when it is disabled. An
// unreachable Redis is logged and kept: the cache and rate limiter degrade
// per request.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, continuing without it", zap.String("addr", cfg.Addr()), zap.Error(err))
	}
	return client
}

// NewCatalog returns the Redis-backed catalog cache, or a no-op one
func NewCatalog(client *redis.Client, logger *zap.Logger) cache.Catalog {
	if client == nil {
		return cache.NewNoop()
	}
	return cache.NewRedisCatalog(client, CatalogTTL, logger)
}

// NewUserService builds the identity service from configuration
func NewUserService(cfg *config.Config, db *sql.DB, logger *zap.Logger) service.UserService {
	return service.NewUserService(
		repository.NewUserRepository(db),
		repository.NewRefreshTokenRepository(db),
		service.TokenSettings{
			Secret:     cfg.JWT.Secret,
			AccessTTL:  cfg.JWT.AccessTTL(),
			RefreshTTL: cfg.JWT.RefreshTTL(),
		},
		logger,
	)
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, store Store) (*Server, error) {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}

	disk, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	redisClient := NewRedisClient(ctx, cfg.Redis, logger)
	catalog := NewCatalog(redisClient, logger)
	db := store.DB()

	// Repositories and services
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	userService := NewUserService(cfg, db, logger)
	productService := service.NewProductService(productRepo, catalog, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(repository.NewTransactor(db), catalog, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, logger)

	router := chi.NewRouter()
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))
	router.Use(telemetry.Middleware(cfg.Tracing.ServiceName))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := store.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Handle("/metrics", metrics.Handler())

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(userService, logger)

	var limiter func(http.Handler) http.Handler
	if redisClient != nil {
		limiter = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "rate_limit:auth",
		}, logger)
	}

	transport.NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, limiter)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewCartHandler(cartService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewOrderHandler(checkoutService, orderService, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)
	transport.NewUploadHandler(disk, logger).RegisterRoutes(router, authMiddleware, adminMiddleware)

	if local, ok := disk.(*storage.LocalDisk); ok {
		router.Handle("/uploads/*", http.FileServer(http.Dir(local.Root())))
	}

	if cfg.Server.StaticDir != "" {
		router.NotFound(transport.SPAHandler(cfg.Server.StaticDir).ServeHTTP)
	} else {
		router.NotFound(func(w http.ResponseWriter, r *http.Request) {
			custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
		})
	}

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:          cfg,
		logger:          logger,
		store:           store,
		redis:           redisClient,
		shutdownTracing: shutdownTracing,
	}

	return server, nil
}

// Close releases the database, Redis and the tracer provider
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdownTracing(ctx); err != nil {
		s.logger.Error("Failed to flush traces", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
