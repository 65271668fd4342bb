package server

import (
	"fmt"
	"net/http"
	"time"

	"catalog-api/internal/config"
	"catalog-api/internal/database"
	custommiddleware "catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/store"
	"catalog-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  *redis.Client
}

// NewServer wires the catalog routes. redisClient may be nil, in which case
// requests are not rate limited.
func NewServer(cfg *config.Config, logger *zap.Logger, db *gorm.DB, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsProduction()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", healthHandler(db, redisClient))

	router.Group(func(r chi.Router) {
		if cfg.Auth.Enabled() {
			// identifies token holders so the limiter can key by subject
			r.Use(custommiddleware.OptionalAuthMiddleware(cfg.Auth.Secret, logger))
		}
		if redisClient != nil {
			r.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "ratelimit:catalog",
			}, logger))
		}

		s := store.New(db)
		products := repository.NewProductRepository(s, logger)
		categories := repository.NewCategoryRepository(s, logger)

		opts := transport.HandlerOptions{EmptyListNotFound: cfg.API.EmptyListNotFound}
		guard := writeGuard(cfg.Auth, logger)

		transport.NewProductHandler(products, logger, opts).RegisterRoutes(r, guard)
		transport.NewCategoryHandler(categories, logger, opts).RegisterRoutes(r, guard)
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

// writeGuard requires a bearer token carrying the write role on mutating
// routes. It returns nil when no JWT secret is configured.
func writeGuard(auth config.AuthConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if !auth.Enabled() {
		return nil
	}
	authenticate := custommiddleware.AuthMiddleware(auth.Secret, logger)
	authorize := custommiddleware.RequireRole([]string{auth.WriteRole}, logger)
	return func(next http.Handler) http.Handler {
		return authenticate(authorize(next))
	}
}

func healthHandler(db *gorm.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := database.Health(r.Context(), db)
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				stats["redis"] = "down"
			} else {
				stats["redis"] = "up"
			}
		}

		custommiddleware.RespondWithJSON(w, status, stats)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
