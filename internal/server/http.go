package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	"github.com/lk2023060901/vehicle-discovery/internal/auth/middleware"
	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	"github.com/lk2023060901/vehicle-discovery/internal/data"
	listingservice "github.com/lk2023060901/vehicle-discovery/internal/listing/service"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	savedsearchservice "github.com/lk2023060901/vehicle-discovery/internal/savedsearch/service"
	cors "github.com/rs/cors/wrapper/gin"
	"go.uber.org/zap"
)

type HTTPServer struct {
	server *http.Server
	router *gin.Engine
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	jwtManager *auth.JWTManager,
	listingService *listingservice.ListingService,
	savedSearchService *savedsearchservice.SavedSearchService,
) *HTTPServer {
	if config.Server.Mode != "" {
		gin.SetMode(config.Server.Mode)
	}

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{SkipPaths: []string{"/health"}}))
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   config.CORS.AllowedOrigins,
		AllowedMethods:   config.CORS.AllowedMethods,
		AllowedHeaders:   config.CORS.AllowedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           config.CORS.MaxAge,
	}))

	router.GET("/health", healthHandler(d))

	api := router.Group("/api/v1")
	listingService.RegisterRoutes(api, middleware.OptionalJWTAuth(jwtManager))
	savedSearchService.RegisterRoutes(api,
		middleware.JWTAuth(jwtManager, log),
		middleware.RateLimiter(d.Redis, config.RateLimit, log),
	)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)

	return &HTTPServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.Server.ReadTimeout,
			WriteTimeout: config.Server.WriteTimeout,
		},
		router: router,
		logger: log,
	}
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func healthHandler(d *data.Data) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok"}

		if err := d.DB.HealthCheck(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if d.Redis != nil {
			checks["redis"] = "ok"
			if err := d.Redis.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks["redis"] = err.Error()
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{
			"status": state,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
