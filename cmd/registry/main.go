package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/fraud-registry/internal/comments"
	"github.com/richxcame/fraud-registry/internal/registry"
	"github.com/richxcame/fraud-registry/internal/reports"
	"github.com/richxcame/fraud-registry/internal/triage"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/config"
	"github.com/richxcame/fraud-registry/pkg/database"
	"github.com/richxcame/fraud-registry/pkg/errorreporting"
	"github.com/richxcame/fraud-registry/pkg/eventbus"
	"github.com/richxcame/fraud-registry/pkg/health"
	"github.com/richxcame/fraud-registry/pkg/jwtkeys"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/richxcame/fraud-registry/pkg/middleware"
	"github.com/richxcame/fraud-registry/pkg/redis"
	"github.com/richxcame/fraud-registry/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName    = "fraud-registry"
	serviceVersion = "1.0.0"
)

// backend is the storage wired for the configured REGISTRY_BACKEND
type backend struct {
	store   registry.Store
	reviews reports.ReviewRepository
	checks  map[string]common.CheckFunc
	close   func()
}

// app holds everything the router needs
type app struct {
	registry    *registry.Service
	reports     *reports.Service
	comments    *comments.Service
	jwtProvider jwtkeys.KeyProvider
	checks      map[string]common.CheckFunc
}

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  serviceName,
		Environment:  cfg.Server.Environment,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down tracing", zap.Error(err))
		}
	}()

	sentryEnabled, err := errorreporting.Init(errorreporting.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Server.Environment,
		ServiceName: serviceName,
		Release:     serviceVersion,
	})
	if err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without it", zap.Error(err))
	}
	if sentryEnabled {
		defer errorreporting.Flush(2 * time.Second)
	}

	be, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open registry backend", zap.String("backend", cfg.Registry.Backend), zap.Error(err))
	}
	defer be.close()

	if cfg.Registry.SeedDemo {
		if err := registry.SeedDemo(ctx, be.store); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	var publisher eventbus.Publisher = eventbus.NopPublisher{}
	if cfg.NATS.Enabled {
		bus, err := eventbus.Connect(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			defer bus.Close()
			publisher = bus
			be.checks["nats"] = health.PingChecker(bus)
			logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
		}
	}

	gate, err := triage.NewGateFromConfig(cfg.Triage)
	if err != nil {
		logger.Fatal("Failed to build triage gate", zap.Error(err))
	}

	policy, err := reports.ParsePolicy(cfg.Reports.SuspiciousPolicy)
	if err != nil {
		logger.Fatal("Invalid report policy", zap.Error(err))
	}

	registrySvc := registry.NewService(be.store)
	a := &app{
		registry:    registrySvc,
		reports:     reports.NewService(registrySvc.Store(), gate, be.reviews, publisher, policy),
		comments:    comments.NewService(registrySvc.Store(), publisher),
		jwtProvider: jwtkeys.NewStaticProvider(cfg.JWT.Secret),
		checks:      be.checks,
	}

	router := newRouter(cfg, a, sentryEnabled)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Fraud registry starting",
			zap.String("port", cfg.Server.Port),
			zap.String("backend", cfg.Registry.Backend),
			zap.String("triage", cfg.Triage.Provider),
			zap.String("policy", string(policy)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openBackend connects the configured registry store and a matching review repository
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Registry.Backend {
	case "postgres":
		if err := database.Migrate(cfg.Database.URL()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := database.NewPostgresPool(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Database.Host))
		return &backend{
			store:   registry.NewPostgresStore(pool),
			reviews: reports.NewPostgresReviewRepository(pool),
			checks: map[string]common.CheckFunc{
				"database": health.DatabaseChecker(database.SQLDB(pool)),
			},
			close: func() { database.Close(pool) },
		}, nil

	case "redis":
		client, err := redis.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.RedisAddr()))
		return &backend{
			store:   registry.NewRedisStore(client.Client),
			reviews: reports.NewMemoryReviewRepository(),
			checks: map[string]common.CheckFunc{
				"redis": health.RedisChecker(client.Client),
			},
			close: func() {
				if err := client.Close(); err != nil {
					logger.Warn("Failed to close Redis client", zap.Error(err))
				}
			},
		}, nil

	default:
		store := registry.NewMemoryStore()
		return &backend{
			store:   store,
			reviews: reports.NewMemoryReviewRepository(),
			checks: map[string]common.CheckFunc{
				"registry": health.PingChecker(store),
			},
			close: func() {},
		}, nil
	}
}

// newRouter builds the HTTP surface: middleware chain, health, metrics and API routes
func newRouter(cfg *config.Config, a *app, sentryEnabled bool) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	if sentryEnabled {
		router.Use(errorreporting.Middleware())
	}
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.MaxBodySize(middleware.DefaultMaxBodySize))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.Server.CORSOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/live", common.HealthCheck(serviceName, serviceVersion))
	router.GET("/health/ready", common.HealthCheckWithDeps(serviceName, serviceVersion, a.checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	registry.NewHandler(a.registry).RegisterRoutes(api)
	comments.NewHandler(a.comments).RegisterRoutes(api, a.jwtProvider)
	reports.NewHandler(a.reports).RegisterRoutes(api, a.jwtProvider)

	return router
}

func splitOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
