package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/colegio-api/api/swagger"
	"github.com/noah-isme/colegio-api/internal/handler"
	"github.com/noah-isme/colegio-api/internal/middleware"
	"github.com/noah-isme/colegio-api/internal/service"
	"github.com/noah-isme/colegio-api/internal/store"
	"github.com/noah-isme/colegio-api/pkg/cache"
	"github.com/noah-isme/colegio-api/pkg/config"
	"github.com/noah-isme/colegio-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/colegio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/colegio-api/pkg/middleware/requestid"
	"github.com/noah-isme/colegio-api/pkg/storage"
)

// @title Colegio API
// @version 1.0.0
// @description School management API: users, subjects, grades, schedules and curriculum topics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	hasher := service.BcryptHasher{}
	st := store.New()
	if cfg.Seed.DemoData {
		if err := st.Seed(hasher); err != nil {
			logr.Fatal("failed to seed demo data", zap.Error(err))
		}
		logr.Info("demo data loaded")
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		}
	}
	cacheRepo := cache.NewRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo.Available())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	invalidator := service.NewInvalidationService(cacheSvc, metricsSvc, cfg.Invalidation, logr)
	invalidator.Start(ctx)

	deps := service.Dependencies{
		Validator:   validator.New(),
		Logger:      logr,
		Metrics:     metricsSvc,
		Invalidator: invalidator,
	}

	authSvc := service.NewAuthService(st, hasher, deps.Validator, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	gradeSvc := service.NewGradeService(st, cacheSvc, deps)

	files, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	exportSvc := service.NewExportService(gradeSvc, st, &service.ExportLinks{
		Files:    files,
		Signer:   storage.NewSignedURLSigner(cfg.Export.SigningSecret, cfg.Export.LinkTTL),
		BasePath: strings.TrimRight(cfg.APIPrefix, "/") + "/exports",
	}, logr)
	go sweepExports(ctx, exportSvc, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), map[string]handler.ReadinessCheck{
		"store": func() error { return nil },
		"cache": func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return cacheRepo.Ping(pingCtx)
		},
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), authSvc, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Users:     handler.NewUserHandler(service.NewUserService(st, hasher, deps)),
		Subjects:  handler.NewSubjectHandler(service.NewSubjectService(st, deps)),
		Grades:    handler.NewGradeHandler(gradeSvc, exportSvc),
		Schedules: handler.NewScheduleHandler(service.NewScheduleService(st, cacheSvc, service.DefaultScheduleConfig(), deps)),
		Topics:    handler.NewTopicHandler(service.NewTopicService(st, deps)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(st, cacheSvc, deps)),
		Exports:   handler.NewExportHandler(exportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.Bool("cache", cacheSvc.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	invalidator.Stop()
	logr.Info("server stopped", zap.Any("invalidation", invalidator.Stats()))
}

// sweepExports removes stored exports once their links have expired.
func sweepExports(ctx context.Context, exports *service.ExportService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := exports.Cleanup(); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
