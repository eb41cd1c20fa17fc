package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/consultation-api/api/swagger"
	"github.com/noah-isme/consultation-api/internal/handler"
	"github.com/noah-isme/consultation-api/internal/middleware"
	"github.com/noah-isme/consultation-api/internal/models"
	"github.com/noah-isme/consultation-api/internal/repository"
	"github.com/noah-isme/consultation-api/internal/service"
	"github.com/noah-isme/consultation-api/pkg/cache"
	"github.com/noah-isme/consultation-api/pkg/config"
	"github.com/noah-isme/consultation-api/pkg/database"
	"github.com/noah-isme/consultation-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/consultation-api/pkg/middleware/cors"
	ratelimitmiddleware "github.com/noah-isme/consultation-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/consultation-api/pkg/middleware/requestid"
)

// @title Consultation Analytics API
// @version 1.0.0
// @description Retrieval, statistics and export for tutoring consultation records
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, stats caching disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Consultations.StatsCacheTTL, logr, redisClient != nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})

	consultationSvc := service.NewConsultationService(service.ConsultationServiceParams{
		Store:   repository.NewConsultationRepository(db),
		Roster:  repository.NewRosterRepository(db),
		Staff:   repository.NewStaffRepository(db),
		Cache:   cacheSvc,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.ConsultationServiceConfig{
			FetchLimit:      cfg.Consultations.FetchLimit,
			DefaultPageSize: cfg.Consultations.DefaultPageSize,
			MaxPageSize:     cfg.Consultations.MaxPageSize,
			MonthlyTarget:   cfg.Consultations.MonthlyTarget,
			UrgentDays:      cfg.Consultations.UrgentDays,
			StatsCacheTTL:   cfg.Consultations.StatsCacheTTL,
			Location:        cfg.Consultations.Location(),
		},
	})
	exportSvc := service.NewExportService(consultationSvc, logr, nil, nil)

	validate := validator.New()
	consultationHandler := handler.NewConsultationHandler(consultationSvc, exportSvc, validate)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.DependencyCheck{
		"postgres": db.PingContext,
		"redis":    cacheRepo.Ping,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(ratelimitmiddleware.Middleware(ratelimitmiddleware.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	api.Use(middleware.JWT(authSvc))
	api.Use(middleware.WithResponseMeta())

	admin := api.Group("/system", middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	admin.GET("/metrics", metricsHandler.System)

	if cfg.Consultations.Enabled {
		consultations := api.Group("/consultations", middleware.ClientSession())
		consultations.GET("", consultationHandler.List)
		consultations.GET("/paged", consultationHandler.Page)
		consultations.GET("/stats", consultationHandler.Stats)
		consultations.GET("/export", consultationHandler.Export)
		consultations.GET("/follow-ups/days-left", consultationHandler.DaysLeft)
		consultations.GET("/:id", consultationHandler.Get)
		consultations.GET("/:id/urgency", consultationHandler.Urgency)
	}

	warmCtx, stopWarm := context.WithCancel(context.Background())
	defer stopWarm()
	if cfg.Consultations.Enabled && cfg.Consultations.WarmInterval > 0 && cacheSvc.Enabled() {
		warmer := service.NewStatsWarmer(consultationSvc, logr, service.StatsWarmerConfig{
			Presets:  cfg.Consultations.WarmPresets,
			Interval: cfg.Consultations.WarmInterval,
		})
		go warmer.Run(warmCtx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopWarm()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
