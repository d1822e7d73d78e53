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

	_ "github.com/hero-academy/academy-api/api/swagger"
	"github.com/hero-academy/academy-api/internal/handler"
	"github.com/hero-academy/academy-api/internal/middleware"
	"github.com/hero-academy/academy-api/internal/models"
	"github.com/hero-academy/academy-api/internal/repository"
	"github.com/hero-academy/academy-api/internal/service"
	"github.com/hero-academy/academy-api/pkg/cache"
	"github.com/hero-academy/academy-api/pkg/config"
	"github.com/hero-academy/academy-api/pkg/database"
	"github.com/hero-academy/academy-api/pkg/jobs"
	"github.com/hero-academy/academy-api/pkg/logger"
	corsmiddleware "github.com/hero-academy/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hero-academy/academy-api/pkg/middleware/requestid"
	"github.com/hero-academy/academy-api/pkg/storage"
)

// @title Hero Academy API
// @version 1.0.0
// @description Role-gated learning management API for classes and contents
// @BasePath /api
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	contentRepo := repository.NewContentRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	classService := service.NewClassService(classRepo, cacheService, validate, logr, cfg.Classes.AdminArchiveBypass)

	attachmentStore, err := storage.NewLocalStorage(cfg.Contents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	contentService := service.NewContentService(contentRepo, classService, attachmentStore, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	classHandler := handler.NewClassHandler(classService)
	contentHandler := handler.NewContentHandler(contentService, cfg.Contents.MaxFileSizeBytes)
	pageHandler := handler.NewPageHandler(classService, contentService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	var reportQueue *jobs.Queue
	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportService := service.NewReportService(reportRepo, classRepo, contentRepo, reportStore, signer, validate, logr)
		reportQueue = jobs.NewQueue("reports", reportService.Process, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			JobTimeout: cfg.Reports.JobTimeout,
			Logger:     logr,
		})
		reportService.BindQueue(reportQueue)
		reportQueue.Start(context.Background())
		reportHandler = handler.NewReportHandler(reportService)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", middleware.Audit(userRepo, models.AuditActionLogin, "auth"), authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), middleware.Audit(userRepo, models.AuditActionLogout, "auth"), authHandler.Logout)
	auth.GET("/session", middleware.OptionalJWT(authService), authHandler.Session)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	teacher := api.Group("/teacher")
	teacher.Use(middleware.JWT(authService), middleware.RequireRole(models.RoleTeacher))
	{
		teacher.GET("/classes", classHandler.List)
		teacher.POST("/classes", middleware.Audit(userRepo, models.AuditActionClassCreate, "classes"), classHandler.Create)
		teacher.GET("/classes/:id", classHandler.Get)
		teacher.PUT("/classes/:id", middleware.Audit(userRepo, models.AuditActionClassUpdate, "classes"), classHandler.Update)
		teacher.POST("/classes/:id/archive", middleware.Audit(userRepo, models.AuditActionClassArchive, "classes"), classHandler.Archive)

		teacher.GET("/classes/:id/contents", contentHandler.List)
		teacher.POST("/classes/:id/contents", middleware.Audit(userRepo, models.AuditActionContentCreate, "contents"), contentHandler.Create)
		teacher.DELETE("/classes/:id/contents/:contentId", middleware.Audit(userRepo, models.AuditActionContentDelete, "contents"), contentHandler.Delete)

		if reportHandler != nil {
			teacher.POST("/reports", reportHandler.Enqueue)
			teacher.GET("/reports/:id", reportHandler.Status)
		}
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authService), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/classes/:id/approve", middleware.Audit(userRepo, models.AuditActionClassApprove, "classes"), classHandler.Approve)
		admin.POST("/classes/:id/reject", middleware.Audit(userRepo, models.AuditActionClassApprove, "classes"), classHandler.Reject)
	}

	pages := api.Group("/pages/teacher")
	pages.Use(middleware.OptionalJWT(authService), middleware.PageGuard(models.RoleTeacher))
	{
		pages.GET("/classes/new", pageHandler.NewClass)
		pages.GET("/classes/:id/edit", pageHandler.EditClass)
		pages.GET("/classes/:id/contents/new", pageHandler.NewContent)
	}

	if reportHandler != nil {
		api.GET("/reports/download", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
