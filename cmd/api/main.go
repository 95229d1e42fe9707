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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/api/swagger"
	"github.com/noah-isme/student-resources-api/internal/handler"
	internalmiddleware "github.com/noah-isme/student-resources-api/internal/middleware"
	"github.com/noah-isme/student-resources-api/internal/repository"
	"github.com/noah-isme/student-resources-api/internal/service"
	"github.com/noah-isme/student-resources-api/pkg/config"
	"github.com/noah-isme/student-resources-api/pkg/database"
	"github.com/noah-isme/student-resources-api/pkg/jobs"
	"github.com/noah-isme/student-resources-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-resources-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-resources-api/pkg/middleware/requestid"
	"github.com/noah-isme/student-resources-api/pkg/redisclient"
	"github.com/noah-isme/student-resources-api/pkg/storage"
)

// uploadFormOverhead leaves room for multipart boundaries and metadata fields.
const uploadFormOverhead = 1 << 20

// @title Student Resources API
// @version 1.0.0
// @description Upload, moderation and catalog service for shared study materials
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	if cfg.Database.Embedded() {
		logr.Warn("DATABASE_URL missing or placeholder, using in-memory database")
	}
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	redisClient, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, moderation events will only be logged", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	eventRepo := repository.NewEventRepository(redisClient, cfg.Events.QueueKey, logr)
	defer eventRepo.Close() //nolint:errcheck
	eventQueue := jobs.NewQueue("material-events", service.NewEventJobHandler(eventRepo), jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: cfg.Events.RetryDelay,
		Logger:     logr,
	})
	eventQueue.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		eventQueue.Stop(stopCtx)
	}()

	fileStore, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	materialRepo := repository.NewMaterialRepository(db, metricsSvc)
	auditRepo := repository.NewAuditRepository(db)

	materialSvc := service.NewMaterialService(
		materialRepo,
		auditRepo,
		service.NewEventService(eventQueue, logr),
		fileStore,
		metricsSvc,
		logr,
		service.MaterialServiceConfig{APIPrefix: cfg.APIPrefix},
	)
	uploadSvc := service.NewUploadService(materialSvc, fileStore, signer, validator.New(), metricsSvc, logr, service.UploadServiceConfig{
		MaxFileSize:  cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Storage.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})
	exportSvc := service.NewExportService(materialSvc, logr, nil, nil)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Materials: handler.NewMaterialHandler(materialSvc),
		Admin:     handler.NewAdminHandler(materialSvc, exportSvc, uploadSvc),
		User:      handler.NewUserHandler(materialSvc),
		Uploads:   handler.NewUploadHandler(uploadSvc, cfg.Storage.MaxFileSizeBytes+uploadFormOverhead),
		Files:     handler.NewFileHandler(uploadSvc),
		Metrics:   handler.NewMetricsHandler(metricsSvc),
		SPA:       handler.NewSPAHandler(cfg.StaticDir, cfg.APIPrefix),
	})

	if cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = cfg.APIPrefix
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.Database.DriverName()),
			zap.Bool("redis", redisClient != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
