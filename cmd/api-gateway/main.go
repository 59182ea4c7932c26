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

	_ "github.com/docuflow/pdf2csv-api/api/swagger"
	"github.com/docuflow/pdf2csv-api/internal/extract"
	"github.com/docuflow/pdf2csv-api/internal/handler"
	"github.com/docuflow/pdf2csv-api/internal/middleware"
	"github.com/docuflow/pdf2csv-api/internal/repository"
	"github.com/docuflow/pdf2csv-api/internal/service"
	"github.com/docuflow/pdf2csv-api/pkg/cache"
	"github.com/docuflow/pdf2csv-api/pkg/config"
	"github.com/docuflow/pdf2csv-api/pkg/database"
	"github.com/docuflow/pdf2csv-api/pkg/jobs"
	"github.com/docuflow/pdf2csv-api/pkg/logger"
	corsmiddleware "github.com/docuflow/pdf2csv-api/pkg/middleware/cors"
	reqidmiddleware "github.com/docuflow/pdf2csv-api/pkg/middleware/requestid"
	"github.com/docuflow/pdf2csv-api/pkg/storage"
)

// @title PDF2CSV API
// @version 1.0.0
// @description Contact extraction pipeline for scanned PDF documents
// @BasePath /api/v1
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
	sugar := logr.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	uploadStorage, err := storage.NewLocalStorage(cfg.Pipeline.UploadDir)
	if err != nil {
		sugar.Fatalw("failed to init upload storage", "error", err)
	}
	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		sugar.Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	collectionRepo := repository.NewCollectionRepository(db)
	jobRepo := repository.NewJobRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	duplicateRepo := repository.NewDuplicateRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)
	extractor := extract.NewHTTPClient(cfg.Extractor, logr)
	docStore := service.NewDocumentStore(uploadStorage)

	// The queues invoke services that are constructed after the queues, so
	// handlers go through these indirections.
	var processingSvc *service.ProcessingService
	var exportSvc *service.ExportService

	extractionQueue := jobs.NewQueue("extraction", func(ctx context.Context, job jobs.Job) {
		processingSvc.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Pipeline.MaxConcurrentJobs,
		BufferSize: cfg.Pipeline.QueueBuffer,
		Logger:     logr,
	})
	exportQueue := jobs.NewQueue("export", func(ctx context.Context, job jobs.Job) {
		exportSvc.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Pipeline.QueueBuffer,
		Logger:     logr,
	})

	collectionSvc := service.NewCollectionService(collectionRepo, validator.New(), cacheSvc, logr)
	processingSvc = service.NewProcessingService(
		jobRepo,
		recordRepo,
		collectionRepo,
		extractor,
		docStore,
		extractionQueue,
		nil,
		cacheSvc,
		metricsSvc,
		logr,
		service.ProcessingServiceConfig{
			MaxGroupSize:     cfg.Pipeline.MaxGroupSize,
			DefaultGroupSize: cfg.Pipeline.DefaultGroupSize,
		},
	)
	locks := processingSvc.Locks()
	recordSvc := service.NewRecordService(recordRepo, locks, cacheSvc, logr)
	duplicateSvc := service.NewDuplicateService(duplicateRepo, locks, cacheSvc, logr)
	exportSvc = service.NewExportService(
		exportRepo,
		recordRepo,
		collectionRepo,
		exportStorage,
		signer,
		exportQueue,
		logr,
		service.ExportServiceConfig{
			DownloadPath:    cfg.APIPrefix + "/exports/download",
			ResultTTL:       cfg.Exports.ResultTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		},
	)

	extractionQueue.Start(ctx)
	exportQueue.Start(ctx)
	processingSvc.RecoverPendingJobs(ctx)
	exportSvc.StartCleanup(ctx)

	collectionHandler := handler.NewCollectionHandler(collectionSvc)
	jobHandler := handler.NewJobHandler(processingSvc)
	recordHandler := handler.NewRecordHandler(recordSvc)
	duplicateHandler := handler.NewDuplicateHandler(duplicateSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, collectionRepo, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		collections := api.Group("/collections")
		{
			collections.GET("", collectionHandler.List)
			collections.POST("", collectionHandler.Create)
			collections.GET("/:id", collectionHandler.Get)
			collections.PUT("/:id", collectionHandler.Update)
			collections.DELETE("/:id", collectionHandler.Delete)
			collections.POST("/:id/archive", collectionHandler.Archive)
			collections.POST("/:id/unarchive", collectionHandler.Unarchive)
			collections.GET("/:id/stats", collectionHandler.Stats)
		}

		files := api.Group("/files")
		{
			files.POST("/upload", jobHandler.Upload)
			files.GET("/jobs", jobHandler.List)
			files.GET("/jobs/:id", jobHandler.Status)
			files.DELETE("/jobs/:id", jobHandler.Cancel)
		}

		records := api.Group("/records")
		{
			records.GET("", recordHandler.List)
			records.GET("/stats/summary", recordHandler.Summary)
			records.POST("/bulk/validate", recordHandler.Validate)
			records.DELETE("/bulk/delete", recordHandler.BulkDelete)
			records.GET("/duplicates/groups", duplicateHandler.ListGroups)
			records.GET("/duplicates/groups/:id", duplicateHandler.GetGroup)
			records.POST("/duplicates/resolve", duplicateHandler.Resolve)
			records.GET("/:id", recordHandler.Get)
			records.PUT("/:id", recordHandler.Update)
			records.DELETE("/:id", recordHandler.Delete)
			records.POST("/:id/validate", recordHandler.ValidateOne)
		}

		exports := api.Group("/exports")
		{
			exports.POST("/generate", exportHandler.Generate)
			exports.GET("/history/list", exportHandler.History)
			exports.GET("/download/:token", exportHandler.Download)
			exports.POST("/bulk/delete", exportHandler.BulkDelete)
			exports.GET("/:id", exportHandler.Status)
			exports.GET("/:id/download", exportHandler.DownloadByID)
			exports.DELETE("/:id", exportHandler.Delete)
		}

		api.GET("/stats", metricsHandler.Stats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("server shutdown failed", "error", err)
	}
	extractionQueue.Stop()
	exportQueue.Stop()
	sugar.Infow("stopped")
}
