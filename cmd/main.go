package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pastelaria-service/internal/handler"
	"pastelaria-service/internal/imagestore"
	"pastelaria-service/internal/imagestore/fs"
	"pastelaria-service/internal/imagestore/memory"
	"pastelaria-service/internal/imagestore/s3"
	mid "pastelaria-service/internal/middleware"
	"pastelaria-service/internal/repository"
	"pastelaria-service/pkg/config"
	"pastelaria-service/pkg/database"
	"pastelaria-service/pkg/jwtutil"
	"pastelaria-service/pkg/logger"
	"pastelaria-service/prometheus"
)

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+appConfig.ServiceName, appConfig.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Prometheus metrics
	metrics := prometheus.NewMetrics(appConfig.Metrics.Prefix, prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.Open(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize image storage
	backend, err := newImageBackend(ctx, &appConfig.Storage)
	if err != nil {
		log.Fatal("Failed to initialize image storage", zap.Error(err))
	}
	images := imagestore.New(backend)
	if fsBackend, ok := backend.(*fs.Backend); ok {
		log.Info("Serving images from disk", zap.String("base_dir", fsBackend.BaseDir()))
	}

	policy, err := repository.ParseOrphanPolicy(appConfig.Storage.OrphanPolicy)
	if err != nil {
		log.Fatal("Invalid image orphan policy", zap.Error(err))
	}

	session := repository.NewSession(db)
	opts := []repository.Option{repository.WithMetrics(metrics)}

	handlers := &handler.Handlers{
		Customers: handler.NewCustomerHandler(
			repository.NewCustomerRepository(session, opts...)),
		ProductTypes: handler.NewProductTypeHandler(
			repository.NewProductTypeRepository(session, opts...)),
		Products: handler.NewProductHandler(
			repository.NewProductRepository(session, images, policy, opts...)),
		Images: handler.NewImageHandler(images),
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware(metrics))

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if appConfig.AuthEnabled() {
		api.Use(mid.AuthMiddleware(jwtutil.NewJWTUtil(&appConfig.JWT), metrics))
		log.Info("JWT authentication enabled")
	} else {
		log.Warn("JWT_SIGNING_KEY is empty, the API is served without authentication")
	}
	handlers.Register(e, api)

	// Start server
	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}

func newImageBackend(ctx context.Context, cfg *config.StorageConfig) (imagestore.Backend, error) {
	switch cfg.Backend {
	case "fs":
		return fs.New(fs.Config{BaseDir: cfg.BaseDir})
	case "s3":
		return s3.New(ctx, s3.Config{
			Region:                 cfg.S3.Region,
			Bucket:                 cfg.S3.Bucket,
			AccessKeyID:            cfg.S3.AccessKeyID,
			SecretAccessKey:        cfg.S3.SecretAccessKey,
			Endpoint:               cfg.S3.Endpoint,
			UsePathStyle:           cfg.S3.UsePathStyle,
			CreateBucketIfNotExist: cfg.S3.CreateBucket,
		})
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
