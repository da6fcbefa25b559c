package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/edunotes-api/api/swagger"
	"github.com/noah-isme/edunotes-api/internal/handler"
	internalmiddleware "github.com/noah-isme/edunotes-api/internal/middleware"
	"github.com/noah-isme/edunotes-api/internal/repository"
	"github.com/noah-isme/edunotes-api/internal/service"
	"github.com/noah-isme/edunotes-api/pkg/config"
	"github.com/noah-isme/edunotes-api/pkg/jobs"
	"github.com/noah-isme/edunotes-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/edunotes-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edunotes-api/pkg/middleware/requestid"
	"github.com/noah-isme/edunotes-api/pkg/storage"
)

// @title EduNotes API
// @version 1.0.0
// @description Study materials portal: semester-gated notes, notifications, bookmarks and feedback
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	kv, ready, err := openStore(ctx, cfg, logr, metrics)
	if err != nil {
		return err
	}
	defer kv.Close()

	repos, err := repository.Open(ctx, kv)
	if err != nil {
		return fmt.Errorf("open repositories: %w", err)
	}

	validate, err := service.NewValidator()
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	auth := service.NewAuthService(repos.Profiles, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		AdminCode:         cfg.Admin.Code,
	})
	notes := service.NewNoteService(repos.Notes, repos.Notifications, repos.Profiles, validate, logr, service.NoteConfig{
		MaxFileSizeBytes: cfg.Notes.MaxFileSizeBytes,
		RecentDays:       cfg.Notes.RecentDays,
		RecentLimit:      cfg.Notes.RecentLimit,
	})
	dashboard := service.NewDashboardService(service.DashboardServiceParams{
		Notes:         repos.Notes,
		Notifications: repos.Notifications,
		Bookmarks:     repos.Bookmarks,
		Feedback:      repos.Feedback,
		Profiles:      repos.Profiles,
		Metrics:       metrics,
		Logger:        logr,
		Config: service.DashboardServiceConfig{
			RecentDays:   cfg.Notes.RecentDays,
			RecentLimit:  cfg.Notes.RecentLimit,
			PollInterval: cfg.Notifications.PollInterval,
		},
	})

	handlers := handler.Handlers{
		Auth:          handler.NewAuthHandler(auth),
		Notes:         handler.NewNoteHandler(notes, cfg.Notes.MaxFileSizeBytes),
		Notifications: handler.NewNotificationHandler(service.NewNotificationService(repos.Notifications, repos.Profiles, validate, logr), int(cfg.Notifications.PollInterval/time.Second)),
		Bookmarks:     handler.NewBookmarkHandler(service.NewBookmarkService(repos.Bookmarks, repos.Notes, repos.Profiles, logr)),
		Profile:       handler.NewProfileHandler(service.NewProfileService(repos.Profiles, validate, logr)),
		Feedback:      handler.NewFeedbackHandler(service.NewFeedbackService(repos.Feedback, validate, logr)),
		Dashboard:     handler.NewDashboardHandler(dashboard),
	}

	if cfg.Exports.Enabled {
		exports, queue, err := startExports(ctx, cfg, logr, repos, validate, metrics)
		if err != nil {
			return err
		}
		defer queue.Stop()
		handlers.Exports = handler.NewExportHandler(exports)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins}))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, ready)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handlers, auth, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startExports(ctx context.Context, cfg *config.Config, logr *zap.Logger, repos *repository.Repositories, validate *validator.Validate, metrics *service.MetricsService) (*service.ExportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	retries := cfg.Exports.WorkerRetries
	if retries <= 0 {
		retries = 3
	}
	exports := service.NewExportService(service.ExportServiceParams{
		Jobs:      repos.ExportJobs,
		Notes:     repos.Notes,
		Storage:   files,
		Signer:    storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
		Config: service.ExportConfig{
			APIPrefix:  cfg.APIPrefix,
			ResultTTL:  cfg.Exports.ResultTTL,
			MaxRetries: retries,
		},
	})

	queue := jobs.NewQueue("exports", exports.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: retries,
		Logger:     logr,
	})
	queue.Start(ctx)
	exports.AttachQueue(queue)

	go exports.RunCleanup(ctx, cfg.Exports.CleanupInterval)
	return exports, queue, nil
}
