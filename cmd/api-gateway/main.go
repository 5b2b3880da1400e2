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
	"go.uber.org/zap"

	_ "github.com/noah-isme/campusconnect-api/api/swagger"
	"github.com/noah-isme/campusconnect-api/internal/handler"
	"github.com/noah-isme/campusconnect-api/internal/middleware"
	"github.com/noah-isme/campusconnect-api/internal/models"
	"github.com/noah-isme/campusconnect-api/internal/repository"
	"github.com/noah-isme/campusconnect-api/internal/repository/memory"
	"github.com/noah-isme/campusconnect-api/internal/seed"
	"github.com/noah-isme/campusconnect-api/internal/service"
	"github.com/noah-isme/campusconnect-api/pkg/cache"
	"github.com/noah-isme/campusconnect-api/pkg/config"
	"github.com/noah-isme/campusconnect-api/pkg/database"
	"github.com/noah-isme/campusconnect-api/pkg/flows"
	"github.com/noah-isme/campusconnect-api/pkg/jobs"
	"github.com/noah-isme/campusconnect-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campusconnect-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campusconnect-api/pkg/middleware/requestid"
	"github.com/noah-isme/campusconnect-api/pkg/storage"
)

// @title CampusConnect API
// @version 1.0.0
// @description Multi-tenant school management: fees, attendance, payroll, parent requests and exports.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// reportStore is satisfied by both report job repositories.
type reportStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

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
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()
	checks := map[string]handler.Pinger{}

	repos, reportRepo, closeStore, err := openStorage(ctx, cfg, logr, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer client.Close() //nolint:errcheck
			repos.Cache = repository.NewCacheRepository(client, logr.Named("redis"))
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}

	svcs := service.NewServices(repos, metrics, logr, service.ServicesConfig{
		CacheEnabled: cfg.Cache.Enabled,
		CacheTTL:     cfg.Cache.TTL,
	})

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exports := service.NewExportService(svcs.Datasets, files, signer, metrics, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr.Named("exports"), nil, nil)

	var reports *service.ReportService
	worker := service.NewReportWorker(reportRepo, exports, metrics, logr.Named("report_worker"))
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		OnGiveUp: func(ctx context.Context, job jobs.Job, err error) {
			reports.GiveUp(ctx, job, err)
		},
		Logger: logr.Named("queue"),
	})
	reports = service.NewReportService(reportRepo, svcs.Datasets, queue, exports, metrics, logr.Named("reports"), service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	if cfg.Reports.Enabled {
		queue.Start(ctx)
		defer queue.Stop()
		reports.StartCleanup(ctx)
		reports.RecoverPendingJobs(ctx)
	}

	flowClient := flows.New(cfg.Flows.BaseURL, cfg.Flows.APIKey, cfg.Flows.Timeout)
	checks["flows"] = flowClient.Health
	assistant := service.NewAssistantService(flowClient, svcs.Invoices, cfg.Seed.SchoolName, nil, metrics, logr.Named("assistant"))

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	registerRoutes(r, cfg, routeDeps{
		services:  svcs,
		exports:   exports,
		reports:   reports,
		assistant: assistant,
		verifier:  service.NewTokenVerifier(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		metrics:   handler.NewMetricsHandler(metrics, checks),
		logger:    logr.Named("audit"),
		reporting: cfg.Reports.Enabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.StorageDriver)
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
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage builds the repositories for the configured driver. The memory
// driver is seeded with the demo school.
func openStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.Pinger) (service.Repositories, reportStore, func(), error) {
	if cfg.StorageDriver == config.StoragePostgres {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return service.Repositories{}, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return service.Repositories{}, nil, nil, err
		}
		checks["database"] = db.PingContext
		repos := service.Repositories{
			Invoices:    repository.NewInvoiceRepository(db),
			Attendance:  repository.NewAttendanceRepository(db),
			Salaries:    repository.NewSalaryRepository(db),
			Requests:    repository.NewRequestRepository(db),
			History:     repository.NewHistoryRepository(db),
			Hostel:      repository.NewHostelRepository(db),
			Homework:    repository.NewHomeworkRepository(db),
			Performance: repository.NewPerformanceRepository(db),
		}
		return repos, repository.NewReportRepository(db), func() { _ = db.Close() }, nil
	}

	store := memory.NewStore()
	invoices := memory.NewInvoiceRepository(store)
	attendance := memory.NewAttendanceRepository(store)
	salaries := memory.NewSalaryRepository(store)
	requests := memory.NewRequestRepository(store)
	hostel := memory.NewHostelRepository(store)
	homework := memory.NewHomeworkRepository(store)
	performance := memory.NewPerformanceRepository(store)
	err := seed.Load(ctx, seed.Targets{
		Invoices:    invoices,
		Attendance:  attendance,
		Salaries:    salaries,
		Requests:    requests,
		Hostel:      hostel,
		Homework:    homework,
		Performance: performance,
	}, cfg.Seed.SchoolID, models.Today(), logr.Named("seed"))
	if err != nil {
		return service.Repositories{}, nil, nil, err
	}
	repos := service.Repositories{
		Invoices:    invoices,
		Attendance:  attendance,
		Salaries:    salaries,
		Requests:    requests,
		History:     memory.NewHistoryRepository(store),
		Hostel:      hostel,
		Homework:    homework,
		Performance: performance,
	}
	return repos, memory.NewReportRepository(store), func() {}, nil
}
