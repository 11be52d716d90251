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

	_ "github.com/noah-isme/beasiswa-status-api/api/swagger"
	"github.com/noah-isme/beasiswa-status-api/internal/csvimport"
	"github.com/noah-isme/beasiswa-status-api/internal/handler"
	"github.com/noah-isme/beasiswa-status-api/internal/middleware"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/internal/repository"
	"github.com/noah-isme/beasiswa-status-api/internal/service"
	"github.com/noah-isme/beasiswa-status-api/pkg/cache"
	"github.com/noah-isme/beasiswa-status-api/pkg/config"
	"github.com/noah-isme/beasiswa-status-api/pkg/database"
	"github.com/noah-isme/beasiswa-status-api/pkg/database/migrations"
	"github.com/noah-isme/beasiswa-status-api/pkg/export"
	"github.com/noah-isme/beasiswa-status-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/beasiswa-status-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/beasiswa-status-api/pkg/middleware/requestid"
	"github.com/noah-isme/beasiswa-status-api/pkg/storage"
)

// @title Beasiswa Status API
// @version 1.0.0
// @description Scholarship application tracking: public status lookup and administrative management.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
	shutdownTimeout      = 15 * time.Second
)

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
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if len(applied) > 0 {
		logr.Info("migrations applied", zap.Strings("files", applied))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.StatusCheck.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("status cache disabled, redis unreachable", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.StatusCheck.CacheTTL, logr, cacheRepo != nil)

	applicationRepo := repository.NewApplicationRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	audit := service.NewAuditDispatcher(repository.NewAuditRepository(db), logr)
	audit.Start(ctx)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		audit.Stop(flushCtx)
	}()

	authSvc := service.NewAuthService(adminRepo, audit, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	if created {
		logr.Info("administrator account created", zap.String("username", cfg.Admin.Username))
	}
	if cfg.Admin.Username == defaultAdminUsername && cfg.Admin.Password == defaultAdminPassword {
		logr.Warn("administrator uses the default credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}

	var archive *storage.LocalStorage
	if cfg.Import.ArchiveDir != "" {
		archive, err = storage.NewLocalStorage(cfg.Import.ArchiveDir)
		if err != nil {
			return fmt.Errorf("prepare import archive: %w", err)
		}
		go pruneArchive(ctx, archive, cfg.Import.ArchiveRetention, logr)
	}

	applicationSvc := service.NewApplicationService(applicationRepo, cacheSvc, metrics, validate, logr)
	policy := csvimport.NewPolicy(cfg.Import.DefaultPolicy, cfg.Import.DefaultGPA, cfg.Import.DefaultIncome)
	importSvc := service.NewImportService(applicationRepo, optionalArchive(archive), cacheSvc, metrics, validate, logr, service.ImportConfig{
		Policy:      policy,
		MaxFileSize: cfg.Import.MaxFileSizeBytes,
	})
	exportSvc := service.NewExportService(applicationRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	logr.Info("csv import policy", zap.String("policy", policy.String()))

	limiter := middleware.NewRateLimiter(cfg.StatusCheck.RateLimitRPS, cfg.StatusCheck.RateLimitBurst, logr)
	limiter.StartCleanup(ctx, time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	statusHandler := handler.NewStatusHandler(applicationSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, exportSvc)
	importHandler := handler.NewImportHandler(importSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/check-status", limiter.Handler(), statusHandler.Check)

	admin := api.Group("/admin")
	admin.POST("/login", authHandler.Login)

	secured := admin.Group("")
	secured.Use(middleware.JWT(authSvc))
	secured.GET("/me", authHandler.Me)
	secured.GET("/applications", applicationHandler.List)
	secured.GET("/applications/export", applicationHandler.Export)
	secured.GET("/applications/:id", applicationHandler.Get)
	secured.POST("/applications",
		middleware.Audit(audit, logr, models.AuditActionApplicationCreate, "application"),
		applicationHandler.Create)
	secured.PUT("/applications/:id",
		middleware.Audit(audit, logr, models.AuditActionApplicationUpdate, "application"),
		applicationHandler.Update)
	secured.DELETE("/applications/:id",
		middleware.Audit(audit, logr, models.AuditActionApplicationDelete, "application"),
		applicationHandler.Delete)
	secured.POST("/import-csv",
		middleware.Audit(audit, logr, models.AuditActionApplicationImport, "application"),
		importHandler.Import)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// optionalArchive keeps a nil *LocalStorage from becoming a non-nil interface.
func optionalArchive(archive *storage.LocalStorage) interface {
	Save(name string, data []byte) (string, error)
} {
	if archive == nil {
		return nil
	}
	return archive
}

func pruneArchive(ctx context.Context, archive *storage.LocalStorage, retention time.Duration, logr *zap.Logger) {
	if retention <= 0 {
		return
	}
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()
	for {
		deleted, err := archive.PruneOlderThan(retention)
		switch {
		case err != nil:
			logr.Warn("failed to prune import archive", zap.Error(err))
		case len(deleted) > 0:
			logr.Info("pruned import archive", zap.Int("files", len(deleted)))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
