package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studio-interiors/site-server/config"
	"github.com/studio-interiors/site-server/internal/cms"
	"github.com/studio-interiors/site-server/internal/handlers"
	"github.com/studio-interiors/site-server/internal/seo"
	"github.com/studio-interiors/site-server/internal/services"
	"github.com/studio-interiors/site-server/pkg/circuitbreaker"
	"github.com/studio-interiors/site-server/pkg/httpclient"
	"github.com/studio-interiors/site-server/pkg/logger"
	"github.com/studio-interiors/site-server/pkg/metrics"
	"github.com/studio-interiors/site-server/pkg/profiling"
	"github.com/studio-interiors/site-server/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		FileOutput:  cfg.IsProduction(),
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting site server",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("dist_dir", cfg.Server.DistDir),
	)

	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.ExporterEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Error("Failed to start profiler", zap.Error(err))
	} else {
		defer stopProfiler()
	}

	metrics.RecordInfrastructureMetrics()

	httpClient := httpclient.NewStandardClient()

	cmsClient := cms.NewClient(cfg.CMS.URL, httpClient,
		cms.WithTimeout(cfg.CMSTimeout()),
		cms.WithCircuitBreaker(circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("cms"))),
	)

	resolver := seo.NewResolver(cmsClient, nil)
	injector := seo.NewInjector(cfg.Server.SiteName)

	emailService := services.NewEmailService(cfg.Email, httpClient)
	contentService := services.NewContentService(cmsClient)

	pageHandler := handlers.NewPageHandler(cfg.Server.DistDir, cfg.Server.BaseURL, resolver, injector)
	if _, statErr := os.Stat(pageHandler.ShellPath()); statErr != nil {
		logger.Warn("HTML shell not found; pages will fail until the frontend is built",
			zap.String("path", pageHandler.ShellPath()))
	}

	gin.SetMode(cfg.Server.GinMode)
	router := newRouter(cfg, routeHandlers{
		health:  handlers.NewHealthHandler(pageHandler.ShellPath()),
		email:   handlers.NewEmailHandler(emailService),
		content: handlers.NewContentHandler(contentService),
		page:    pageHandler,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
