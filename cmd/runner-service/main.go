package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"coderun/internal/common/http/middleware"
	runnerconfig "coderun/internal/runner/config"
	"coderun/internal/runner/controller"
	"coderun/internal/runner/observer"
	"coderun/pkg/utils/logger"
	"coderun/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/runner_service.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var (
		metrics  observer.MetricsRecorder = observer.NoopMetricsRecorder{}
		registry *prometheus.Registry
	)
	if appCfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder, err := observer.NewPrometheusRecorder(registry)
		if err != nil {
			logger.Error(context.Background(), "init metrics failed", zap.Error(err))
			return
		}
		metrics = recorder
	}

	execSvc, err := runnerconfig.NewService(appCfg.EngineConfig, metrics)
	if err != nil {
		logger.Error(context.Background(), "init execution service failed", zap.Error(err))
		return
	}

	httpServer := buildHTTPServer(appCfg, controller.NewExecuteController(execSvc), registry)
	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "runner http server started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("source_dir", appCfg.Workspace.SourceDir),
			zap.String("output_dir", appCfg.Workspace.OutputDir),
			zap.Bool("auth", appCfg.Auth.Enabled()),
		)
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	// In-flight submissions finish and clean up their files before exit.
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout+appCfg.Runner.Timeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}

func buildHTTPServer(cfg *AppConfig, h *controller.ExecuteController, registry *prometheus.Registry) *http.Server {
	router := gin.New()
	router.Use(middleware.Recovery(controller.RecoveryPayload))
	router.Use(middleware.TraceContext())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.CORS))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if registry != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1", middleware.Auth(cfg.Auth))
	api.POST("/execute", h.Execute)
	api.GET("/languages", h.Languages)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "")
	})

	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
