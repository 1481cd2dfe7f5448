package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/songquanpeng/apitest/common"
	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/common/graceful"
	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/controller"
	"github.com/songquanpeng/apitest/middleware"
	"github.com/songquanpeng/apitest/monitor"
	"github.com/songquanpeng/apitest/router"
)

func main() {
	common.Init()
	logger.SetupLogger()

	logger.Logger.Info("apitest server started",
		zap.String("version", common.Version),
		zap.String("llm_provider", config.LLMProvider))

	if config.GinMode != gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Prometheus monitoring
	if config.EnablePrometheusMetrics {
		if err := monitor.InitPrometheusMonitoring(prometheus.DefaultRegisterer); err != nil {
			logger.Logger.Fatal("failed to initialize Prometheus monitoring", zap.Error(err))
		}
		logger.Logger.Info("Prometheus monitoring initialized")
	}

	controller.InitTaskAgent()

	logLevel := glog.LevelInfo
	if config.DebugEnabled {
		logLevel = glog.LevelDebug
	}

	// Initialize HTTP server
	server := gin.New()
	server.RedirectTrailingSlash = false
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(logLevel.String()),
			gmw.WithLogger(logger.Logger.Named("gin")),
		),
	)
	server.Use(cors.Default())
	server.Use(gzip.Gzip(gzip.DefaultCompression))
	server.Use(middleware.RequestId())
	server.Use(middleware.TracingMiddleware())
	server.Use(graceful.GinRequestTracker())

	if config.EnablePrometheusMetrics {
		server.Use(middleware.PrometheusMiddleware())
		logger.Logger.Info("Prometheus metrics endpoint available at /metrics")
	}

	router.SetRouter(server)

	port := config.ServerPort
	if port == "" {
		port = strconv.Itoa(*common.Port)
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	graceful.GoCritical(context.Background(), "http-server", func(context.Context) {
		logger.Logger.Info("server listening", zap.String("address", "http://localhost:"+port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	graceful.SetDraining()
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := graceful.Drain(ctx); err != nil {
		logger.Logger.Error("graceful drain finished with error", zap.Error(err))
	}
	logger.Logger.Info("server exited")
}
