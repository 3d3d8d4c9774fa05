package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/weather"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/config"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/logger"
	"github.com/FACorreiaa/smart-harvest/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	zlog, err := logger.New(cfg.LogLevel, zap.String("service", cfg.Observability.ServiceName))
	if err != nil {
		return err
	}
	defer zlog.Sync() //nolint:errcheck

	gin.SetMode(gin.ReleaseMode)

	// Initialize observability
	otelShutdown, err := server.InitObservability(cfg.Observability, zlog)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			zlog.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	// Create server
	srv, err := server.New(context.Background(), cfg, zlog)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Setup router
	router, err := server.SetupRouter(server.RouterDeps{
		Config:  cfg,
		Logger:  zlog,
		Backend: srv.Backend(),
		Weather: weather.NewClient(cfg.Weather, zlog),
	})
	if err != nil {
		zlog.Error("Failed to setup router", zap.Error(err))
		return err
	}
	srv.SetRouter(router)

	// pprof stays off unless an internal address is configured
	if cfg.Observability.PprofAddr != "" {
		server.StartPprofServer(cfg.Observability.PprofAddr, zlog)
	}

	httpServer := srv.HTTPServer()

	// Setup graceful shutdown
	done := make(chan struct{})
	go server.GracefulShutdown(httpServer, zlog, cfg.ShutdownTimeout, done)

	zlog.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("storage", cfg.Storage.Driver))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Error("Server error", zap.Error(err))
		return err
	}

	// Wait for graceful shutdown to complete
	<-done
	zlog.Info("Graceful shutdown complete")

	return nil
}
