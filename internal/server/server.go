package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	database "github.com/FACorreiaa/smart-harvest/internal/db"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/config"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	backend kv.Backend
	router  http.Handler
}

// New creates a new Server instance with all dependencies
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
	}

	backend, err := s.setupStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup storage: %w", err)
	}
	s.backend = backend

	return s, nil
}

// setupStorage opens the KV backend selected by STORAGE_DRIVER.
func (s *Server) setupStorage(ctx context.Context) (kv.Backend, error) {
	driver := s.cfg.Storage.Driver
	s.logger.Info("Setting up session storage", zap.String("driver", driver))

	switch driver {
	case config.StorageMemory:
		return kv.NewMemoryBackend(), nil
	case config.StorageRedis:
		backend, err := kv.NewRedisBackend(ctx, s.cfg.Repositories.Redis.URL, s.cfg.Repositories.Redis.KeyPrefix)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Connected to Redis", zap.String("key_prefix", s.cfg.Repositories.Redis.KeyPrefix))
		return backend, nil
	case config.StoragePostgres:
		return s.setupDatabase(ctx)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// setupDatabase initializes the database connection and runs migrations
func (s *Server) setupDatabase(ctx context.Context) (kv.Backend, error) {
	s.logger.Info("Setting up database connection and migrations")

	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(dbConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, s.logger) {
		pool.Close()
		return nil, fmt.Errorf("database not reachable")
	}
	s.logger.Info("Connected to Postgres",
		zap.String("host", s.cfg.Repositories.Postgres.Host),
		zap.String("port", s.cfg.Repositories.Postgres.Port),
		zap.String("database", s.cfg.Repositories.Postgres.DB))

	if err = database.RunMigrations(dbConfig.ConnectionURL, s.logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s.logger.Info("Database setup completed successfully")
	return kv.NewPostgresBackend(pool), nil
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

// Backend returns the session storage backend
func (s *Server) Backend() kv.Backend {
	return s.backend
}

// GetLogger returns the logger instance
func (s *Server) GetLogger() *zap.Logger {
	return s.logger
}

// GetConfig returns the configuration
func (s *Server) GetConfig() *config.Config {
	return s.cfg
}

// Close closes all server resources
func (s *Server) Close() {
	if s.backend == nil {
		return
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("Failed to close storage backend", zap.Error(err))
	}
}
