// Package server defines the Server container that composes the app's main
// dependencies and owns their lifecycle: configuration, logging, the
// database, Redis, the product cache, asset storage, background jobs, the
// cron scheduler and the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kelvin262292/storefront/internal/config"
	"github.com/kelvin262292/storefront/internal/database"
	"github.com/kelvin262292/storefront/internal/lib/cache"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/lib/scheduler"
	"github.com/kelvin262292/storefront/internal/lib/storage"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/kelvin262292/storefront/internal/logger"
)

// Server is the application container. It is not the HTTP server itself;
// it holds shared resources plus the *http.Server that Start runs.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database
	Redis         *redis.Client
	Cache         *cache.Cache
	Storage       *storage.Storage
	Job           *job.JobService
	Scheduler     *scheduler.Scheduler

	httpServer *http.Server
}

// New connects to PostgreSQL and Redis and builds the job service. Redis
// being down does not block startup: the cache degrades to misses and
// enqueue errors surface per request.
//
// Workers and the scheduler are not started here; the serve command starts
// them after handlers are registered.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService != nil && loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
	}

	jobService := job.NewJobService(logger, cfg)

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Cache:         cache.New(redisClient, "storefront:", logger),
		Storage:       storage.New(cfg.Storage),
		Job:           jobService,
		Scheduler:     scheduler.New(jobService, logger),
	}, nil
}

// SetupHTTPServer configures the listener around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, drains in-flight ones until ctx
// expires, then stops the scheduler and workers and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Scheduler != nil {
		s.Scheduler.Stop(ctx)
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
