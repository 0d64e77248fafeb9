package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kelvin262292/storefront/internal/database"
	"github.com/kelvin262292/storefront/internal/handler"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/logger"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/router"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, job workers and scheduler",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if migrateOnStart {
		if err := database.Migrate(cmd.Context(), &log, cfg, 0); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := wire(srv); err != nil {
		if shutdownErr := shutdown(srv); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("cleanup after failed start")
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	if err := shutdown(srv); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

// wire builds the service graph on srv, starts the job workers and the
// scheduler and installs the router.
func wire(srv *server.Server) error {
	cfg := srv.Config

	repos := repository.NewRepositories(srv)
	services, err := service.NewService(srv, repos)
	if err != nil {
		return fmt.Errorf("could not create services: %w", err)
	}

	services.RegisterJobHandlers(srv.Job)
	if err := srv.Job.Start(); err != nil {
		return fmt.Errorf("failed to start job workers: %w", err)
	}

	err = srv.Scheduler.Register("cart_cleanup", cfg.Jobs.CartCleanupSchedule, func() (*asynq.Task, error) {
		return job.NewCartCleanupTask(cfg.Storefront.GuestCartTTL)
	})
	if err != nil {
		return fmt.Errorf("failed to register scheduled jobs: %w", err)
	}
	srv.Scheduler.Start()

	srv.SetupHTTPServer(router.NewRouter(srv, handler.NewHandlers(srv, services)))
	return nil
}

func shutdown(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
