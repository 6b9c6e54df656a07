package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/database"
	"storefront/internal/keepalive"
	"storefront/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE:  runServe,
}

func gracefulShutdown(ctx context.Context, apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")

	// The server has 30 seconds to finish the requests it is handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := boot()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return err
	}
	log.Info("Database health check", zap.Any("health", dbService.Health()))

	if err := database.RunMigrations(dbService.DB(), log); err != nil {
		dbService.Close()
		return err
	}

	// Cancelled by SIGINT/SIGTERM; stops the keep-alive pinger and
	// triggers the graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg, log, dbService)
	if err != nil {
		dbService.Close()
		return err
	}

	if cfg.KeepAlive.URL != "" {
		go keepalive.New(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, log).Run(ctx)
	}

	done := make(chan bool, 1)
	go gracefulShutdown(ctx, srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("HTTP server error", zap.Error(err))
		_ = srv.Close()
		return err
	}

	<-done
	log.Info("Graceful shutdown complete")
	return nil
}
