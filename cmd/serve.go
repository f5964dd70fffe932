package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpLayer "loan-advisor/http"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var res closers
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("error releasing resources", zap.Error(err))
		}
	}()

	apps, err := buildApplicationService(cmd.Context(), cfg, logger, &res)
	if err != nil {
		return err
	}

	limiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	defer limiter.Stop()

	handler := httpLayer.NewHandler(apps, cfg.Recommend.TopK, logger)
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      httpLayer.NewRouter(handler, limiter, cfg.Server.CORSOrigins, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		logger.Error("error starting server", zap.Error(err))
		return err
	case <-quit:
		logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
		return err
	}

	logger.Info("server exited")
	return nil
}
