package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxcelerator/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Start the recommendation API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"max_attempts", cfg.Recommend.MaxAttempts,
		"notification", cfg.Notification.Type,
	)

	svc, err := buildService(cfg, logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		return err
	}

	server.SetGinMode(cfg.Server.Environment)
	router := server.BuildRouter(server.RouterDeps{
		ServiceName: "uxcelerator",
		Version:     version,
		Provider:    cfg.LLM.Provider,
		CORSOrigins: cfg.Server.CORSOrigins,
		Recommender: svc,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
