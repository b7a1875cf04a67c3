package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/api"
	"github.com/yourdailydose/dailydose/internal/config"
	"github.com/yourdailydose/dailydose/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the delivery daemon and HTTP API",
	Long: `Run the Daily Dose daemon: the periodic delivery sweep, history
cleanup, and the HTTP API for signups, on-demand quotes and admin
reporting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	quotes := buildQuoteService(cfg, store)
	dispatcher, senders := buildDispatcher(cfg, store, quotes)

	sched := scheduler.New(scheduler.Config{
		Store:         store,
		Sweeper:       dispatcher,
		Senders:       senders,
		SweepInterval: cfg.DeliveryInterval,
		RetentionDays: cfg.RetentionDays,
	})

	router := api.NewRouter(api.Config{
		Store:       store,
		Quotes:      quotes,
		Dispatcher:  dispatcher,
		Health:      sched.Health(),
		CronSecret:  cfg.CronSecret,
		AdminSecret: cfg.AdminSecret,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // cron sweeps can take a while
	}

	slog.Info("starting daemon",
		"listen_addr", cfg.ListenAddr,
		"delivery_interval", cfg.DeliveryInterval,
	)

	errCh := make(chan error, 2)
	go func() {
		errCh <- sched.Run(ctx)
	}()
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	slog.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http server shutdown", "error", err)
	}

	return nil
}
