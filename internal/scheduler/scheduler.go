// Package scheduler runs the periodic delivery sweep and history
// cleanup, and tracks component health for the API.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourdailydose/dailydose/internal/delivery"
)

const defaultCleanupInterval = 24 * time.Hour

// Sweeper runs one full delivery cycle across active subscribers.
type Sweeper interface {
	Sweep(ctx context.Context) delivery.Summary
}

// Store is the slice of the database layer the scheduler needs.
type Store interface {
	PingContext(ctx context.Context) error
	DeleteSentQuotesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler drives the daily delivery cycle.
type Scheduler struct {
	store         Store
	sweeper       Sweeper
	senders       []delivery.Sender
	sweepInterval time.Duration
	retentionDays int
	health        *Health

	lastSweep time.Time
}

// Config holds scheduler configuration.
type Config struct {
	Store   Store
	Sweeper Sweeper
	Senders []delivery.Sender

	// SweepInterval is the time between delivery sweeps (default: 24h).
	SweepInterval time.Duration

	// RetentionDays bounds how long sent-quote history is kept
	// (default: 365).
	RetentionDays int
}

// New creates a new scheduler.
func New(cfg Config) *Scheduler {
	interval := cfg.SweepInterval
	if interval == 0 {
		interval = 24 * time.Hour
	}
	retention := cfg.RetentionDays
	if retention <= 0 {
		retention = 365
	}

	return &Scheduler{
		store:         cfg.Store,
		sweeper:       cfg.Sweeper,
		senders:       cfg.Senders,
		sweepInterval: interval,
		retentionDays: retention,
		health:        NewHealth(),
	}
}

// Run starts the scheduler main loop. The first sweep fires after one
// full interval; a restart never re-sends the day's quotes. The cron
// endpoint covers externally triggered runs.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("starting scheduler",
		"sweep_interval", s.sweepInterval,
		"retention_days", s.retentionDays,
	)

	// Startup checks
	for _, sender := range s.senders {
		if err := sender.ValidateCredentials(ctx); err != nil {
			s.health.SetUnhealthy(sender.Channel(), err)
			slog.Error("sender credential check failed",
				"channel", sender.Channel(),
				"error", err,
			)
		} else {
			s.health.SetHealthy(sender.Channel(), "credentials valid")
		}
	}

	if err := s.store.PingContext(ctx); err != nil {
		s.health.SetUnhealthy("database", err)
		slog.Error("database ping failed", "error", err)
	} else {
		s.health.SetHealthy("database", "connected")
	}

	sweepTicker := time.NewTicker(s.sweepInterval)
	cleanupTicker := time.NewTicker(defaultCleanupInterval)
	defer sweepTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler shutting down")
			return ctx.Err()

		case <-sweepTicker.C:
			s.runSweepCycle(ctx)

		case <-cleanupTicker.C:
			s.runCleanupCycle(ctx)
		}
	}
}

// runSweepCycle delivers the daily quotes to every active subscriber.
func (s *Scheduler) runSweepCycle(ctx context.Context) {
	slog.Debug("running delivery sweep")

	summary := s.sweeper.Sweep(ctx)
	s.lastSweep = time.Now()

	if summary.Total > 0 && summary.Success == 0 {
		s.health.SetUnhealthy("delivery", fmt.Errorf("all %d deliveries failed", summary.Failed))
		return
	}

	s.health.SetHealthy("delivery",
		fmt.Sprintf("delivered %d of %d", summary.Success, summary.Total))
}

// runCleanupCycle prunes sent-quote history past the retention window.
func (s *Scheduler) runCleanupCycle(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.store.DeleteSentQuotesBefore(ctx, cutoff)
	if err != nil {
		slog.Error("history cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		slog.Info("pruned sent-quote history",
			"deleted", deleted,
			"retention_days", s.retentionDays,
		)
	}
}

// Health returns the health tracker.
func (s *Scheduler) Health() *Health {
	return s.health
}

// LastSweep returns when the last sweep finished (zero before the
// first one).
func (s *Scheduler) LastSweep() time.Time {
	return s.lastSweep
}
