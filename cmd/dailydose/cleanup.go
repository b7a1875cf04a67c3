package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune old sent-quote history",
	Long: `Delete sent-quote records older than the retention window. Pruned
quotes can be generated again, so keep the window comfortably longer
than the 30-day deduplication horizon.`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (default: RETENTION_DAYS)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	days := cleanupDays
	if days <= 0 {
		days = cfg.RetentionDays
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := store.DeleteSentQuotesBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete sent quotes: %w", err)
	}

	fmt.Printf("Deleted %d sent-quote record(s) older than %d days\n", deleted, days)
	return nil
}
