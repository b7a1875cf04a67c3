package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show delivery and history statistics",
	Long:  `Display subscriber counts, sent-quote totals and delivery outcomes.`,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "reporting window in days")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	activeSubscribers, err := store.CountActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("count subscribers: %w", err)
	}

	totalQuotes, err := store.CountSentQuotes(ctx)
	if err != nil {
		return fmt.Errorf("count sent quotes: %w", err)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -statsDays)

	stats, err := store.DeliveryStatsRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("delivery stats: %w", err)
	}

	failures, err := store.FailureCounts(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failure counts: %w", err)
	}

	fmt.Println("=== Your Daily Dose Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Printf("Active subscribers: %d\n", activeSubscribers)
	fmt.Printf("Quotes sent (all time): %d\n", totalQuotes)
	fmt.Println()
	fmt.Printf("Deliveries (last %d days):\n", statsDays)
	fmt.Printf("  Total: %d\n", stats.Total)
	fmt.Printf("  Sent: %d\n", stats.Sent)
	fmt.Printf("  Failed: %d\n", stats.Failed)
	fmt.Printf("  Success rate: %.2f%%\n", stats.SuccessRate)

	if len(failures) > 0 {
		fmt.Println()
		fmt.Println("  Failures by error:")
		messages := make([]string, 0, len(failures))
		for msg := range failures {
			messages = append(messages, msg)
		}
		sort.Strings(messages)
		for _, msg := range messages {
			fmt.Printf("    %s: %d\n", msg, failures[msg])
		}
	}
	fmt.Println()

	return nil
}
