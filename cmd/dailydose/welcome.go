package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
)

var welcomeCmd = &cobra.Command{
	Use:   "welcome <subscriber-id>",
	Short: "Send the welcome email to a subscriber",
	Long: `Send the signup welcome email, including the subscriber's first
generated quote, to an existing subscriber.`,
	Args: cobra.ExactArgs(1),
	RunE: runWelcome,
}

func init() {
	rootCmd.AddCommand(welcomeCmd)
}

func runWelcome(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := cfg.ValidateForEmail(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	quotes := buildQuoteService(cfg, store)
	dispatcher, _ := buildDispatcher(cfg, store, quotes)

	result := dispatcher.SendWelcome(ctx, args[0])
	if !result.Success {
		return fmt.Errorf("welcome email failed: %s", result.Error)
	}

	fmt.Printf("Welcome email sent (message id %s)\n", result.MessageID)
	return nil
}
