package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
)

var (
	sendAll     bool
	sendChannel string
)

var sendCmd = &cobra.Command{
	Use:   "send [subscriber-id]",
	Short: "Send a daily quote now",
	Long: `Generate and deliver a daily quote immediately, to one subscriber
or to every active subscriber on the channel.`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendAll, "all", false, "send to every active subscriber")
	sendCmd.Flags().StringVar(&sendChannel, "channel", "email", "delivery channel (sms or email)")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if !sendAll && len(args) != 1 {
		return fmt.Errorf("provide a subscriber id or --all")
	}
	if sendChannel != "sms" && sendChannel != "email" {
		return fmt.Errorf("unknown channel %q (want sms or email)", sendChannel)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	switch sendChannel {
	case "sms":
		err = cfg.ValidateForSMS()
	case "email":
		err = cfg.ValidateForEmail()
	}
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	quotes := buildQuoteService(cfg, store)
	dispatcher, _ := buildDispatcher(cfg, store, quotes)

	if sendAll {
		summary, err := dispatcher.SendToAllSubscribers(ctx, sendChannel)
		if err != nil {
			return fmt.Errorf("send to all: %w", err)
		}

		fmt.Printf("Sent %d of %d (%.2f%% success)\n",
			summary.Success, summary.Total, summary.SuccessRate())
		for _, r := range summary.Results {
			if !r.Success {
				fmt.Printf("  failed %s: %s\n", r.SubscriberID, r.Error)
			}
		}
		return nil
	}

	result := dispatcher.SendDailyQuote(ctx, args[0], sendChannel)
	if !result.Success {
		return fmt.Errorf("delivery failed: %s", result.Error)
	}

	fmt.Printf("Delivered via %s (message id %s)\n", result.Channel, result.MessageID)
	return nil
}
