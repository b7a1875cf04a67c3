package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourdailydose/dailydose/internal/config"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
)

var (
	quoteTone    string
	quoteNoStore bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <subscriber-id>",
	Short: "Generate a quote without delivering it",
	Long: `Generate a unique personalized quote for a subscriber and print it
to stdout. Useful for previewing what a subscriber would receive.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteTone, "tone", "", "override the subscriber's tone preference")
	quoteCmd.Flags().BoolVar(&quoteNoStore, "no-store", false, "skip recording the quote in history")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForGeneration(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sub, err := store.GetActiveSubscriber(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get subscriber: %w", err)
	}

	tone := generator.ParseTone(sub.TonePreference)
	if quoteTone != "" {
		tone = generator.ParseTone(quoteTone)
	}

	quotes := buildQuoteService(cfg, store)
	quote := quotes.GenerateUnique(ctx, quotegen.Request{
		SubscriberID: sub.ID,
		Persona:      sub.Persona,
		Categories:   sub.Categories,
		Tone:         tone,
		SkipStorage:  quoteNoStore,
	})

	fmt.Printf("%q\n", quote.Text)
	fmt.Printf("  — %s (%s)\n", quote.Author, quote.Category)
	if quote.Explanation != "" {
		fmt.Printf("\n%s\n", quote.Explanation)
	}

	return nil
}
