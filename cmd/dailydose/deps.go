package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourdailydose/dailydose/internal/config"
	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/delivery"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/history"
	"github.com/yourdailydose/dailydose/internal/quotegen"
)

// openStore connects to the database and applies migrations.
func openStore(ctx context.Context, cfg *config.Config) (*db.Store, error) {
	slog.Info("connecting to database", "path", cfg.DatabasePath)
	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// buildQuoteService wires the generator and history ledger into the
// orchestrator.
func buildQuoteService(cfg *config.Config, store *db.Store) *quotegen.Service {
	gen := generator.NewClaudeGenerator(generator.ClaudeConfig{
		APIKey: cfg.AnthropicAPIKey,
		Model:  cfg.AnthropicModel,
	})

	hist := history.New(history.Config{Queries: store})

	return quotegen.New(quotegen.Config{
		Generator:  gen,
		History:    hist,
		MaxRetries: cfg.MaxRetries,
	})
}

// buildSenders returns one sender per configured channel.
func buildSenders(cfg *config.Config) []delivery.Sender {
	var senders []delivery.Sender

	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromPhone != "" {
		senders = append(senders, delivery.NewTwilioSender(delivery.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromPhone:  cfg.TwilioFromPhone,
		}))
	} else {
		slog.Warn("twilio credentials not fully configured, SMS delivery disabled")
	}

	if cfg.ResendAPIKey != "" {
		senders = append(senders, delivery.NewResendSender(delivery.ResendConfig{
			APIKey:    cfg.ResendAPIKey,
			FromEmail: cfg.FromEmail,
		}))
	} else {
		slog.Warn("resend api key not configured, email delivery disabled")
	}

	return senders
}

// buildDispatcher wires the full delivery pipeline.
func buildDispatcher(cfg *config.Config, store *db.Store, quotes *quotegen.Service) (*delivery.Dispatcher, []delivery.Sender) {
	senders := buildSenders(cfg)
	dispatcher := delivery.New(delivery.Config{
		Store:   store,
		Quotes:  quotes,
		Senders: senders,
	})
	return dispatcher, senders
}
