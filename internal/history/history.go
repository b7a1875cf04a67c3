// Package history is the persisted ledger of quotes already sent to
// each subscriber.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/generator"
)

// Queries is the slice of the database layer the ledger needs.
type Queries interface {
	RecentQuoteTexts(ctx context.Context, subscriberID string, since time.Time, maxCount int) ([]string, error)
	SentQuoteExists(ctx context.Context, subscriberID, quoteText string) (bool, error)
	InsertSentQuote(ctx context.Context, params db.InsertSentQuoteParams) error
}

// Service reads and appends sent-quote records.
//
// Read methods surface lookup errors so callers can distinguish "no
// history" from "lookup failed"; the orchestrator collapses both to
// empty/false so a transient read failure never blocks a delivery.
type Service struct {
	queries Queries
}

// Config holds configuration for the history service.
type Config struct {
	Queries Queries
}

// New creates a new history service.
func New(cfg Config) *Service {
	return &Service{queries: cfg.Queries}
}

// RecentQuotes returns the subscriber's quote texts from the last
// windowDays days, newest first, capped at maxCount.
func (s *Service) RecentQuotes(ctx context.Context, subscriberID string, windowDays, maxCount int) ([]string, error) {
	since := time.Now().AddDate(0, 0, -windowDays)
	texts, err := s.queries.RecentQuoteTexts(ctx, subscriberID, since, maxCount)
	if err != nil {
		return nil, err
	}
	return texts, nil
}

// HasBeenSent reports whether the exact quote text was already sent to
// the subscriber.
func (s *Service) HasBeenSent(ctx context.Context, subscriberID, quoteText string) (bool, error) {
	return s.queries.SentQuoteExists(ctx, subscriberID, quoteText)
}

// Record appends a sent-quote record. Failure is logged and reported as
// false; by the time this runs the quote is already accepted, so the
// record is bookkeeping, never a gate on delivery.
func (s *Service) Record(ctx context.Context, subscriberID string, quote generator.Quote, tone generator.Tone) bool {
	err := s.queries.InsertSentQuote(ctx, db.InsertSentQuoteParams{
		SubscriberID: subscriberID,
		QuoteText:    quote.Text,
		QuoteAuthor:  quote.Author,
		Category:     quote.Category,
		Explanation:  quote.Explanation,
		Tone:         string(tone),
	})
	if err != nil {
		slog.Warn("failed to record sent quote",
			"subscriber_id", subscriberID,
			"error", err,
		)
		return false
	}
	return true
}
