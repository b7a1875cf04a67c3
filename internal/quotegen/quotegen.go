// Package quotegen orchestrates unique quote generation: it asks the
// generator for candidates, rejects duplicates and near-duplicates
// against the subscriber's history, and falls back to a fixed quote
// when the retry budget runs out.
package quotegen

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/similarity"
)

const (
	// historyWindowDays bounds the avoid-list to quotes recent enough
	// to matter; older ones are assumed low-risk for repetition.
	historyWindowDays = 30

	// historyMaxQuotes caps the avoid-list so it stays small enough to
	// pass to the generator as prompt context.
	historyMaxQuotes = 50

	// defaultMaxRetries balances generation cost against duplicate
	// risk. Must stay a small bounded constant.
	defaultMaxRetries = 3

	// batchDelay throttles sequential batch generation to respect
	// third-party rate limits.
	batchDelay = 500 * time.Millisecond
)

// History is the sent-quote ledger the orchestrator consults.
type History interface {
	RecentQuotes(ctx context.Context, subscriberID string, windowDays, maxCount int) ([]string, error)
	HasBeenSent(ctx context.Context, subscriberID, quoteText string) (bool, error)
	Record(ctx context.Context, subscriberID string, quote generator.Quote, tone generator.Tone) bool
}

// Service generates unique quotes for subscribers.
type Service struct {
	generator      generator.Generator
	history        History
	maxRetries     int
	attemptTimeout time.Duration
}

// Config holds configuration for the orchestrator.
type Config struct {
	Generator generator.Generator
	History   History

	// MaxRetries is the generation attempt budget (default: 3).
	MaxRetries int

	// AttemptTimeout bounds each generator call (default: 45s).
	AttemptTimeout time.Duration
}

// New creates a new orchestrator.
func New(cfg Config) *Service {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	timeout := cfg.AttemptTimeout
	if timeout == 0 {
		timeout = 45 * time.Second
	}

	return &Service{
		generator:      cfg.Generator,
		history:        cfg.History,
		maxRetries:     maxRetries,
		attemptTimeout: timeout,
	}
}

// Request describes one orchestration call.
type Request struct {
	SubscriberID string
	Persona      string
	Categories   []string
	Tone         generator.Tone // default: inspirational

	// MaxRetries overrides the service budget when > 0.
	MaxRetries int

	// SkipStorage suppresses history recording for the returned quote.
	SkipStorage bool
}

// GenerateUnique produces one quote that is novel relative to the
// subscriber's recent history. It never fails: generator errors consume
// retry attempts, history reads fail open, and an exhausted budget
// yields the fixed fallback quote. The caller always gets something to
// deliver.
func (s *Service) GenerateUnique(ctx context.Context, req Request) *generator.Quote {
	tone := req.Tone
	if tone == "" {
		tone = generator.ToneInspirational
	}
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = s.maxRetries
	}

	// Seed the avoid-list and similarity corpus. A failed lookup means
	// we proceed without history context rather than blocking delivery.
	recent, err := s.history.RecentQuotes(ctx, req.SubscriberID, historyWindowDays, historyMaxQuotes)
	if err != nil {
		slog.Warn("history lookup failed, generating without context",
			"subscriber_id", req.SubscriberID,
			"error", err,
		)
		recent = nil
	}

	// The avoid-list grows as candidates are rejected; the similarity
	// corpus stays fixed to what was actually sent.
	avoid := append([]string(nil), recent...)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		candidate, err := s.generate(ctx, generator.Request{
			Persona:     req.Persona,
			Categories:  req.Categories,
			Tone:        tone,
			AvoidQuotes: avoid,
		})
		if err != nil {
			slog.Warn("quote generation attempt failed",
				"subscriber_id", req.SubscriberID,
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		duplicate, err := s.history.HasBeenSent(ctx, req.SubscriberID, candidate.Text)
		if err != nil {
			slog.Warn("duplicate check failed, assuming not sent",
				"subscriber_id", req.SubscriberID,
				"error", err,
			)
			duplicate = false
		}
		similar := similarity.SimilarToAny(candidate.Text, recent)

		if !duplicate && !similar {
			if !req.SkipStorage {
				s.history.Record(ctx, req.SubscriberID, *candidate, tone)
			}
			return candidate
		}

		slog.Info("rejected candidate quote",
			"subscriber_id", req.SubscriberID,
			"attempt", attempt,
			"duplicate", duplicate,
			"similar", similar,
		)
		avoid = append(avoid, candidate.Text)
	}

	slog.Warn("retry budget exhausted, using fallback quote",
		"subscriber_id", req.SubscriberID,
		"max_retries", maxRetries,
	)

	fallback := FallbackQuote(req.Categories, time.Now())
	if !req.SkipStorage {
		s.history.Record(ctx, req.SubscriberID, fallback, tone)
	}
	return &fallback
}

// generate runs one generator call under the per-attempt timeout.
func (s *Service) generate(ctx context.Context, req generator.Request) (*generator.Quote, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return s.generator.Generate(genCtx, req)
}

// BatchResult pairs a subscriber with their generated quote.
type BatchResult struct {
	SubscriberID string
	Quote        *generator.Quote
}

// GenerateBatch generates a quote for each request sequentially with a
// small delay between iterations. The delay is a rate-limit courtesy,
// not a correctness requirement. Cancelling the context stops the batch
// early; completed results are returned.
func (s *Service) GenerateBatch(ctx context.Context, reqs []Request) []BatchResult {
	results := make([]BatchResult, 0, len(reqs))

	for i, req := range reqs {
		if ctx.Err() != nil {
			break
		}

		quote := s.GenerateUnique(ctx, req)
		results = append(results, BatchResult{
			SubscriberID: req.SubscriberID,
			Quote:        quote,
		})

		if i < len(reqs)-1 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(batchDelay):
			}
		}
	}

	return results
}
