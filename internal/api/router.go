// Package api exposes the quote service over HTTP: quote generation,
// cron-triggered delivery, signup and admin reporting.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/delivery"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
	"github.com/yourdailydose/dailydose/internal/scheduler"
)

// Store is the slice of the database layer the API serves from.
type Store interface {
	GetActiveSubscriber(ctx context.Context, id string) (*db.Subscriber, error)
	CreateSubscriber(ctx context.Context, params db.CreateSubscriberParams) (*db.Subscriber, error)
	ListActiveSubscribers(ctx context.Context) ([]*db.Subscriber, error)
	ListSentQuotes(ctx context.Context, subscriberID string, limit int) ([]*db.SentQuote, error)
	SubscriberQuoteStats(ctx context.Context, subscriberID string) (*db.QuoteStats, error)
	CountSentQuotes(ctx context.Context) (int64, error)
	DeliveryStatsRange(ctx context.Context, start, end time.Time) (*db.DeliveryStats, error)
	RecentDeliveries(ctx context.Context, start, end time.Time, limit int) ([]*db.Delivery, error)
	FailureCounts(ctx context.Context, start, end time.Time) (map[string]int64, error)
}

// QuoteSource produces a unique quote for a subscriber.
type QuoteSource interface {
	GenerateUnique(ctx context.Context, req quotegen.Request) *generator.Quote
}

// Dispatcher is the delivery surface the API triggers.
type Dispatcher interface {
	Sweep(ctx context.Context) delivery.Summary
	SendWelcome(ctx context.Context, subscriberID string) delivery.Result
}

// Config holds the router's dependencies.
type Config struct {
	Store      Store
	Quotes     QuoteSource
	Dispatcher Dispatcher

	// Health is optional; without it the health endpoint reports only
	// liveness.
	Health *scheduler.Health

	// CronSecret guards the cron endpoint; empty disables the check.
	CronSecret string

	// AdminSecret guards the admin endpoints; empty disables them.
	AdminSecret string
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg Config) http.Handler {
	h := &handlers{
		store:      cfg.Store,
		quotes:     cfg.Quotes,
		dispatcher: cfg.Dispatcher,
		health:     cfg.Health,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/for-subscriber", h.QuoteForSubscriber)
			r.Get("/for-subscriber", h.QuoteForSubscriberGet)
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(bearerAuth(cfg.CronSecret))
			r.Get("/daily-quotes", h.RunDailyQuotes)
			r.Post("/daily-quotes", h.RunDailyQuotes)
		})

		r.Post("/subscribers", h.Subscribe)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireBearer(cfg.AdminSecret))
			r.Get("/delivery-stats", h.DeliveryStats)
			r.Get("/quote-history", h.QuoteHistory)
			r.Get("/subscribers", h.ListSubscribers)
		})
	})

	return r
}

type handlers struct {
	store      Store
	quotes     QuoteSource
	dispatcher Dispatcher
	health     *scheduler.Health
}

// bearerAuth enforces a bearer token when one is configured.
func bearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" && r.Header.Get("Authorization") != "Bearer "+secret {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireBearer enforces a bearer token and rejects everything when no
// token is configured.
func requireBearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || r.Header.Get("Authorization") != "Bearer "+secret {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
