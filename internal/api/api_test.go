package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/delivery"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
	"github.com/yourdailydose/dailydose/internal/scheduler"
)

type fakeStore struct {
	subs        []*db.Subscriber
	sentQuotes  []*db.SentQuote
	stats       *db.DeliveryStats
	quoteStats  *db.QuoteStats
	totalQuotes int64
	created     []db.CreateSubscriberParams
}

func (f *fakeStore) GetActiveSubscriber(_ context.Context, id string) (*db.Subscriber, error) {
	for _, sub := range f.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return nil, fmt.Errorf("get subscriber: no rows")
}

func (f *fakeStore) CreateSubscriber(_ context.Context, params db.CreateSubscriberParams) (*db.Subscriber, error) {
	f.created = append(f.created, params)
	return &db.Subscriber{
		ID:           "new-sub",
		FirstName:    params.FirstName,
		Email:        params.Email,
		Phone:        params.Phone,
		DeliveryTime: "07:00",
		IsActive:     true,
	}, nil
}

func (f *fakeStore) ListActiveSubscribers(context.Context) ([]*db.Subscriber, error) {
	return f.subs, nil
}

func (f *fakeStore) ListSentQuotes(_ context.Context, subscriberID string, limit int) ([]*db.SentQuote, error) {
	var out []*db.SentQuote
	for _, q := range f.sentQuotes {
		if q.SubscriberID == subscriberID && len(out) < limit {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) SubscriberQuoteStats(context.Context, string) (*db.QuoteStats, error) {
	if f.quoteStats != nil {
		return f.quoteStats, nil
	}
	return &db.QuoteStats{CategoryCounts: map[string]int64{}}, nil
}

func (f *fakeStore) CountSentQuotes(context.Context) (int64, error) {
	return f.totalQuotes, nil
}

func (f *fakeStore) DeliveryStatsRange(context.Context, time.Time, time.Time) (*db.DeliveryStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &db.DeliveryStats{}, nil
}

func (f *fakeStore) RecentDeliveries(context.Context, time.Time, time.Time, int) ([]*db.Delivery, error) {
	return nil, nil
}

func (f *fakeStore) FailureCounts(context.Context, time.Time, time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type fakeQuotes struct {
	requests []quotegen.Request
}

func (f *fakeQuotes) GenerateUnique(_ context.Context, req quotegen.Request) *generator.Quote {
	f.requests = append(f.requests, req)
	return &generator.Quote{
		Text:     "Build the future.",
		Author:   "Anonymous",
		Category: "Motivation",
	}
}

type fakeDispatcher struct {
	summary  delivery.Summary
	welcomed []string
}

func (f *fakeDispatcher) Sweep(context.Context) delivery.Summary {
	return f.summary
}

func (f *fakeDispatcher) SendWelcome(_ context.Context, subscriberID string) delivery.Result {
	f.welcomed = append(f.welcomed, subscriberID)
	return delivery.Result{SubscriberID: subscriberID, Channel: "email", Success: true}
}

func adaSubscriber() *db.Subscriber {
	return &db.Subscriber{
		ID:             "sub-1",
		FirstName:      "Ada",
		Email:          "ada@example.com",
		Persona:        "Entrepreneur",
		Categories:     []string{"Motivation"},
		TonePreference: "bold",
		DeliveryTime:   "07:00",
		IsActive:       true,
	}
}

func newTestRouter(store *fakeStore, quotes *fakeQuotes, dispatcher *fakeDispatcher, health *scheduler.Health) http.Handler {
	return NewRouter(Config{
		Store:       store,
		Quotes:      quotes,
		Dispatcher:  dispatcher,
		Health:      health,
		CronSecret:  "cron-secret",
		AdminSecret: "admin-secret",
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQuoteForSubscriber(t *testing.T) {
	store := &fakeStore{subs: []*db.Subscriber{adaSubscriber()}}
	quotes := &fakeQuotes{}
	router := newTestRouter(store, quotes, &fakeDispatcher{}, nil)

	t.Run("generates a personalized quote", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/quotes/for-subscriber",
			map[string]string{"subscriber_id": "sub-1"}, nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp quoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Build the future.", resp.Quote.Text)
		assert.Equal(t, "Good morning, Ada!", resp.Greeting)
		assert.Contains(t, resp.Personalization, "entrepreneur")
		assert.Contains(t, resp.Personalization, "motivation")
		assert.True(t, resp.IsUnique)

		// Subscriber's tone preference applies when the request has none
		require.NotEmpty(t, quotes.requests)
		assert.Equal(t, generator.ToneEnergetic, quotes.requests[len(quotes.requests)-1].Tone)
	})

	t.Run("explicit tone overrides the preference", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/quotes/for-subscriber",
			map[string]string{"subscriber_id": "sub-1", "tone": "reflective"}, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, generator.ToneReflective, quotes.requests[len(quotes.requests)-1].Tone)
	})

	t.Run("missing subscriber_id", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/quotes/for-subscriber",
			map[string]string{}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown subscriber", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/quotes/for-subscriber",
			map[string]string{"subscriber_id": "nope"}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("query-param variant", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/quotes/for-subscriber?id=sub-1", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRunDailyQuotes(t *testing.T) {
	dispatcher := &fakeDispatcher{summary: delivery.Summary{Total: 4, Success: 3, Failed: 1}}
	router := newTestRouter(&fakeStore{}, &fakeQuotes{}, dispatcher, nil)

	t.Run("requires the cron secret", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/cron/daily-quotes", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("runs the sweep", func(t *testing.T) {
		rec := doJSON(t, router, "POST", "/api/v1/cron/daily-quotes", nil,
			map[string]string{"Authorization": "Bearer cron-secret"})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp cronResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 4, resp.Stats.Total)
		assert.Equal(t, 3, resp.Stats.Success)
		assert.Equal(t, 75.0, resp.Stats.SuccessRate)
	})

	t.Run("GET works for external cron services", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/cron/daily-quotes", nil,
			map[string]string{"Authorization": "Bearer cron-secret"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("creates subscriber and sends welcome email", func(t *testing.T) {
		store := &fakeStore{}
		dispatcher := &fakeDispatcher{}
		router := newTestRouter(store, &fakeQuotes{}, dispatcher, nil)

		rec := doJSON(t, router, "POST", "/api/v1/subscribers", subscribeRequest{
			FirstName:  "Grace",
			Email:      "Grace@Example.com",
			Phone:      "+1 (555) 123-4567",
			Persona:    "Leader",
			Categories: []string{"Leadership"},
		}, nil)

		require.Equal(t, http.StatusCreated, rec.Code)

		require.Len(t, store.created, 1)
		assert.Equal(t, "grace@example.com", store.created[0].Email)
		assert.Equal(t, "+15551234567", store.created[0].Phone)
		assert.Equal(t, []string{"new-sub"}, dispatcher.welcomed)

		var resp subscribeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "new-sub", resp.ID)
		assert.Contains(t, resp.Message, "Grace")
		assert.Contains(t, resp.Message, "7:00 AM")
	})

	t.Run("phone-only signup skips the welcome email", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		router := newTestRouter(&fakeStore{}, &fakeQuotes{}, dispatcher, nil)

		rec := doJSON(t, router, "POST", "/api/v1/subscribers", subscribeRequest{
			FirstName:  "Grace",
			Phone:      "+15551234567",
			Categories: []string{"Focus"},
		}, nil)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Empty(t, dispatcher.welcomed)
	})

	t.Run("validation", func(t *testing.T) {
		router := newTestRouter(&fakeStore{}, &fakeQuotes{}, &fakeDispatcher{}, nil)

		tests := []struct {
			name string
			req  subscribeRequest
		}{
			{"missing first name", subscribeRequest{Email: "a@b.co", Categories: []string{"X"}}},
			{"no contact info", subscribeRequest{FirstName: "Grace", Categories: []string{"X"}}},
			{"bad email", subscribeRequest{FirstName: "Grace", Email: "nope", Categories: []string{"X"}}},
			{"bad phone", subscribeRequest{FirstName: "Grace", Phone: "12345", Categories: []string{"X"}}},
			{"no categories", subscribeRequest{FirstName: "Grace", Email: "a@b.co"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doJSON(t, router, "POST", "/api/v1/subscribers", tt.req, nil)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}

func TestAdminEndpoints(t *testing.T) {
	store := &fakeStore{
		subs: []*db.Subscriber{adaSubscriber()},
		sentQuotes: []*db.SentQuote{
			{ID: 1, SubscriberID: "sub-1", QuoteText: "Build the future.", Category: "Motivation"},
		},
		stats:       &db.DeliveryStats{Total: 10, Sent: 9, Failed: 1, SuccessRate: 90},
		totalQuotes: 42,
	}
	router := newTestRouter(store, &fakeQuotes{}, &fakeDispatcher{}, nil)
	adminAuth := map[string]string{"Authorization": "Bearer admin-secret"}

	t.Run("rejects missing auth", func(t *testing.T) {
		for _, path := range []string{
			"/api/v1/admin/delivery-stats",
			"/api/v1/admin/quote-history",
			"/api/v1/admin/subscribers",
		} {
			rec := doJSON(t, router, "GET", path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		}
	})

	t.Run("delivery stats", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/admin/delivery-stats", nil, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp deliveryStatsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(10), resp.Stats.Total)
		assert.Equal(t, 90.0, resp.Stats.SuccessRate)
	})

	t.Run("per-subscriber quote history", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/admin/quote-history?subscriber_id=sub-1", nil, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			SubscriberID string          `json:"subscriber_id"`
			History      []sentQuoteView `json:"history"`
			Count        int             `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "sub-1", resp.SubscriberID)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "Build the future.", resp.History[0].Text)
	})

	t.Run("overall quote history", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/admin/quote-history", nil, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Overview map[string]any `json:"overview"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.EqualValues(t, 42, resp.Overview["total_quotes"])
		assert.EqualValues(t, 1, resp.Overview["active_subscribers"])
	})

	t.Run("subscriber list", func(t *testing.T) {
		rec := doJSON(t, router, "GET", "/api/v1/admin/subscribers", nil, adminAuth)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Subscribers []subscriberView `json:"subscribers"`
			Count       int              `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "Ada", resp.Subscribers[0].FirstName)
	})
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		health := scheduler.NewHealth()
		health.SetHealthy("database", "connected")
		router := newTestRouter(&fakeStore{}, &fakeQuotes{}, &fakeDispatcher{}, health)

		rec := doJSON(t, router, "GET", "/api/v1/health", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.True(t, resp.Components["database"].Healthy)
	})

	t.Run("degraded", func(t *testing.T) {
		health := scheduler.NewHealth()
		health.SetUnhealthy("sms", assert.AnError)
		router := newTestRouter(&fakeStore{}, &fakeQuotes{}, &fakeDispatcher{}, health)

		rec := doJSON(t, router, "GET", "/api/v1/health", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no tracker still reports liveness", func(t *testing.T) {
		router := newTestRouter(&fakeStore{}, &fakeQuotes{}, &fakeDispatcher{}, nil)
		rec := doJSON(t, router, "GET", "/api/v1/health", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
