package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yourdailydose/dailydose/internal/db"
)

const (
	defaultStatsWindow  = 30 * 24 * time.Hour
	recentDeliveryLimit = 50
	defaultHistoryLimit = 100
)

type deliveryStatsResponse struct {
	Start            time.Time        `json:"start"`
	End              time.Time        `json:"end"`
	Stats            *db.DeliveryStats `json:"stats"`
	RecentDeliveries []deliveryView   `json:"recent_deliveries"`
	FailureCounts    map[string]int64 `json:"failure_counts"`
}

type deliveryView struct {
	ID           int64     `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	QuoteText    string    `json:"quote_text"`
	QuoteAuthor  string    `json:"quote_author"`
	Channel      string    `json:"channel"`
	Type         string    `json:"delivery_type"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Destination  string    `json:"destination"`
	SentAt       time.Time `json:"sent_at"`
}

// DeliveryStats reports delivery outcomes for a date range, defaulting
// to the last 30 days.
func (h *handlers) DeliveryStats(w http.ResponseWriter, r *http.Request) {
	start, end := parseRange(r)

	stats, err := h.store.DeliveryStatsRange(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch delivery stats")
		return
	}

	recent, err := h.store.RecentDeliveries(r.Context(), start, end, recentDeliveryLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch recent deliveries")
		return
	}

	failures, err := h.store.FailureCounts(r.Context(), start, end)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch failure counts")
		return
	}

	views := make([]deliveryView, 0, len(recent))
	for _, d := range recent {
		views = append(views, deliveryView{
			ID:           d.ID,
			SubscriberID: d.SubscriberID,
			QuoteText:    d.QuoteText,
			QuoteAuthor:  d.QuoteAuthor,
			Channel:      d.Channel,
			Type:         d.Type,
			Status:       d.Status,
			ErrorMessage: d.ErrorMessage,
			Destination:  d.Destination,
			SentAt:       d.SentAt,
		})
	}

	respondJSON(w, http.StatusOK, deliveryStatsResponse{
		Start:            start,
		End:              end,
		Stats:            stats,
		RecentDeliveries: views,
		FailureCounts:    failures,
	})
}

type sentQuoteView struct {
	ID       int64     `json:"id"`
	Text     string    `json:"quote_text"`
	Author   string    `json:"quote_author"`
	Category string    `json:"category"`
	Tone     string    `json:"tone"`
	SentAt   time.Time `json:"sent_at"`
}

type quoteStatsView struct {
	TotalQuotes      int64            `json:"total_quotes"`
	CategoryCounts   map[string]int64 `json:"category_counts"`
	FirstSentAt      *time.Time       `json:"first_sent_at,omitempty"`
	FavoriteCategory string           `json:"favorite_category,omitempty"`
}

// QuoteHistory reports a subscriber's sent-quote history and stats, or
// an overall aggregate when no subscriber is given.
func (h *handlers) QuoteHistory(w http.ResponseWriter, r *http.Request) {
	subscriberID := r.URL.Query().Get("subscriber_id")
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if subscriberID == "" {
		h.overallQuoteHistory(w, r)
		return
	}

	history, err := h.store.ListSentQuotes(r.Context(), subscriberID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch quote history")
		return
	}

	stats, err := h.store.SubscriberQuoteStats(r.Context(), subscriberID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch quote stats")
		return
	}

	views := make([]sentQuoteView, 0, len(history))
	for _, q := range history {
		views = append(views, sentQuoteView{
			ID:       q.ID,
			Text:     q.QuoteText,
			Author:   q.QuoteAuthor,
			Category: q.Category,
			Tone:     q.Tone,
			SentAt:   q.SentAt,
		})
	}

	statsView := quoteStatsView{
		TotalQuotes:      stats.TotalQuotes,
		CategoryCounts:   stats.CategoryCounts,
		FavoriteCategory: stats.FavoriteCategory,
	}
	if !stats.FirstSentAt.IsZero() {
		first := stats.FirstSentAt
		statsView.FirstSentAt = &first
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"subscriber_id": subscriberID,
		"history":       views,
		"stats":         statsView,
		"count":         len(views),
	})
}

func (h *handlers) overallQuoteHistory(w http.ResponseWriter, r *http.Request) {
	totalQuotes, err := h.store.CountSentQuotes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch statistics")
		return
	}

	subs, err := h.store.ListActiveSubscribers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch statistics")
		return
	}

	avg := float64(0)
	if len(subs) > 0 {
		avg = float64(totalQuotes) / float64(len(subs))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"overview": map[string]any{
			"total_quotes":                  totalQuotes,
			"active_subscribers":            len(subs),
			"average_quotes_per_subscriber": avg,
		},
	})
}

type subscriberView struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Persona         string    `json:"persona"`
	Categories      []string  `json:"categories"`
	TonePreference  string    `json:"tone_preference"`
	DeliveryTime    string    `json:"delivery_time"`
	DeliveryMethods []string  `json:"delivery_methods"`
	CreatedAt       time.Time `json:"created_at"`
}

// ListSubscribers returns every active subscriber.
func (h *handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListActiveSubscribers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	views := make([]subscriberView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, subscriberView{
			ID:              sub.ID,
			FirstName:       sub.FirstName,
			LastName:        sub.LastName,
			Email:           sub.Email,
			Phone:           sub.Phone,
			Persona:         sub.Persona,
			Categories:      sub.Categories,
			TonePreference:  sub.TonePreference,
			DeliveryTime:    sub.DeliveryTime,
			DeliveryMethods: sub.DeliveryMethods,
			CreatedAt:       sub.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"subscribers": views,
		"count":       len(views),
	})
}

// parseRange reads start_date/end_date query params (RFC3339),
// defaulting to the last 30 days.
func parseRange(r *http.Request) (start, end time.Time) {
	end = time.Now().UTC()
	start = end.Add(-defaultStatsWindow)

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			start = parsed
		}
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			end = parsed
		}
	}
	return start, end
}
