package db

import "time"

// Subscriber is a person receiving daily quotes.
type Subscriber struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Persona         string
	Categories      []string
	TonePreference  string
	DeliveryTime    string
	DeliveryMethods []string
	PersonalGoals   []string
	IsActive        bool
	CreatedAt       time.Time
}

// SentQuote is an append-only record of a quote accepted for a subscriber.
type SentQuote struct {
	ID           int64
	SubscriberID string
	QuoteText    string
	QuoteAuthor  string
	Category     string
	Explanation  string
	Tone         string
	SentAt       time.Time
}

// Delivery records a transport attempt for one channel.
type Delivery struct {
	ID           int64
	SubscriberID string
	QuoteText    string
	QuoteAuthor  string
	Channel      string // "sms" or "email"
	Type         string // "daily", "welcome" or "test"
	Status       string // "sent", "failed" or "pending"
	MessageID    string
	ErrorMessage string
	Destination  string
	SentAt       time.Time
}

// DeliveryStats aggregates transport outcomes over a time range.
type DeliveryStats struct {
	Total       int64
	Sent        int64
	Failed      int64
	SuccessRate float64
}

// QuoteStats aggregates a subscriber's sent-quote history.
type QuoteStats struct {
	TotalQuotes      int64
	CategoryCounts   map[string]int64
	FirstSentAt      time.Time
	FavoriteCategory string
}

// Timestamps are stored as RFC3339 UTC strings so range comparisons
// work lexicographically in SQLite.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// SQLite's datetime('now') default
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
