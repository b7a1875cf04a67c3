package db

import (
	"context"
	"fmt"
	"math"
	"time"
)

// InsertDeliveryParams holds the fields for a new delivery record.
type InsertDeliveryParams struct {
	SubscriberID string
	QuoteText    string
	QuoteAuthor  string
	Channel      string
	Type         string
	Status       string
	MessageID    string
	ErrorMessage string
	Destination  string
}

// InsertDelivery records a transport attempt.
func (s *Store) InsertDelivery(ctx context.Context, params InsertDeliveryParams) error {
	if params.Type == "" {
		params.Type = "daily"
	}
	_, err := s.ExecContext(ctx, `
		INSERT INTO quote_deliveries (
			subscriber_id, quote_text, quote_author, channel, delivery_type,
			status, message_id, error_message, destination, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		params.SubscriberID, params.QuoteText, params.QuoteAuthor,
		params.Channel, params.Type, params.Status, params.MessageID,
		params.ErrorMessage, params.Destination, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// DeliveryStatsRange aggregates delivery outcomes for the time range.
func (s *Store) DeliveryStatsRange(ctx context.Context, start, end time.Time) (*DeliveryStats, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM quote_deliveries
		WHERE sent_at >= ? AND sent_at <= ?
		GROUP BY status`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query delivery stats: %w", err)
	}
	defer rows.Close()

	stats := &DeliveryStats{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan delivery stats: %w", err)
		}
		stats.Total += count
		switch status {
		case "sent":
			stats.Sent += count
		case "failed":
			stats.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery stats: %w", err)
	}

	if stats.Total > 0 {
		rate := float64(stats.Sent) / float64(stats.Total) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	return stats, nil
}

// RecentDeliveries returns deliveries in the range, newest first.
func (s *Store) RecentDeliveries(ctx context.Context, start, end time.Time, limit int) ([]*Delivery, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, subscriber_id, quote_text, quote_author, channel,
			delivery_type, status, message_id, error_message, destination, sent_at
		FROM quote_deliveries
		WHERE sent_at >= ? AND sent_at <= ?
		ORDER BY sent_at DESC
		LIMIT ?`,
		formatTime(start), formatTime(end), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*Delivery
	for rows.Next() {
		var d Delivery
		var sentAt string
		if err := rows.Scan(&d.ID, &d.SubscriberID, &d.QuoteText, &d.QuoteAuthor,
			&d.Channel, &d.Type, &d.Status, &d.MessageID, &d.ErrorMessage,
			&d.Destination, &sentAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.SentAt = parseTime(sentAt)
		deliveries = append(deliveries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return deliveries, nil
}

// FailureCounts returns failed-delivery counts grouped by error message
// for the time range.
func (s *Store) FailureCounts(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT error_message, COUNT(*) FROM quote_deliveries
		WHERE status = 'failed' AND sent_at >= ? AND sent_at <= ?
		GROUP BY error_message`,
		formatTime(start), formatTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("query failure counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var msg string
		var count int64
		if err := rows.Scan(&msg, &count); err != nil {
			return nil, fmt.Errorf("scan failure count: %w", err)
		}
		if msg == "" {
			msg = "unknown error"
		}
		counts[msg] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failure counts: %w", err)
	}
	return counts, nil
}
