package db

import (
	"context"
	"fmt"
	"time"
)

// InsertSentQuoteParams holds the fields for a new sent-quote record.
type InsertSentQuoteParams struct {
	SubscriberID string
	QuoteText    string
	QuoteAuthor  string
	Category     string
	Explanation  string
	Tone         string
}

// InsertSentQuote appends a sent-quote record. Uniqueness of
// (subscriber, quote text) is an application-level concern; the table
// carries no constraint so a failed check never blocks an insert.
func (s *Store) InsertSentQuote(ctx context.Context, params InsertSentQuoteParams) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO sent_quotes (
			subscriber_id, quote_text, quote_author, quote_category,
			quote_explanation, tone, sent_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.SubscriberID, params.QuoteText, params.QuoteAuthor,
		params.Category, params.Explanation, params.Tone,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert sent quote: %w", err)
	}
	return nil
}

// RecentQuoteTexts returns quote texts sent to a subscriber within the
// window, newest first, capped at maxCount.
func (s *Store) RecentQuoteTexts(ctx context.Context, subscriberID string, since time.Time, maxCount int) ([]string, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT quote_text FROM sent_quotes
		WHERE subscriber_id = ? AND sent_at >= ?
		ORDER BY sent_at DESC
		LIMIT ?`,
		subscriberID, formatTime(since), maxCount,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent quotes: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan quote text: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote texts: %w", err)
	}
	return texts, nil
}

// SentQuoteExists reports whether the exact quote text has been sent to
// the subscriber before.
func (s *Store) SentQuoteExists(ctx context.Context, subscriberID, quoteText string) (bool, error) {
	var count int64
	err := s.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sent_quotes
		WHERE subscriber_id = ? AND quote_text = ?`,
		subscriberID, quoteText,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sent quote: %w", err)
	}
	return count > 0, nil
}

// ListSentQuotes returns a subscriber's history, newest first.
func (s *Store) ListSentQuotes(ctx context.Context, subscriberID string, limit int) ([]*SentQuote, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, subscriber_id, quote_text, quote_author, quote_category,
			quote_explanation, tone, sent_at
		FROM sent_quotes
		WHERE subscriber_id = ?
		ORDER BY sent_at DESC
		LIMIT ?`,
		subscriberID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query sent quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*SentQuote
	for rows.Next() {
		var q SentQuote
		var sentAt string
		if err := rows.Scan(&q.ID, &q.SubscriberID, &q.QuoteText, &q.QuoteAuthor,
			&q.Category, &q.Explanation, &q.Tone, &sentAt); err != nil {
			return nil, fmt.Errorf("scan sent quote: %w", err)
		}
		q.SentAt = parseTime(sentAt)
		quotes = append(quotes, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent quotes: %w", err)
	}
	return quotes, nil
}

// SubscriberQuoteStats aggregates a subscriber's sent-quote history.
func (s *Store) SubscriberQuoteStats(ctx context.Context, subscriberID string) (*QuoteStats, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT quote_category, sent_at FROM sent_quotes
		WHERE subscriber_id = ?`,
		subscriberID,
	)
	if err != nil {
		return nil, fmt.Errorf("query quote stats: %w", err)
	}
	defer rows.Close()

	stats := &QuoteStats{CategoryCounts: make(map[string]int64)}
	for rows.Next() {
		var category, sentAt string
		if err := rows.Scan(&category, &sentAt); err != nil {
			return nil, fmt.Errorf("scan quote stats: %w", err)
		}
		stats.TotalQuotes++
		stats.CategoryCounts[category]++
		t := parseTime(sentAt)
		if stats.FirstSentAt.IsZero() || t.Before(stats.FirstSentAt) {
			stats.FirstSentAt = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote stats: %w", err)
	}

	var max int64
	for category, count := range stats.CategoryCounts {
		if count > max {
			max = count
			stats.FavoriteCategory = category
		}
	}

	return stats, nil
}

// CountSentQuotes returns the total number of sent-quote records.
func (s *Store) CountSentQuotes(ctx context.Context) (int64, error) {
	var count int64
	err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM sent_quotes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sent quotes: %w", err)
	}
	return count, nil
}

// DeleteSentQuotesBefore prunes history older than the cutoff and
// returns the number of rows removed.
func (s *Store) DeleteSentQuotesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.ExecContext(ctx,
		`DELETE FROM sent_quotes WHERE sent_at < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete old quotes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
