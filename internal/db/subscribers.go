package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSubscriberParams holds the fields for a new subscriber.
type CreateSubscriberParams struct {
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
}

// CreateSubscriber inserts a new subscriber and returns it.
func (s *Store) CreateSubscriber(ctx context.Context, params CreateSubscriberParams) (*Subscriber, error) {
	sub := &Subscriber{
		ID:              uuid.NewString(),
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		Email:           params.Email,
		Phone:           params.Phone,
		Persona:         params.Persona,
		Categories:      params.Categories,
		TonePreference:  params.TonePreference,
		DeliveryTime:    params.DeliveryTime,
		DeliveryMethods: params.DeliveryMethods,
		PersonalGoals:   params.PersonalGoals,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	if sub.Persona == "" {
		sub.Persona = "Other"
	}
	if sub.TonePreference == "" {
		sub.TonePreference = "inspirational"
	}
	if sub.DeliveryTime == "" {
		sub.DeliveryTime = "07:00"
	}
	if len(sub.DeliveryMethods) == 0 {
		sub.DeliveryMethods = []string{"email"}
	}

	_, err := s.ExecContext(ctx, `
		INSERT INTO subscribers (
			id, first_name, last_name, email, phone, persona, categories,
			tone_preference, delivery_time, delivery_methods, personal_goals,
			is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		sub.ID, sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.Persona,
		marshalJSON(sub.Categories), sub.TonePreference, sub.DeliveryTime,
		marshalJSON(sub.DeliveryMethods), marshalJSON(sub.PersonalGoals),
		formatTime(sub.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscriber: %w", err)
	}

	return sub, nil
}

const subscriberColumns = `id, first_name, last_name, email, phone, persona, categories,
	tone_preference, delivery_time, delivery_methods, personal_goals, is_active, created_at`

// GetSubscriber returns a subscriber by id, or sql.ErrNoRows if absent.
func (s *Store) GetSubscriber(ctx context.Context, id string) (*Subscriber, error) {
	row := s.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE id = ?`, id)
	return scanSubscriber(row)
}

// GetActiveSubscriber returns an active subscriber by id.
func (s *Store) GetActiveSubscriber(ctx context.Context, id string) (*Subscriber, error) {
	row := s.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE id = ? AND is_active = 1`, id)
	return scanSubscriber(row)
}

// ListActiveSubscribers returns all active subscribers.
func (s *Store) ListActiveSubscribers(ctx context.Context) ([]*Subscriber, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE is_active = 1 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

// ListActiveSubscribersWithPhone returns active subscribers that have a phone number.
func (s *Store) ListActiveSubscribersWithPhone(ctx context.Context) ([]*Subscriber, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE is_active = 1 AND phone != '' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

// ListActiveSubscribersWithEmail returns active subscribers that have an email address.
func (s *Store) ListActiveSubscribersWithEmail(ctx context.Context) ([]*Subscriber, error) {
	rows, err := s.QueryContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE is_active = 1 AND email != '' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()
	return scanSubscribers(rows)
}

// DeactivateSubscriber soft-deletes a subscriber. The row is kept for
// history and delivery reporting.
func (s *Store) DeactivateSubscriber(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx, `UPDATE subscribers SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActiveSubscribers returns the number of active subscribers.
func (s *Store) CountActiveSubscribers(ctx context.Context) (int64, error) {
	var count int64
	err := s.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers WHERE is_active = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row rowScanner) (*Subscriber, error) {
	var sub Subscriber
	var categories, methods, goals, createdAt string
	err := row.Scan(
		&sub.ID, &sub.FirstName, &sub.LastName, &sub.Email, &sub.Phone,
		&sub.Persona, &categories, &sub.TonePreference, &sub.DeliveryTime,
		&methods, &goals, &sub.IsActive, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Categories = unmarshalJSON(categories)
	sub.DeliveryMethods = unmarshalJSON(methods)
	sub.PersonalGoals = unmarshalJSON(goals)
	sub.CreatedAt = parseTime(createdAt)
	return &sub, nil
}

func scanSubscribers(rows *sql.Rows) ([]*Subscriber, error) {
	var subs []*Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return subs, nil
}

func marshalJSON(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalJSON(s string) []string {
	var values []string
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil
	}
	return values
}
