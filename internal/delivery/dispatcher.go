// Package delivery sends daily quotes to subscribers over SMS and
// email and records every transport attempt.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
)

const (
	// Inter-send delays keep batch sweeps under the providers' rate
	// limits.
	smsBatchDelay   = 200 * time.Millisecond
	emailBatchDelay = 150 * time.Millisecond
)

// Store is the slice of the database layer the dispatcher needs.
type Store interface {
	GetActiveSubscriber(ctx context.Context, id string) (*db.Subscriber, error)
	ListActiveSubscribersWithPhone(ctx context.Context) ([]*db.Subscriber, error)
	ListActiveSubscribersWithEmail(ctx context.Context) ([]*db.Subscriber, error)
	InsertDelivery(ctx context.Context, params db.InsertDeliveryParams) error
}

// QuoteSource produces a unique quote for a subscriber.
type QuoteSource interface {
	GenerateUnique(ctx context.Context, req quotegen.Request) *generator.Quote
}

// Dispatcher routes daily quotes to subscribers over their configured
// channels.
type Dispatcher struct {
	store   Store
	quotes  QuoteSource
	senders map[string]Sender
	delays  map[string]time.Duration
}

// Config holds configuration for the dispatcher.
type Config struct {
	Store   Store
	Quotes  QuoteSource
	Senders []Sender
}

// New creates a new dispatcher.
func New(cfg Config) *Dispatcher {
	senders := make(map[string]Sender, len(cfg.Senders))
	for _, s := range cfg.Senders {
		senders[s.Channel()] = s
	}

	return &Dispatcher{
		store:   cfg.Store,
		quotes:  cfg.Quotes,
		senders: senders,
		delays: map[string]time.Duration{
			"sms":   smsBatchDelay,
			"email": emailBatchDelay,
		},
	}
}

// Result is the outcome of one delivery attempt.
type Result struct {
	SubscriberID string `json:"subscriber_id"`
	Channel      string `json:"channel"`
	Success      bool   `json:"success"`
	MessageID    string `json:"message_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Summary aggregates a batch of delivery attempts.
type Summary struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

func (s *Summary) add(r Result) {
	s.Total++
	if r.Success {
		s.Success++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// SuccessRate returns the percentage of successful deliveries, rounded
// to two decimal places.
func (s *Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	rate := float64(s.Success) / float64(s.Total) * 100
	return math.Round(rate*100) / 100
}

// SendDailyQuote generates a fresh quote for the subscriber and
// delivers it over the given channel. The delivery record is written
// best-effort: a failed insert never undoes a successful send.
func (d *Dispatcher) SendDailyQuote(ctx context.Context, subscriberID, channel string) Result {
	result := Result{SubscriberID: subscriberID, Channel: channel}

	sender, ok := d.senders[channel]
	if !ok {
		result.Error = fmt.Sprintf("no sender registered for channel %q", channel)
		return result
	}

	sub, err := d.store.GetActiveSubscriber(ctx, subscriberID)
	if err != nil {
		result.Error = fmt.Sprintf("subscriber not found: %v", err)
		return result
	}

	destination, err := destinationFor(sub, channel)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	quote := d.quotes.GenerateUnique(ctx, quotegen.Request{
		SubscriberID: sub.ID,
		Persona:      sub.Persona,
		Categories:   sub.Categories,
		Tone:         generator.ParseTone(sub.TonePreference),
	})

	name := sub.FirstName
	if name == "" {
		name = "Friend"
	}
	personalization := Personalization(sub.Persona)

	msg := Message{To: destination}
	switch channel {
	case "sms":
		msg.Body = FormatSMS(quote.Text, quote.Author, name, personalization)
	case "email":
		msg.Subject, msg.Body = FormatEmail(quote.Text, quote.Author, name, personalization)
	}

	sent, err := sender.Send(ctx, msg)

	record := db.InsertDeliveryParams{
		SubscriberID: sub.ID,
		QuoteText:    quote.Text,
		QuoteAuthor:  quote.Author,
		Channel:      channel,
		Type:         "daily",
		Destination:  destination,
	}
	if err != nil {
		record.Status = "failed"
		record.ErrorMessage = err.Error()
		result.Error = err.Error()
	} else {
		record.Status = "sent"
		record.MessageID = sent.MessageID
		result.Success = true
		result.MessageID = sent.MessageID
	}

	if recordErr := d.store.InsertDelivery(ctx, record); recordErr != nil {
		slog.Error("failed to record delivery",
			"subscriber_id", sub.ID,
			"channel", channel,
			"error", recordErr,
		)
	}

	return result
}

// SendDailyQuotes delivers to each subscriber in turn with the
// channel's inter-send delay between iterations.
func (d *Dispatcher) SendDailyQuotes(ctx context.Context, subscriberIDs []string, channel string) Summary {
	var summary Summary

	for i, id := range subscriberIDs {
		if ctx.Err() != nil {
			break
		}

		summary.add(d.SendDailyQuote(ctx, id, channel))

		if i < len(subscriberIDs)-1 {
			select {
			case <-ctx.Done():
				return summary
			case <-time.After(d.delays[channel]):
			}
		}
	}

	return summary
}

// SendToAllSubscribers delivers to every active subscriber reachable
// on the channel.
func (d *Dispatcher) SendToAllSubscribers(ctx context.Context, channel string) (Summary, error) {
	var (
		subs []*db.Subscriber
		err  error
	)
	switch channel {
	case "sms":
		subs, err = d.store.ListActiveSubscribersWithPhone(ctx)
	case "email":
		subs, err = d.store.ListActiveSubscribersWithEmail(ctx)
	default:
		return Summary{}, fmt.Errorf("unknown channel %q", channel)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("list subscribers: %w", err)
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ID)
	}

	return d.SendDailyQuotes(ctx, ids, channel), nil
}

// Sweep runs the daily cycle over every registered channel and merges
// the outcomes. A channel whose subscriber listing fails is logged and
// skipped so the other channels still deliver.
func (d *Dispatcher) Sweep(ctx context.Context) Summary {
	var merged Summary

	for _, channel := range []string{"sms", "email"} {
		if _, ok := d.senders[channel]; !ok {
			continue
		}

		summary, err := d.SendToAllSubscribers(ctx, channel)
		if err != nil {
			slog.Error("sweep skipped channel",
				"channel", channel,
				"error", err,
			)
			continue
		}

		merged.Total += summary.Total
		merged.Success += summary.Success
		merged.Failed += summary.Failed
		merged.Results = append(merged.Results, summary.Results...)
	}

	slog.Info("delivery sweep finished",
		"total", merged.Total,
		"success", merged.Success,
		"failed", merged.Failed,
	)

	return merged
}

// SendTest delivers a canned test message without generating a quote.
func (d *Dispatcher) SendTest(ctx context.Context, subscriberID, channel, customMessage string) Result {
	result := Result{SubscriberID: subscriberID, Channel: channel}

	sender, ok := d.senders[channel]
	if !ok {
		result.Error = fmt.Sprintf("no sender registered for channel %q", channel)
		return result
	}

	sub, err := d.store.GetActiveSubscriber(ctx, subscriberID)
	if err != nil {
		result.Error = fmt.Sprintf("subscriber not found: %v", err)
		return result
	}

	destination, err := destinationFor(sub, channel)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	name := sub.FirstName
	if name == "" {
		name = "Friend"
	}

	text := customMessage
	if text == "" {
		text = fmt.Sprintf("Hello %s! This is a test message from Your Daily Dose. Everything is working perfectly! ✨", name)
	}

	msg := Message{To: destination}
	switch channel {
	case "sms":
		msg.Body = text
	case "email":
		msg.Subject, msg.Body = FormatEmail(text, "Your Daily Dose Team", name, "")
	}

	sent, err := sender.Send(ctx, msg)

	record := db.InsertDeliveryParams{
		SubscriberID: sub.ID,
		QuoteText:    text,
		Channel:      channel,
		Type:         "test",
		Destination:  destination,
	}
	if err != nil {
		record.Status = "failed"
		record.ErrorMessage = err.Error()
		result.Error = err.Error()
	} else {
		record.Status = "sent"
		record.MessageID = sent.MessageID
		result.Success = true
		result.MessageID = sent.MessageID
	}

	if recordErr := d.store.InsertDelivery(ctx, record); recordErr != nil {
		slog.Error("failed to record test delivery",
			"subscriber_id", sub.ID,
			"channel", channel,
			"error", recordErr,
		)
	}

	return result
}

// destinationFor validates and returns the subscriber's address for
// the channel.
func destinationFor(sub *db.Subscriber, channel string) (string, error) {
	switch channel {
	case "sms":
		if sub.Phone == "" {
			return "", fmt.Errorf("no phone number provided")
		}
		phone := NormalizePhone(sub.Phone)
		if !ValidPhone(phone) {
			return "", fmt.Errorf("invalid phone number %q", sub.Phone)
		}
		return phone, nil
	case "email":
		if sub.Email == "" {
			return "", fmt.Errorf("no email address provided")
		}
		if !ValidEmail(sub.Email) {
			return "", fmt.Errorf("invalid email address %q", sub.Email)
		}
		return sub.Email, nil
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
	}
}
