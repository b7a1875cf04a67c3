package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
)

// SendWelcome sends the signup welcome email: the subscriber's first
// generated quote wrapped in the welcome template. The quote is stored
// in history so the first daily delivery won't repeat it.
func (d *Dispatcher) SendWelcome(ctx context.Context, subscriberID string) Result {
	result := Result{SubscriberID: subscriberID, Channel: "email"}

	sender, ok := d.senders["email"]
	if !ok {
		result.Error = "no sender registered for channel \"email\""
		return result
	}

	sub, err := d.store.GetActiveSubscriber(ctx, subscriberID)
	if err != nil {
		result.Error = fmt.Sprintf("subscriber not found: %v", err)
		return result
	}

	if sub.Email == "" || !ValidEmail(sub.Email) {
		result.Error = fmt.Sprintf("invalid email address %q", sub.Email)
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

	subject, body := FormatWelcomeEmail(
		quote.Text, quote.Author, name,
		sub.DeliveryTime, sub.DeliveryMethods, sub.PersonalGoals,
	)

	sent, err := sender.Send(ctx, Message{To: sub.Email, Subject: subject, Body: body})

	record := db.InsertDeliveryParams{
		SubscriberID: sub.ID,
		QuoteText:    quote.Text,
		QuoteAuthor:  quote.Author,
		Channel:      "email",
		Type:         "welcome",
		Destination:  sub.Email,
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
		slog.Error("failed to record welcome delivery",
			"subscriber_id", sub.ID,
			"error", recordErr,
		)
	}

	return result
}
