package delivery

import (
	"context"
)

// Message is one outbound message bound for a subscriber.
type Message struct {
	// To is the destination address: an E.164 phone number for SMS or
	// an email address for email.
	To string

	// Subject applies to email only.
	Subject string

	// Body is the SMS text or the email HTML.
	Body string
}

// SendResult represents the result of a send.
type SendResult struct {
	MessageID string
}

// Sender is the interface for delivering messages over a channel.
type Sender interface {
	// Channel returns the name of the delivery channel.
	Channel() string

	// Send delivers the message.
	Send(ctx context.Context, msg Message) (*SendResult, error)

	// ValidateCredentials checks if the credentials are valid.
	ValidateCredentials(ctx context.Context) error
}
