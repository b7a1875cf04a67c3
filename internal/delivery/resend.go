package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	resendBaseURL = "https://api.resend.com"

	defaultFromEmail = "Your Daily Dose <quotes@dailyquotes.app>"
)

// ResendSender sends email through the Resend API.
type ResendSender struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	fromEmail  string
}

// ResendConfig holds configuration for the Resend sender.
type ResendConfig struct {
	APIKey    string
	FromEmail string

	// BaseURL overrides the Resend API endpoint (used in tests).
	BaseURL string
}

// NewResendSender creates a new Resend sender.
func NewResendSender(cfg ResendConfig) *ResendSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = resendBaseURL
	}
	fromEmail := cfg.FromEmail
	if fromEmail == "" {
		fromEmail = defaultFromEmail
	}

	return &ResendSender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		fromEmail: fromEmail,
	}
}

// Channel returns the channel name.
func (r *ResendSender) Channel() string {
	return "email"
}

// sendEmailRequest is the request body for sending an email.
type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// sendEmailResponse is the response from sending an email.
type sendEmailResponse struct {
	ID string `json:"id"`
}

// Send delivers an email message.
func (r *ResendSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("resend api key not configured")
	}

	body, err := json.Marshal(sendEmailRequest{
		From:    r.fromEmail,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("email send failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var sent sendEmailResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	slog.Info("sent email",
		"to", msg.To,
		"message_id", sent.ID,
	)

	return &SendResult{MessageID: sent.ID}, nil
}

// ValidateCredentials checks the API key format. Resend has no cheap
// read-only endpoint for a credential probe, so a malformed key is the
// best we can reject before the first send.
func (r *ResendSender) ValidateCredentials(_ context.Context) error {
	if r.apiKey == "" {
		return fmt.Errorf("resend api key not configured")
	}
	if !strings.HasPrefix(r.apiKey, "re_") {
		return fmt.Errorf("invalid resend api key format (should start with re_)")
	}
	return nil
}
