package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioSender sends SMS messages through the Twilio REST API.
type TwilioSender struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromPhone  string
}

// TwilioConfig holds configuration for the Twilio sender.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string

	// BaseURL overrides the Twilio API endpoint (used in tests).
	BaseURL string
}

// NewTwilioSender creates a new Twilio sender.
func NewTwilioSender(cfg TwilioConfig) *TwilioSender {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = twilioBaseURL
	}

	return &TwilioSender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    baseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromPhone:  cfg.FromPhone,
	}
}

// Channel returns the channel name.
func (t *TwilioSender) Channel() string {
	return "sms"
}

// twilioMessageResponse is the response from creating a message.
type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// Send delivers an SMS message.
func (t *TwilioSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	if t.accountSID == "" || t.authToken == "" || t.fromPhone == "" {
		return nil, fmt.Errorf("twilio not configured")
	}

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", t.fromPhone)
	form.Set("Body", msg.Body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sms send failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var message twilioMessageResponse
	if err := json.Unmarshal(respBody, &message); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	slog.Info("sent SMS",
		"to", msg.To,
		"message_id", message.SID,
	)

	return &SendResult{MessageID: message.SID}, nil
}

// ValidateCredentials fetches the account record to verify the
// SID/token pair.
func (t *TwilioSender) ValidateCredentials(ctx context.Context) error {
	if t.accountSID == "" || t.authToken == "" {
		return fmt.Errorf("twilio credentials not configured")
	}
	if !strings.HasPrefix(t.accountSID, "AC") {
		return fmt.Errorf("invalid twilio account SID format")
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("credential check failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
