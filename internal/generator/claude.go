package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	claudeAPIURL     = "https://api.anthropic.com/v1/messages"
	claudeAPIVersion = "2023-06-01"
	defaultModel     = "claude-sonnet-4-20250514"
	maxTokens        = 1000
)

// ClaudeGenerator is a quote generator backed by the Claude API.
type ClaudeGenerator struct {
	apiKey     string
	httpClient *http.Client
	model      string
}

// ClaudeConfig holds configuration for the Claude generator.
type ClaudeConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewClaudeGenerator creates a new Claude-backed generator.
func NewClaudeGenerator(config ClaudeConfig) *ClaudeGenerator {
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &ClaudeGenerator{
		apiKey: config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		model: model,
	}
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeRequest is the request body for the Claude API.
type claudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// claudeResponse is the response from the Claude API.
type claudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// complete sends a completion request to Claude.
func (c *ClaudeGenerator) complete(ctx context.Context, system, user string) (string, error) {
	req := claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []Message{
			{Role: "user", Content: user},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", claudeAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", claudeAPIVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(respBody, &claudeResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if claudeResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", claudeResp.Error.Type, claudeResp.Error.Message)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return claudeResp.Content[0].Text, nil
}

// Generate produces one quote candidate for the request.
func (c *ClaudeGenerator) Generate(ctx context.Context, req Request) (*Quote, error) {
	tone := req.Tone
	if tone == "" {
		tone = ToneInspirational
	}

	response, err := c.complete(ctx, systemPrompt(tone), userPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	var quote Quote
	if err := json.Unmarshal([]byte(response), &quote); err != nil {
		// Try to extract JSON from a response that contains other text
		extracted := extractJSONObject(response)
		if extracted == "" {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &quote); err != nil {
			return nil, fmt.Errorf("parse extracted JSON: %w", err)
		}
	}

	if quote.Text == "" || quote.Author == "" || quote.Category == "" {
		return nil, fmt.Errorf("incomplete quote in response: %q", response)
	}

	return &quote, nil
}

// extractJSONObject finds the first balanced JSON object in a response
// that may contain surrounding prose.
func extractJSONObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}
