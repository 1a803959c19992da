package disambig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"distress/internal/registry"
)

const (
	defaultModel = "claude-sonnet-4-20250514"
	apiVersion   = "2023-06-01"
	maxTokens    = 500

	// Replies are truncated in logs; the payload is only needed to diagnose
	// parsing failures, not to archive transcripts.
	logPayloadLimit = 500
)

// AnthropicClient asks a Claude model to pick the best registry candidate.
// Any failure — transport, refusal, malformed reply — degrades to
// NoSelection with a nil error: a record must never fail because the
// assistant mumbled.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(c *AnthropicClient)

// WithModel overrides the default model.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.model = model
	}
}

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) AnthropicOption {
	return func(c *AnthropicClient) {
		c.http = h
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) AnthropicOption {
	return func(c *AnthropicClient) {
		c.logger = logger
	}
}

// NewAnthropicClient constructs a reasoning-service client.
func NewAnthropicClient(baseURL, apiKey string, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   defaultModel,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// SelectMatch prompts the model with the gazette name and enumerated
// candidates and parses its structured reply. The returned error is non-nil
// only for context cancellation; every other failure degrades to
// NoSelection.
func (c *AnthropicClient) SelectMatch(ctx context.Context, name string, candidates []registry.Candidate) (Selection, error) {
	prompt := fmt.Sprintf(`Match this Gazette company to the best Companies House result.

Gazette name: %s

Candidates:
%s

Respond with JSON: {"index": <0-based index or -1 if no match>, "confidence": <0-100>}`,
		name, FormatCandidates(candidates))

	reply, err := c.complete(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return NoSelection, ctx.Err()
		}
		c.logger.Warn("disambiguation request failed", "company", name, "error", err)
		return NoSelection, nil
	}

	sel := ParseSelection(reply, len(candidates))
	if sel == NoSelection {
		c.logger.Warn("disambiguation reply unusable",
			"company", name,
			"reply", truncate(reply, logPayloadLimit),
		)
	}
	return sel, nil
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    "You are helping match company names between The Gazette and Companies House.",
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reasoning service status %d", resp.StatusCode)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode reasoning response: %w", err)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("reasoning response has no text content")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
