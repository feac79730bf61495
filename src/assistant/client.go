package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/logging"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel    = "mistralai/mistral-small-3.1-24b-instruct:free"
	DefaultTimeout  = 30 * time.Second
	Temperature     = 0.2
)

var (
	ErrNoAPIKey = errors.New("assistant: no API key configured")
	ErrNoModel  = errors.New("assistant: no model configured")
	ErrEmpty    = errors.New("assistant: empty completion")
)

// APIError is a non-2xx answer from the completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant: completion endpoint returned %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// Config carries the remote model settings. Zero fields take the package defaults,
// except APIKey which stays empty and disables remote calls.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
	Title    string
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenRouter compatible chat completion endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Title == "" {
		cfg.Title = "CBA Charts"
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) Config() Config { return c.cfg }

type originKey struct{}

// WithOrigin attaches the calling page origin; it is forwarded as HTTP-Referer.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// Complete sends one chat completion request and returns the first choice.
// There is no retry: callers fall back to deterministic text on any error.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", ErrNoAPIKey
	}
	if strings.TrimSpace(c.cfg.Model) == "" {
		return "", ErrNoModel
	}
	body, err := json.Marshal(completionRequest{Model: c.cfg.Model, Messages: messages, Temperature: Temperature})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", c.cfg.Title)
	if origin, ok := ctx.Value(originKey{}).(string); ok && origin != "" {
		req.Header.Set("HTTP-Referer", origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmpty
	}
	return out.Choices[0].Message.Content, nil
}

// Summarize returns a one-paragraph recommendation for the dashboard rows. The
// remote answer is used only when it passes Accept; otherwise the result is Fallback.
func (c *Client) Summarize(ctx context.Context, setup map[string]interface{}, records []decision.Record) string {
	fallback := Fallback(setup, records)
	messages, err := buildMessages(setup, candidates(records))
	if err != nil {
		logging.Warnf("assistant: %v", err)
		return fallback
	}
	content, err := c.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, ErrNoAPIKey) {
			logging.Debugf("assistant: %v, using fallback", err)
		} else {
			logging.Warnf("assistant: %v, using fallback", err)
		}
		return fallback
	}
	text, ok := Accept(content)
	if !ok {
		logging.Infof("assistant: model answer rejected (%d chars), using fallback", len(content))
		return fallback
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
