package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	if code >= 500 && code <= 599 {
		return true
	}
	return code == 429 || code == 408
}

func newHTTP(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts-1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("Content-Type", "application/json")
}

// OpenAIClient talks to an OpenAI compatible chat completions endpoint.
type OpenAIClient struct {
	http        *resty.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{
		http:        newHTTP(cfg.OpenAIBaseURL, cfg.Timeout).SetAuthToken(cfg.OpenAIAPIKey),
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) Query(ctx context.Context, prompt, instructions string) (string, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: instructions},
				{Role: "user", Content: prompt},
			},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		}).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai http %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

const anthropicVersion = "2023-06-01"

// AnthropicClient talks to the Anthropic messages endpoint.
type AnthropicClient struct {
	http        *resty.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewAnthropicClient(cfg Config) *AnthropicClient {
	return &AnthropicClient{
		http: newHTTP(cfg.AnthropicBaseURL, cfg.Timeout).
			SetHeader("x-api-key", cfg.AnthropicAPIKey).
			SetHeader("anthropic-version", anthropicVersion),
		model:       cfg.AnthropicModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

type messagesRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Query(ctx context.Context, prompt, instructions string) (string, error) {
	var out messagesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:       c.model,
			System:      instructions,
			Messages:    []chatMessage{{Role: "user", Content: prompt}},
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
		}).
		SetResult(&out).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic http %d: %s", resp.StatusCode(), resp.String())
	}
	var b strings.Builder
	for _, part := range out.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: empty content")
	}
	return strings.TrimSpace(b.String()), nil
}
