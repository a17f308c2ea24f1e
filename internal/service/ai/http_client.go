package ai

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zhouzirui/deepchat/backend/internal/config"
)

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []completionMessage `json:"messages"`
	Temperature float32             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type completionMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

// HTTPCompleter calls an OpenAI-compatible /chat/completions endpoint
// directly.
type HTTPCompleter struct {
	client      *resty.Client
	temperature float32
	maxTokens   int
}

// NewHTTPCompleter creates a completer bound to cfg.BaseURL.
func NewHTTPCompleter(cfg config.AIConfig) *HTTPCompleter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &HTTPCompleter{
		client:      client,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete sends one chat completion request and returns the first choice.
func (c *HTTPCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	if req.APIKey == "" {
		return Reply{}, ErrMissingAPIKey
	}

	body := completionRequest{
		Model:       req.Model,
		Messages:    make([]completionMessage, 0, len(req.Messages)),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, msg := range req.Messages {
		body.Messages = append(body.Messages, completionMessage{Role: string(msg.Role), Content: msg.Content})
	}

	var result completionResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(req.APIKey).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return Reply{}, fmt.Errorf("completion request failed: %w", err)
	}
	if resp.IsError() {
		return Reply{}, fmt.Errorf("completion request returned status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return Reply{}, ErrEmptyReply
	}

	choice := result.Choices[0].Message
	log.Printf("[ai] http completion model=%s, status=%d, length=%d", req.Model, resp.StatusCode(), len(choice.Content))
	return Reply{Content: choice.Content, ReasoningContent: choice.ReasoningContent}, nil
}
