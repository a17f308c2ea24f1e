package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

var (
	ErrMissingAPIKey = errors.New("api key is required")
	ErrEmptyReply    = errors.New("completion returned no choices")
)

// Request is a single completion call. Messages is the prompt the model sees,
// oldest first.
type Request struct {
	Messages []chat.Message
	Model    string
	APIKey   string
}

// Reply carries the model output. ReasoningContent is empty for models that
// do not expose their reasoning.
type Reply struct {
	Content          string
	ReasoningContent string
}

// Completer turns a prompt into one reply. Implementations perform a single
// request without retries or streaming.
type Completer interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (Reply, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// NewCompleter builds the completer selected by cfg.Provider.
func NewCompleter(cfg config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderDeepSeek, "":
		return NewEinoCompleter(DeepSeekFactory(cfg)), nil
	case config.ProviderOpenAI:
		return NewEinoCompleter(OpenAIFactory(cfg)), nil
	case config.ProviderArk:
		return NewEinoCompleter(ArkFactory(cfg)), nil
	case config.ProviderHTTP:
		return NewHTTPCompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}
