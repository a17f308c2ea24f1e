package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

// ModelFactory builds a chat model bound to one credential and model name.
type ModelFactory func(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error)

// EinoCompleter drives an eino chat model built per call, since every
// session carries its own credential.
type EinoCompleter struct {
	factory ModelFactory
}

// NewEinoCompleter wraps factory as a Completer.
func NewEinoCompleter(factory ModelFactory) *EinoCompleter {
	return &EinoCompleter{factory: factory}
}

// Complete builds the model and runs a single Generate call.
func (c *EinoCompleter) Complete(ctx context.Context, req Request) (Reply, error) {
	if req.APIKey == "" {
		return Reply{}, ErrMissingAPIKey
	}

	chatModel, err := c.factory(ctx, req.APIKey, req.Model)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create chat model: %w", err)
	}

	response, err := chatModel.Generate(ctx, toSchemaMessages(req.Messages))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to generate completion: %w", err)
	}
	if response == nil {
		return Reply{}, ErrEmptyReply
	}

	reply := Reply{Content: response.Content}
	if reasoning, ok := deepseek.GetReasoningContent(response); ok {
		reply.ReasoningContent = reasoning
	} else if response.ReasoningContent != "" {
		reply.ReasoningContent = response.ReasoningContent
	}

	log.Printf("[ai] generated completion model=%s, length=%d", req.Model, len(reply.Content))
	return reply, nil
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return out
}

// DeepSeekFactory creates DeepSeek models through the eino deepseek component.
func DeepSeekFactory(cfg config.AIConfig) ModelFactory {
	return func(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      apiKey,
			BaseURL:     cfg.BaseURL,
			Model:       modelName,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	}
}

// OpenAIFactory creates models for any OpenAI-compatible endpoint.
func OpenAIFactory(cfg config.AIConfig) ModelFactory {
	return func(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
		maxTokens := cfg.MaxTokens
		temperature := cfg.Temperature
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      apiKey,
			BaseURL:     cfg.BaseURL,
			Model:       modelName,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Timeout:     cfg.Timeout,
		})
	}
}

// ArkFactory creates Volcengine Ark models.
func ArkFactory(cfg config.AIConfig) ModelFactory {
	return func(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
		maxTokens := cfg.MaxTokens
		temperature := cfg.Temperature
		timeout := cfg.Timeout
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			Region:      cfg.Region,
			APIKey:      apiKey,
			Model:       modelName,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Timeout:     &timeout,
		})
	}
}
