package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

type fakeChatModel struct {
	received []*schema.Message
	reply    *schema.Message
	err      error
}

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.received = input
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestEinoCompleterConvertsMessages(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("Hi there", nil)}
	var gotKey, gotModel string
	completer := NewEinoCompleter(func(_ context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
		gotKey, gotModel = apiKey, modelName
		return fake, nil
	})

	reply, err := completer.Complete(context.Background(), Request{
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "Hello?"},
			{Role: chat.RoleAssistant, Content: "Hey"},
			{Role: chat.RoleUser, Content: "Again"},
		},
		Model:  "test-model",
		APIKey: "k1",
	})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}

	if reply.Content != "Hi there" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if gotKey != "k1" || gotModel != "test-model" {
		t.Fatalf("factory got key=%q model=%q", gotKey, gotModel)
	}
	if len(fake.received) != 3 {
		t.Fatalf("expected 3 prompt messages, got %d", len(fake.received))
	}
	if fake.received[1].Role != schema.Assistant || fake.received[2].Content != "Again" {
		t.Fatalf("unexpected prompt: %+v", fake.received)
	}
}

func TestEinoCompleterReasoning(t *testing.T) {
	msg := schema.AssistantMessage("answer", nil)
	msg.ReasoningContent = "chain of thought"
	completer := NewEinoCompleter(func(context.Context, string, string) (model.BaseChatModel, error) {
		return &fakeChatModel{reply: msg}, nil
	})

	reply, err := completer.Complete(context.Background(), Request{Model: "deepseek-reasoner", APIKey: "k1"})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply.ReasoningContent != "chain of thought" {
		t.Fatalf("unexpected reasoning: %q", reply.ReasoningContent)
	}
}

func TestEinoCompleterErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("missing key", func(t *testing.T) {
		completer := NewEinoCompleter(func(context.Context, string, string) (model.BaseChatModel, error) {
			t.Fatal("factory must not be called without a key")
			return nil, nil
		})
		if _, err := completer.Complete(context.Background(), Request{Model: "m"}); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("expected ErrMissingAPIKey, got %v", err)
		}
	})

	t.Run("factory failure", func(t *testing.T) {
		completer := NewEinoCompleter(func(context.Context, string, string) (model.BaseChatModel, error) {
			return nil, boom
		})
		if _, err := completer.Complete(context.Background(), Request{Model: "m", APIKey: "k"}); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped factory error, got %v", err)
		}
	})

	t.Run("generate failure", func(t *testing.T) {
		completer := NewEinoCompleter(func(context.Context, string, string) (model.BaseChatModel, error) {
			return &fakeChatModel{err: boom}, nil
		})
		if _, err := completer.Complete(context.Background(), Request{Model: "m", APIKey: "k"}); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped generate error, got %v", err)
		}
	})
}

func TestNewCompleterSelectsProvider(t *testing.T) {
	cases := []struct {
		provider config.Provider
		eino     bool
	}{
		{config.ProviderDeepSeek, true},
		{config.ProviderOpenAI, true},
		{config.ProviderArk, true},
		{config.ProviderHTTP, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.provider), func(t *testing.T) {
			completer, err := NewCompleter(config.AIConfig{Provider: tc.provider, BaseURL: "http://localhost"})
			if err != nil {
				t.Fatalf("NewCompleter err: %v", err)
			}
			_, isEino := completer.(*EinoCompleter)
			if isEino != tc.eino {
				t.Fatalf("provider %s: got %T", tc.provider, completer)
			}
		})
	}

	if _, err := NewCompleter(config.AIConfig{Provider: "gemini"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
