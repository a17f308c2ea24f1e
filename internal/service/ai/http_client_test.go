package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

func newTestHTTPCompleter(url string) *HTTPCompleter {
	return NewHTTPCompleter(config.AIConfig{
		BaseURL:     url,
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	})
}

func TestHTTPCompleterSendsRequest(t *testing.T) {
	var got completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer k1" {
			t.Errorf("unexpected authorization header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hi there","reasoning_content":"thinking"}}]}`))
	}))
	defer server.Close()

	reply, err := newTestHTTPCompleter(server.URL).Complete(context.Background(), Request{
		Messages: []chat.Message{{Role: chat.RoleUser, Content: "Hello?"}},
		Model:    "test-model",
		APIKey:   "k1",
	})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}

	if reply.Content != "Hi there" || reply.ReasoningContent != "thinking" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if got.Model != "test-model" || got.MaxTokens != 2000 {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Hello?" {
		t.Fatalf("unexpected request messages: %+v", got.Messages)
	}
}

func TestHTTPCompleterNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestHTTPCompleter(server.URL).Complete(context.Background(), Request{Model: "m", APIKey: "k1"})
	if err == nil {
		t.Fatal("expected error for non-success status")
	}
}

func TestHTTPCompleterNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestHTTPCompleter(server.URL).Complete(context.Background(), Request{Model: "m", APIKey: "k1"})
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
}

func TestHTTPCompleterMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [`))
	}))
	defer server.Close()

	if _, err := newTestHTTPCompleter(server.URL).Complete(context.Background(), Request{Model: "m", APIKey: "k1"}); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestHTTPCompleterMissingKey(t *testing.T) {
	_, err := newTestHTTPCompleter("http://127.0.0.1:0").Complete(context.Background(), Request{Model: "m"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
