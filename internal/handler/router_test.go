package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zhouzirui/deepchat/backend/internal/service/ai"
	chatService "github.com/zhouzirui/deepchat/backend/internal/service/chat"
)

func TestRouterServesChatAPI(t *testing.T) {
	store := chatService.NewStore()
	completer := ai.CompleterFunc(func(context.Context, ai.Request) (ai.Reply, error) {
		return ai.Reply{Content: "pong"}, nil
	})
	router := NewRouter(store, chatService.NewExchanger(store, completer, chatService.ExchangeConfig{}), "*")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chats", bytes.NewReader([]byte(`{"api_key":"k1"}`)))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/chats/"+created.ID+"/messages", bytes.NewReader([]byte(`{"user_message":"ping","model_name":"m"}`)))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestRouterHealthz(t *testing.T) {
	store := chatService.NewStore()
	store.CreateSession(context.Background(), "k")
	router := NewRouter(store, chatService.NewExchanger(store, nil, chatService.ExchangeConfig{}), "")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Sessions != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}
