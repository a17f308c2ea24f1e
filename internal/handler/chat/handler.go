package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/deepchat/backend/internal/service/chat"
	"github.com/zhouzirui/deepchat/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	store     *chatService.Store
	exchanger *chatService.Exchanger
	ws        *WebSocketHandler
}

// New 创建聊天处理器
func New(store *chatService.Store, exchanger *chatService.Exchanger) *Handler {
	return &Handler{
		store:     store,
		exchanger: exchanger,
		ws:        NewWebSocketHandler(exchanger),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chats", h.handleCreateChat)
	r.Get("/chats", h.handleListChats)
	r.Get("/chats/{chatID}", h.handleGetChat)
	r.Post("/chats/{chatID}/messages", h.handleSendMessage)
	r.Get("/chats/{chatID}/ws", h.ws.handleWebSocket)
}

type createChatRequest struct {
	APIKey string `json:"api_key"`
}

// SendMessageRequest is the body of a "send message" call, shared by the
// REST and WebSocket transports.
type SendMessageRequest struct {
	UserMessage string `json:"user_message"`
	APIKey      string `json:"api_key"`
	ModelName   string `json:"model_name"`
}

// ChatResponse carries the conversation after a completed exchange.
type ChatResponse struct {
	Messages         []chat.Message `json:"messages"`
	ReasoningContent *string        `json:"reasoning_content"`
}

// handleCreateChat 创建会话
func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var payload createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.store.CreateSession(r.Context(), payload.APIKey)
	if err != nil {
		log.Printf("[chat] failed to create chat: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session.Redacted())
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	sessions := h.store.ListSessions(r.Context())
	out := make([]chat.Session, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Redacted())
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetChat(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.GetSession(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		respondExchangeError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session.Redacted())
}

// handleSendMessage 发送消息并返回完整会话
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages, err := h.exchanger.Submit(r.Context(), chi.URLParam(r, "chatID"), payload.UserMessage, payload.APIKey, payload.ModelName)
	if err != nil {
		respondExchangeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, newChatResponse(messages))
}

func newChatResponse(messages []chat.Message) ChatResponse {
	resp := ChatResponse{Messages: messages}
	if n := len(messages); n > 0 && messages[n-1].Role == chat.RoleAssistant {
		resp.ReasoningContent = messages[n-1].ReasoningContent
	}
	return resp
}

// exchangeErrorStatus maps core errors to a status code and a message safe
// to show callers.
func exchangeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound, "chat not found"
	case errors.Is(err, chatService.ErrEmptyMessage):
		return http.StatusBadRequest, "user_message is required"
	case errors.Is(err, chatService.ErrRemoteCallFailed):
		return http.StatusInternalServerError, "completion failed"
	default:
		log.Printf("[chat] unexpected error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

func respondExchangeError(w http.ResponseWriter, err error) {
	status, message := exchangeErrorStatus(err)
	utils.RespondError(w, status, message)
}
