package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
	chatService "github.com/zhouzirui/deepchat/backend/internal/service/chat"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsMaxFrameSize = 64 << 10
)

// WebSocketHandler runs exchanges over a long-lived connection: every text
// frame is one user turn and yields exactly one reply frame.
type WebSocketHandler struct {
	exchanger *chatService.Exchanger
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(exchanger *chatService.Exchanger) *WebSocketHandler {
	return &WebSocketHandler{
		exchanger: exchanger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type outgoingFrame struct {
	Type             string         `json:"type"`
	SessionID        string         `json:"sessionId"`
	Messages         []chat.Message `json:"messages,omitempty"`
	ReasoningContent *string        `json:"reasoning_content,omitempty"`
	Error            string         `json:"error,omitempty"`
	Status           int            `json:"status,omitempty"`
	Timestamp        int64          `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "chatID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxFrameSize)

	log.Printf("[ws] connection opened session=%s", sessionID)
	ctx := r.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] read failed session=%s: %v", sessionID, err)
			}
			log.Printf("[ws] connection closed session=%s", sessionID)
			return
		}

		var req SendMessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			if err := h.write(conn, outgoingFrame{Type: "error", SessionID: sessionID, Error: "invalid frame", Status: http.StatusBadRequest}); err != nil {
				return
			}
			continue
		}

		frame := outgoingFrame{Type: "messages", SessionID: sessionID}
		messages, err := h.exchanger.Submit(ctx, sessionID, req.UserMessage, req.APIKey, req.ModelName)
		if err != nil {
			status, message := exchangeErrorStatus(err)
			frame = outgoingFrame{Type: "error", SessionID: sessionID, Error: message, Status: status}
		} else {
			resp := newChatResponse(messages)
			frame.Messages = resp.Messages
			frame.ReasoningContent = resp.ReasoningContent
		}

		if err := h.write(conn, frame); err != nil {
			log.Printf("[ws] write failed session=%s: %v", sessionID, err)
			return
		}
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, frame outgoingFrame) error {
	frame.Timestamp = time.Now().UnixMilli()
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
