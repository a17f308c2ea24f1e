package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/zhouzirui/deepchat/backend/internal/config"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
	"github.com/zhouzirui/deepchat/backend/internal/service/ai"
)

var (
	ErrRemoteCallFailed = errors.New("remote completion failed")
	ErrEmptyMessage     = errors.New("user message is required")
)

// RemoteCallError reports a failed completion call. It matches
// ErrRemoteCallFailed with errors.Is and unwraps to the underlying cause.
type RemoteCallError struct {
	SessionID string
	Cause     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s for session %s: %v", ErrRemoteCallFailed, e.SessionID, e.Cause)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Cause
}

func (e *RemoteCallError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// ExchangeConfig tunes how a user turn is forwarded to the model.
type ExchangeConfig struct {
	HistoryMode    config.HistoryMode
	StoreReasoning bool
	DefaultModel   string
	Timeout        time.Duration
}

// Exchanger runs one user turn end to end: record the user message, ask the
// model, record the reply.
type Exchanger struct {
	store     *Store
	completer ai.Completer
	cfg       ExchangeConfig
}

// NewExchanger wires the orchestrator to its store and completion client.
func NewExchanger(store *Store, completer ai.Completer, cfg ExchangeConfig) *Exchanger {
	if cfg.HistoryMode == "" {
		cfg.HistoryMode = config.HistoryLatest
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Exchanger{store: store, completer: completer, cfg: cfg}
}

// Submit appends userText to the session, forwards it to the model and
// appends the reply. The user message stays recorded when the remote call
// fails.
func (x *Exchanger) Submit(ctx context.Context, sessionID, userText, apiKey, modelName string) ([]chat.Message, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, ErrEmptyMessage
	}

	session, err := x.store.AddMessage(ctx, sessionID, userText, chat.RoleUser, nil)
	if err != nil {
		return nil, err
	}

	if apiKey == "" {
		apiKey = session.APIKey
	}
	if modelName == "" {
		modelName = x.cfg.DefaultModel
	}

	callCtx, cancel := context.WithTimeout(ctx, x.cfg.Timeout)
	defer cancel()

	reply, err := x.completer.Complete(callCtx, ai.Request{
		Messages: x.buildPrompt(session),
		Model:    modelName,
		APIKey:   apiKey,
	})
	if err != nil {
		log.Printf("[exchange] remote call failed session=%s model=%s: %v", sessionID, modelName, err)
		return nil, &RemoteCallError{SessionID: sessionID, Cause: err}
	}

	var reasoning *string
	if x.cfg.StoreReasoning && reply.ReasoningContent != "" {
		reasoning = &reply.ReasoningContent
	}

	session, err = x.store.AddMessage(ctx, sessionID, reply.Content, chat.RoleAssistant, reasoning)
	if err != nil {
		log.Printf("[exchange] session=%s vanished before reply was stored", sessionID)
		return nil, err
	}

	return session.Messages, nil
}

func (x *Exchanger) buildPrompt(session chat.Session) []chat.Message {
	if x.cfg.HistoryMode == config.HistoryFull {
		return session.Messages
	}
	return session.Messages[len(session.Messages)-1:]
}
