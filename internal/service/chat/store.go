package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/deepchat/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRole     = errors.New("invalid message role")
	ErrIDCollision     = errors.New("session id collision")
)

// entry is the store-internal home of one session. Its mutex serializes
// appends to that session; dead is set once the entry left the map.
type entry struct {
	mu      sync.Mutex
	session chat.Session
	dead    bool
}

// Store keeps every live conversation in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	now      func() time.Time
	newID    func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and eviction.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides how session identifiers are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore bootstraps an empty in-memory session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions a new empty conversation bound to apiKey.
func (s *Store) CreateSession(_ context.Context, apiKey string) (chat.Session, error) {
	now := s.now()
	session := chat.Session{
		ID:          s.newID(),
		CreatedAt:   now,
		LastUpdated: now,
		APIKey:      apiKey,
		Messages:    make([]chat.Message, 0, 16),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return chat.Session{}, ErrIDCollision
	}
	s.sessions[session.ID] = &entry{session: session}

	return session.Clone(), nil
}

// GetSession returns a snapshot of the session identified by id.
func (s *Store) GetSession(_ context.Context, id string) (chat.Session, error) {
	e, ok := s.lookup(id)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// ListSessions returns snapshots of all live sessions in no particular order.
func (s *Store) ListSessions(_ context.Context) []chat.Session {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]chat.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.dead {
			out = append(out, e.session.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

// AddMessage appends a turn to the session history and refreshes its
// activity timestamp. The returned session reflects the append.
func (s *Store) AddMessage(_ context.Context, id, content string, role chat.Role, reasoning *string) (chat.Session, error) {
	if !role.Valid() {
		return chat.Session{}, ErrInvalidRole
	}

	e, ok := s.lookup(id)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return chat.Session{}, ErrSessionNotFound
	}

	ts := s.now()
	if ts.Before(e.session.LastUpdated) {
		ts = e.session.LastUpdated
	}

	msg := chat.Message{
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}
	if reasoning != nil {
		copied := *reasoning
		msg.ReasoningContent = &copied
	}

	e.session.Messages = append(e.session.Messages, msg)
	e.session.LastUpdated = ts

	return e.session.Clone(), nil
}

// EvictOlderThan drops every session whose last activity is strictly older
// than now-maxAge and reports how many were removed.
func (s *Store) EvictOlderThan(_ context.Context, maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		if e.session.LastUpdated.Before(cutoff) {
			e.dead = true
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}
