package chat

import "time"

// Session captures a transient conversation and the credential used for its
// remote calls.
type Session struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
	APIKey      string    `json:"api_key"`
	Messages    []Message `json:"messages"`
}

// Clone returns a deep copy that shares no memory with s.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, msg := range s.Messages {
		out.Messages[i] = msg.clone()
	}
	return out
}

// Redacted returns a copy of s with the credential removed, suitable for
// rendering to clients.
func (s Session) Redacted() Session {
	out := s.Clone()
	out.APIKey = ""
	return out
}
