package chat

import "time"

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single immutable turn of a conversation.
type Message struct {
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	Timestamp        time.Time `json:"timestamp"`
	ReasoningContent *string   `json:"reasoning_content"`
}

func (m Message) clone() Message {
	if m.ReasoningContent != nil {
		reasoning := *m.ReasoningContent
		m.ReasoningContent = &reasoning
	}
	return m
}
