package model

import "time"

// Role is the speaker of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnMetadata is attached to every turn at creation
type TurnMetadata struct {
	Products []string    `json:"products"`
	Intent   *IntentKind `json:"intent,omitempty"`
}

// ConversationTurn is one immutable message in a session's memory
type ConversationTurn struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Metadata  TurnMetadata `json:"metadata"`
}
