package models

import "strings"

// Mode selects which response strategy handles a message.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeWebSearch Mode = "web_search"
	ModeRAG       Mode = "rag"
)

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeChat, ModeWebSearch, ModeRAG:
		return true
	}
	return false
}

// ParseMode normalizes s and returns the matching mode, if any.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// RouteDecision is the router's verdict for a single message.
// It is computed per request and never persisted.
type RouteDecision struct {
	Mode        Mode
	Explanation string
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of a session's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
