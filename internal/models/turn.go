// ABOUTME: Turn is a single role-tagged conversation message
// ABOUTME: Core data structure for the conversation memory window
package models

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
