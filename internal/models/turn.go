package models

// Turn roles. The model role follows the Gemini wire convention.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system" // diagnostic log rows only, never sent upstream
)

// Turn is one message in a conversation. Immutable once created.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Conversation is the ordered turn history for one user, oldest first.
// The order is replayed verbatim to the model endpoint.
type Conversation []Turn

// Tail bounds the conversation to its last max turns, oldest dropped
// first. Already-bounded conversations are returned unchanged.
func (c Conversation) Tail(max int) Conversation {
	if max <= 0 {
		return nil
	}
	if len(c) <= max {
		return c
	}
	return c[len(c)-max:]
}

// Store maps user id -> conversation. The whole store is serialized as
// one cache value; overwrites are whole-value, last write wins.
type Store map[string]Conversation
