package chat

import (
	"strings"
	"time"
)

// Conversation is either a 1:1 thread (IsGroup=false, DirectKey set) or a named group.
// UpdatedAt moves forward on every new message and orders conversation lists.
type Conversation struct {
	ID        string    `db:"id"`
	IsGroup   bool      `db:"is_group"`
	Name      *string   `db:"name"`
	DirectKey *string   `db:"direct_key"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ConversationSummary is a conversation together with its current members.
type ConversationSummary struct {
	Conversation
	Members []User
}

// DirectKey normalizes an unordered user pair so (a,b) and (b,a) map to the same key.
func DirectKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// NewDirectConversation builds a non-group conversation for the pair.
func NewDirectConversation(id, a, b string, now time.Time) (Conversation, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return Conversation{}, ErrMissingTarget
	}
	if a == b {
		return Conversation{}, ErrSelfConversation
	}
	key := DirectKey(a, b)
	return Conversation{
		ID:        id,
		IsGroup:   false,
		DirectKey: &key,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewGroupConversation builds a named group conversation.
func NewGroupConversation(id string, name *string, now time.Time) (Conversation, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return Conversation{}, ErrGroupNameRequired
	}
	trimmed := strings.TrimSpace(*name)
	return Conversation{
		ID:        id,
		IsGroup:   true,
		Name:      &trimmed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
