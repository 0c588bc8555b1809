package repository

import (
	"context"
	"errors"
	"time"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned by adapters when a referenced row does not exist.
var ErrNotFound = errors.New("repository: not found")

// ChatRepository defines persistence operations for the chat domain.
// The store owns every row; callers hold no state between requests.
type ChatRepository interface {
	GetConversation(ctx context.Context, id string) (*chat.Conversation, error)

	// FindDirectConversations returns ids of non-group conversations whose member
	// set is exactly {a, b}, lowest id first. More than one id is an integrity violation.
	FindDirectConversations(ctx context.Context, a, b string) ([]string, error)

	// CreateDirectConversation atomically inserts c and both memberships. When
	// another conversation already holds c.DirectKey nothing is written and the
	// existing id is returned with created=false.
	CreateDirectConversation(ctx context.Context, c chat.Conversation, a, b string) (id string, created bool, err error)

	// CreateGroupConversation atomically inserts c and all members.
	CreateGroupConversation(ctx context.Context, c chat.Conversation, members []chat.Member) error

	IsMember(ctx context.Context, conversationID, userID string) (bool, error)
	ListMemberIDs(ctx context.Context, conversationID string) ([]string, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error)

	// SaveMessage inserts m and returns the row as stored (seq and timestamps included).
	SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error)
	GetMessage(ctx context.Context, conversationID, messageID string) (*chat.Message, error)
	SoftDeleteMessage(ctx context.Context, conversationID, messageID string, at time.Time) error

	// TouchConversation moves updated_at forward to at; it never moves it back.
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error

	// ListMessages returns up to limit messages newest first, strictly older than
	// before when it is non-nil.
	ListMessages(ctx context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error)
}
