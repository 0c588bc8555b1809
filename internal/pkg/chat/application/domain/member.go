package chat

import "time"

// MemberRole tags a membership row. Direct conversations use RoleMember for both sides.
type MemberRole string

const (
	RoleMember MemberRole = "member"
	RoleAdmin  MemberRole = "admin"
)

// Member captures a user's membership in a conversation
// Primary key: (ConversationID, UserID)
type Member struct {
	ConversationID string      `db:"conversation_id"`
	UserID         string      `db:"user_id"`
	Role           *MemberRole `db:"role"`
	JoinedAt       time.Time   `db:"joined_at"`
}

// NewMember returns a membership row joined at now.
func NewMember(conversationID, userID string, role MemberRole, now time.Time) Member {
	return Member{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           &role,
		JoinedAt:       now,
	}
}

// User is the identity record owned by the auth subsystem; read-only here.
type User struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	Email         string    `db:"email"`
	EmailVerified bool      `db:"email_verified"`
	Image         *string   `db:"image"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
