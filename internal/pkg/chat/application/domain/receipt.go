package chat

import "time"

// Receipt records per-recipient delivery and read state of a message.
// Primary key: (MessageID, UserID)
type Receipt struct {
	MessageID   string     `db:"message_id"`
	UserID      string     `db:"user_id"`
	IsDelivered bool       `db:"is_delivered"`
	DeliveredAt *time.Time `db:"delivered_at"`
	IsRead      bool       `db:"is_read"`
	ReadAt      *time.Time `db:"read_at"`
}
