package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxContentLength bounds message text, counted in characters after trimming.
const MaxContentLength = 4000

// MessageType represents the kind of message content
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeAudio MessageType = "audio"
	MessageTypeFile  MessageType = "file"
)

// ParseMediaType maps a client supplied media type onto a MessageType.
func ParseMediaType(s string) (MessageType, bool) {
	switch MessageType(strings.ToLower(strings.TrimSpace(s))) {
	case MessageTypeImage:
		return MessageTypeImage, true
	case MessageTypeVideo:
		return MessageTypeVideo, true
	case MessageTypeAudio:
		return MessageTypeAudio, true
	case MessageTypeFile:
		return MessageTypeFile, true
	}
	return "", false
}

// Media groups the optional media reference fields of a message.
type Media struct {
	URL       *string `db:"media_url"`
	Thumbnail *string `db:"media_thumbnail"`
	Size      *string `db:"media_size"`
	Duration  *string `db:"media_duration"`
	MimeType  *string `db:"mime_type"`
}

// Message is an immutable log entry in a conversation. Only UpdatedAt and
// IsDeleted change after creation.
type Message struct {
	ID             string      `db:"id"`
	Seq            int64       `db:"seq"`
	ConversationID string      `db:"conversation_id"`
	SenderID       string      `db:"sender_id"`
	Content        *string     `db:"content"`
	MsgType        MessageType `db:"message_type"`
	Media          Media
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	IsDeleted      bool      `db:"is_deleted"`
}

// Cursor returns the keyset position of the message.
func (m Message) Cursor() Cursor {
	return Cursor{CreatedAt: m.CreatedAt, Seq: m.Seq}
}

// Tombstone strips content and media from a soft-deleted message.
func (m Message) Tombstone() Message {
	if !m.IsDeleted {
		return m
	}
	m.Content = nil
	m.Media = Media{}
	return m
}

// Draft is unvalidated message input.
type Draft struct {
	Content   *string
	MediaURL  *string
	MediaType *string
	Media     Media
}

// Validate normalizes the draft: content is trimmed (blank becomes nil) and the
// message type is derived from the media type. The draft is not modified.
func (d Draft) Validate() (content *string, media Media, msgType MessageType, err error) {
	content = trimmed(d.Content)
	media = d.Media
	media.URL = trimmed(d.MediaURL)

	if content == nil && media.URL == nil {
		return nil, Media{}, "", ErrEmptyMessage
	}
	if content != nil && utf8.RuneCountInString(*content) > MaxContentLength {
		return nil, Media{}, "", ErrContentTooLong
	}

	msgType = MessageTypeText
	if media.URL != nil {
		mt := trimmed(d.MediaType)
		if mt == nil {
			return nil, Media{}, "", ErrMediaTypeRequired
		}
		parsed, ok := ParseMediaType(*mt)
		if !ok {
			return nil, Media{}, "", ErrUnknownMediaType
		}
		msgType = parsed
	} else {
		media = Media{}
	}
	return content, media, msgType, nil
}

// NewMessage validates d and returns a message ready to persist.
func NewMessage(id, conversationID, senderID string, d Draft, now time.Time) (*Message, error) {
	if conversationID == "" || senderID == "" {
		return nil, ErrMissingTarget
	}
	content, media, msgType, err := d.Validate()
	if err != nil {
		return nil, err
	}
	// Postgres keeps microseconds; truncate so the stored row round-trips exactly.
	ts := now.UTC().Truncate(time.Microsecond)
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MsgType:        msgType,
		Media:          media,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
