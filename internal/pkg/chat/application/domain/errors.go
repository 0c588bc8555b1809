package chat

import (
	"errors"
	"fmt"
)

// ErrInvalid is the root of every input validation failure in the chat domain.
// Callers classify with errors.Is(err, ErrInvalid).
var ErrInvalid = errors.New("chat: invalid request")

// Domain-level errors for chat behaviors
var (
	ErrNotParticipant = errors.New("chat: user is not a participant in the conversation")

	ErrMissingTarget      = fmt.Errorf("%w: conversation_id or recipient_id is required", ErrInvalid)
	ErrSelfConversation   = fmt.Errorf("%w: recipient must be a different user", ErrInvalid)
	ErrEmptyMessage       = fmt.Errorf("%w: message must contain content or media", ErrInvalid)
	ErrContentTooLong     = fmt.Errorf("%w: content exceeds %d characters", ErrInvalid, MaxContentLength)
	ErrMediaTypeRequired  = fmt.Errorf("%w: media_type is required when media_url is set", ErrInvalid)
	ErrUnknownMediaType   = fmt.Errorf("%w: unsupported media_type", ErrInvalid)
	ErrGroupNameRequired  = fmt.Errorf("%w: group conversations require a name", ErrInvalid)
	ErrNotEnoughMembers   = fmt.Errorf("%w: a conversation needs at least two members", ErrInvalid)
	ErrInvalidCursor      = fmt.Errorf("%w: malformed cursor", ErrInvalid)
	ErrInvalidPageSize    = fmt.Errorf("%w: limit must be between %d and %d", ErrInvalid, MinPageSize, MaxPageSize)
	ErrUnsupportedChannel = fmt.Errorf("%w: unsupported channel", ErrInvalid)
)
