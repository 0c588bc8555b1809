package usecase

import (
	"context"
	"errors"
	"time"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

type DeleteMessageInput struct {
	ConversationID string
	MessageID      string
	UserID         string
}

// DeleteMessageUseCase soft-deletes a message. Only its sender may delete it;
// deleting twice is a no-op.
type DeleteMessageUseCase struct {
	Repo    repository.ChatRepository
	Members *MembershipChecker
	Now     func() time.Time
}

func NewDeleteMessageUseCase(repo repository.ChatRepository, members *MembershipChecker) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo, Members: members, Now: time.Now}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" || in.MessageID == "" {
		return nil, chat.ErrMissingTarget
	}
	if err := uc.Members.Require(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}

	msg, err := uc.Repo.GetMessage(ctx, in.ConversationID, in.MessageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("message")
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	if msg.SenderID != in.UserID {
		return nil, ErrForbidden
	}
	if msg.IsDeleted {
		deleted := msg.Tombstone()
		return &deleted, nil
	}

	at := uc.Now().UTC().Truncate(time.Microsecond)
	if err := uc.Repo.SoftDeleteMessage(ctx, in.ConversationID, in.MessageID, at); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("message")
		}
		return nil, persistenceErr(err)
	}
	msg.IsDeleted = true
	msg.UpdatedAt = at
	deleted := msg.Tombstone()
	return &deleted, nil
}
