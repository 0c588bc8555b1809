package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// WriteMessageInput is a validated-on-entry message for a resolved conversation.
type WriteMessageInput struct {
	ConversationID string
	SenderID       string
	Draft          chat.Draft
}

// WriteMessageUseCase stores a message and bumps the conversation's updated_at.
type WriteMessageUseCase struct {
	Repo  repository.ChatRepository
	Log   *zap.Logger
	NewID func() string
	Now   func() time.Time
}

func NewWriteMessageUseCase(repo repository.ChatRepository, log *zap.Logger) *WriteMessageUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &WriteMessageUseCase{Repo: repo, Log: log, NewID: uuid.NewString, Now: time.Now}
}

// Execute returns the row exactly as stored. A failed freshness bump is
// logged and counted but does not fail the write.
func (uc *WriteMessageUseCase) Execute(ctx context.Context, in WriteMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(uc.NewID(), in.ConversationID, in.SenderID, in.Draft, uc.Now())
	if err != nil {
		return nil, err
	}

	stored, err := uc.Repo.SaveMessage(ctx, *msg)
	if errors.Is(err, repository.ErrNotFound) {
		// composite key on (conversation, sender) rejected the row
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	metrics.MessagesWritten.Inc()

	if err := uc.Repo.TouchConversation(ctx, stored.ConversationID, stored.CreatedAt); err != nil {
		metrics.FreshnessFailures.Inc()
		uc.Log.Warn("conversation updated_at bump failed, retryable",
			zap.String("conversation_id", stored.ConversationID),
			zap.String("message_id", stored.ID),
			zap.Error(err),
		)
	}
	return &stored, nil
}
