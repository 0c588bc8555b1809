package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// ResolveConversationInput names the target of a send: an existing
// conversation, or a recipient whose direct conversation is found or created.
type ResolveConversationInput struct {
	SenderID       string
	ConversationID string
	RecipientID    string
}

// ResolveConversationUseCase maps a send target onto a conversation id.
type ResolveConversationUseCase struct {
	Repo    repository.ChatRepository
	Members *MembershipChecker
	Log     *zap.Logger
	NewID   func() string
	Now     func() time.Time
}

func NewResolveConversationUseCase(repo repository.ChatRepository, members *MembershipChecker, log *zap.Logger) *ResolveConversationUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResolveConversationUseCase{
		Repo:    repo,
		Members: members,
		Log:     log,
		NewID:   uuid.NewString,
		Now:     time.Now,
	}
}

// Execute returns the conversation id for in. A supplied conversation id wins
// over a recipient and requires the sender to be a member.
func (uc *ResolveConversationUseCase) Execute(ctx context.Context, in ResolveConversationInput) (string, error) {
	sender := strings.TrimSpace(in.SenderID)
	if sender == "" {
		return "", fmt.Errorf("%w: sender is required", ErrInvalidRequest)
	}
	convID := strings.TrimSpace(in.ConversationID)
	recipient := strings.TrimSpace(in.RecipientID)

	switch {
	case convID != "":
		if err := uc.Members.Require(ctx, convID, sender); err != nil {
			return "", err
		}
		return convID, nil
	case recipient == "":
		return "", chat.ErrMissingTarget
	case recipient == sender:
		return "", chat.ErrSelfConversation
	}
	return uc.direct(ctx, sender, recipient)
}

func (uc *ResolveConversationUseCase) direct(ctx context.Context, sender, recipient string) (string, error) {
	ids, err := uc.Repo.FindDirectConversations(ctx, sender, recipient)
	if err != nil {
		return "", persistenceErr(err)
	}
	if len(ids) > 1 {
		metrics.DirectConversationDuplicates.Inc()
		uc.Log.Warn("multiple direct conversations for one pair",
			zap.String("user_a", sender),
			zap.String("user_b", recipient),
			zap.Strings("conversation_ids", ids),
		)
	}
	if len(ids) > 0 {
		return ids[0], nil
	}

	conv, err := chat.NewDirectConversation(uc.NewID(), sender, recipient, uc.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return "", err
	}
	id, created, err := uc.Repo.CreateDirectConversation(ctx, conv, sender, recipient)
	if errors.Is(err, repository.ErrNotFound) {
		return "", notFound("recipient")
	}
	if err != nil {
		return "", persistenceErr(err)
	}
	if created {
		metrics.ConversationsCreated.WithLabelValues("direct").Inc()
	}
	return id, nil
}
