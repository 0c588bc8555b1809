package usecase

import (
	"context"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// ListConversationsUseCase returns the caller's conversations, most recent activity first.
type ListConversationsUseCase struct {
	Repo repository.ChatRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if userID == "" {
		return nil, chat.ErrMissingTarget
	}
	list, err := uc.Repo.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return list, nil
}
