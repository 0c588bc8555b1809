package usecase

import (
	"context"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// GetMessagesInput requests one page of history. Limit 0 means the default
// page size. Cursor is the opaque value returned as NextCursor by the
// previous page.
type GetMessagesInput struct {
	ConversationID string
	UserID         string
	Limit          int
	Cursor         string
}

// MessagePage is one page of history, newest first. NextCursor is nil at the
// end of history.
type MessagePage struct {
	Messages   []chat.Message
	NextCursor *string
}

type GetMessagesUseCase struct {
	Repo    repository.ChatRepository
	Members *MembershipChecker
}

func NewGetMessagesUseCase(repo repository.ChatRepository, members *MembershipChecker) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo, Members: members}
}

// Execute fetches limit+1 rows; the extra row only signals that more history
// exists. NextCursor is the position of the oldest message returned, so the
// next page starts strictly after it and nothing is skipped.
func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) (*MessagePage, error) {
	if in.ConversationID == "" {
		return nil, chat.ErrMissingTarget
	}
	limit := in.Limit
	if limit == 0 {
		limit = chat.DefaultPageSize
	}
	if limit < chat.MinPageSize || limit > chat.MaxPageSize {
		return nil, chat.ErrInvalidPageSize
	}
	var before *chat.Cursor
	if in.Cursor != "" {
		c, err := chat.ParseCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
		before = &c
	}

	if err := uc.Members.Require(ctx, in.ConversationID, in.UserID); err != nil {
		return nil, err
	}

	rows, err := uc.Repo.ListMessages(ctx, in.ConversationID, before, limit+1)
	if err != nil {
		return nil, persistenceErr(err)
	}

	page := &MessagePage{Messages: make([]chat.Message, 0, limit)}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, m := range rows {
		page.Messages = append(page.Messages, m.Tombstone())
	}
	if hasMore {
		next := rows[len(rows)-1].Cursor().String()
		page.NextCursor = &next
	}
	return page, nil
}
