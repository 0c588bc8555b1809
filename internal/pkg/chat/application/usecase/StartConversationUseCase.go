package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/metrics"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// StartConversationInput carries the required data to open a conversation.
// The creator is always a member; MemberIDs lists everyone else.
type StartConversationInput struct {
	CreatorID string
	MemberIDs []string
	Name      *string
}

// StartConversationResult reports the conversation id and whether it was new.
type StartConversationResult struct {
	ConversationID string
	IsGroup        bool
	Created        bool
}

// StartConversationUseCase opens a direct or group conversation. One other
// member and no name goes through the direct-conversation guard so a pair
// never gets two threads.
type StartConversationUseCase struct {
	Repo     repository.ChatRepository
	Resolver *ResolveConversationUseCase
	NewID    func() string
	Now      func() time.Time
}

func NewStartConversationUseCase(repo repository.ChatRepository, resolver *ResolveConversationUseCase) *StartConversationUseCase {
	return &StartConversationUseCase{Repo: repo, Resolver: resolver, NewID: uuid.NewString, Now: time.Now}
}

func (uc *StartConversationUseCase) Execute(ctx context.Context, in StartConversationInput) (*StartConversationResult, error) {
	creator := strings.TrimSpace(in.CreatorID)
	if creator == "" {
		return nil, chat.ErrMissingTarget
	}
	others := uniqueOthers(creator, in.MemberIDs)
	if len(others) == 0 {
		return nil, chat.ErrNotEnoughMembers
	}

	hasName := in.Name != nil && strings.TrimSpace(*in.Name) != ""
	if len(others) == 1 && !hasName {
		before, err := uc.Repo.FindDirectConversations(ctx, creator, others[0])
		if err != nil {
			return nil, persistenceErr(err)
		}
		id, err := uc.Resolver.Execute(ctx, ResolveConversationInput{SenderID: creator, RecipientID: others[0]})
		if err != nil {
			return nil, err
		}
		return &StartConversationResult{ConversationID: id, Created: len(before) == 0}, nil
	}

	now := uc.Now().UTC().Truncate(time.Microsecond)
	conv, err := chat.NewGroupConversation(uc.NewID(), in.Name, now)
	if err != nil {
		return nil, err
	}
	members := make([]chat.Member, 0, len(others)+1)
	members = append(members, chat.NewMember(conv.ID, creator, chat.RoleAdmin, now))
	for _, uid := range others {
		members = append(members, chat.NewMember(conv.ID, uid, chat.RoleMember, now))
	}
	if err := uc.Repo.CreateGroupConversation(ctx, conv, members); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("member")
		}
		return nil, persistenceErr(err)
	}
	metrics.ConversationsCreated.WithLabelValues("group").Inc()
	return &StartConversationResult{ConversationID: conv.ID, IsGroup: true, Created: true}, nil
}

// uniqueOthers drops blanks, duplicates and the creator, keeping input order.
func uniqueOthers(creator string, ids []string) []string {
	seen := map[string]struct{}{creator: {}}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
