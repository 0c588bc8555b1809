package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	cport "github.com/Ubokutom222/whatsappclone/internal/infrastructure/cache/port"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// MembershipChecker answers "may this user act in this conversation".
// Positive answers are cached; memberships are never revoked by this service.
type MembershipChecker struct {
	Repo  repository.ChatRepository
	Cache cport.Cache // optional
	TTL   time.Duration
	Log   *zap.Logger
}

func NewMembershipChecker(repo repository.ChatRepository, cache cport.Cache, ttl time.Duration, log *zap.Logger) *MembershipChecker {
	if log == nil {
		log = zap.NewNop()
	}
	return &MembershipChecker{Repo: repo, Cache: cache, TTL: ttl, Log: log}
}

func membershipKey(conversationID, userID string) string {
	return "chat:member:" + conversationID + ":" + userID
}

// Require returns nil for a member, ErrNotFound when the conversation does not
// exist and ErrForbidden otherwise.
func (m *MembershipChecker) Require(ctx context.Context, conversationID, userID string) error {
	key := membershipKey(conversationID, userID)
	if m.Cache != nil {
		if v, err := m.Cache.Get(ctx, key); err == nil && v == "1" {
			return nil
		} else if err != nil && !errors.Is(err, cport.ErrMiss) {
			m.Log.Debug("membership cache read failed", zap.Error(err))
		}
	}

	ok, err := m.Repo.IsMember(ctx, conversationID, userID)
	if err != nil {
		return persistenceErr(err)
	}
	if ok {
		if m.Cache != nil {
			if err := m.Cache.Set(ctx, key, "1", m.TTL); err != nil {
				m.Log.Debug("membership cache write failed", zap.Error(err))
			}
		}
		return nil
	}

	if _, err := m.Repo.GetConversation(ctx, conversationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("conversation")
		}
		return persistenceErr(err)
	}
	return ErrForbidden
}
