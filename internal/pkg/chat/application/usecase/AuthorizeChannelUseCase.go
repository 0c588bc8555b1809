package usecase

import (
	"context"
	"fmt"
	"strings"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
)

// ChannelTokenIssuer signs subscription grants bound to a user, socket and channel.
type ChannelTokenIssuer interface {
	Issue(userID, socketID, channel string) (string, error)
}

type AuthorizeChannelInput struct {
	UserID   string
	SocketID string
	Channel  string
}

// AuthorizeChannelUseCase grants a subscription to a conversation channel to
// members of that conversation only.
type AuthorizeChannelUseCase struct {
	Members *MembershipChecker
	Tokens  ChannelTokenIssuer
}

func NewAuthorizeChannelUseCase(members *MembershipChecker, tokens ChannelTokenIssuer) *AuthorizeChannelUseCase {
	return &AuthorizeChannelUseCase{Members: members, Tokens: tokens}
}

func (uc *AuthorizeChannelUseCase) Execute(ctx context.Context, in AuthorizeChannelInput) (string, error) {
	if strings.TrimSpace(in.SocketID) == "" {
		return "", fmt.Errorf("%w: socket_id is required", ErrInvalidRequest)
	}
	convID, ok := chat.ConversationFromChannel(in.Channel)
	if !ok {
		return "", chat.ErrUnsupportedChannel
	}
	if err := uc.Members.Require(ctx, convID, in.UserID); err != nil {
		return "", err
	}
	token, err := uc.Tokens.Issue(in.UserID, in.SocketID, in.Channel)
	if err != nil {
		return "", fmt.Errorf("sign channel token: %w", err)
	}
	return token, nil
}
