package usecase

import (
	"context"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/notifier"
)

// SendMessageInput carries a send request from an authenticated sender.
// Either ConversationID or RecipientID must be set.
type SendMessageInput struct {
	SenderID       string
	ConversationID string
	RecipientID    string
	Draft          chat.Draft
}

// SendMessageUseCase validates, resolves the conversation, writes the
// message and hands it to the notifier.
// One class per use case (own file)
type SendMessageUseCase struct {
	Resolver *ResolveConversationUseCase
	Writer   *WriteMessageUseCase
	Notifier notifier.Notifier
}

func NewSendMessageUseCase(resolver *ResolveConversationUseCase, writer *WriteMessageUseCase, n notifier.Notifier) *SendMessageUseCase {
	return &SendMessageUseCase{Resolver: resolver, Writer: writer, Notifier: n}
}

// Execute rejects invalid input before any write. Notification never fails the send.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	if in.ConversationID == "" && in.RecipientID == "" {
		return nil, chat.ErrMissingTarget
	}
	if _, _, _, err := in.Draft.Validate(); err != nil {
		return nil, err
	}

	convID, err := uc.Resolver.Execute(ctx, ResolveConversationInput{
		SenderID:       in.SenderID,
		ConversationID: in.ConversationID,
		RecipientID:    in.RecipientID,
	})
	if err != nil {
		return nil, err
	}

	msg, err := uc.Writer.Execute(ctx, WriteMessageInput{
		ConversationID: convID,
		SenderID:       in.SenderID,
		Draft:          in.Draft,
	})
	if err != nil {
		return nil, err
	}

	if uc.Notifier != nil {
		uc.Notifier.Notify(ctx, *msg)
	}
	return msg, nil
}
