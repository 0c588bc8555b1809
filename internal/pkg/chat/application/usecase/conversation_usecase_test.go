package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	userrepo "github.com/Ubokutom222/whatsappclone/internal/repository/port"
)

type memUsers struct {
	users []chat.User
	err   error
}

func (m *memUsers) FindByID(_ context.Context, id string) (*chat.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, userrepo.ErrUserNotFound
}

func (m *memUsers) List(context.Context) ([]chat.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) Issue(userID, socketID, channel string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return userID + "|" + socketID + "|" + channel, nil
}

func TestStartConversation_DirectUsesGuard(t *testing.T) {
	h := newHarness()
	uc := NewStartConversationUseCase(h.repo, h.resolver)
	ctx := context.Background()

	first, err := uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"b", "a", " "}})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.False(t, first.IsGroup)

	again, err := uc.Execute(ctx, StartConversationInput{CreatorID: "b", MemberIDs: []string{"a"}})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.ConversationID, again.ConversationID)

	// the guard also serves a later send by recipient
	id, err := h.resolver.Execute(ctx, ResolveConversationInput{SenderID: "a", RecipientID: "b"})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, id)
}

func TestStartConversation_Group(t *testing.T) {
	h := newHarness()
	uc := NewStartConversationUseCase(h.repo, h.resolver)
	uc.Now = func() time.Time { return base }
	ctx := context.Background()

	_, err := uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"b", "c"}})
	assert.ErrorIs(t, err, chat.ErrGroupNameRequired)

	res, err := uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"b", "c", "b"}, Name: strPtr(" team ")})
	require.NoError(t, err)
	assert.True(t, res.IsGroup)
	assert.True(t, res.Created)

	conv, err := h.repo.GetConversation(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "team", *conv.Name)
	assert.Nil(t, conv.DirectKey)

	ids, err := h.repo.ListMemberIDs(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, chat.RoleAdmin, *h.repo.members[res.ConversationID]["a"].Role)

	// a named two-person conversation is a group, not the pair's direct thread
	named, err := uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"b"}, Name: strPtr("duo")})
	require.NoError(t, err)
	assert.True(t, named.IsGroup)
}

func TestStartConversation_Validation(t *testing.T) {
	h := newHarness("a", "b")
	uc := NewStartConversationUseCase(h.repo, h.resolver)
	ctx := context.Background()

	_, err := uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"a"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = uc.Execute(ctx, StartConversationInput{CreatorID: "a", MemberIDs: []string{"b", "ghost"}, Name: strPtr("g")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListConversations_NewestActivityFirst(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.repo.addRawConversation("old", "a", "b")
	h.repo.addRawConversation("new", "a", "c")
	h.repo.addRawConversation("other", "b", "c")

	_, err := h.send.Execute(ctx, SendMessageInput{SenderID: "a", ConversationID: "new", Draft: text("hi")})
	require.NoError(t, err)
	h.notifier.Wait()

	list, err := NewListConversationsUseCase(h.repo).Execute(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.Len(t, list[0].Members, 2)
}

func TestUsersAndSession(t *testing.T) {
	users := &memUsers{users: []chat.User{{ID: "u1", Name: "Ada"}, {ID: "u2", Name: "Bob"}}}
	ctx := context.Background()

	list, err := NewListUsersUseCase(users).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	u, err := NewGetSessionUseCase(users).Execute(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)

	_, err = NewGetSessionUseCase(users).Execute(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	users.err = errors.New("db down")
	_, err = NewListUsersUseCase(users).Execute(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestAuthorizeChannel(t *testing.T) {
	h := newHarness()
	h.repo.addRawConversation("c1", "a", "b")
	uc := NewAuthorizeChannelUseCase(h.members, fakeTokens{})
	ctx := context.Background()

	tok, err := uc.Execute(ctx, AuthorizeChannelInput{UserID: "a", SocketID: "s1", Channel: "private-conversation-c1"})
	require.NoError(t, err)
	assert.Equal(t, "a|s1|private-conversation-c1", tok)

	_, err = uc.Execute(ctx, AuthorizeChannelInput{UserID: "mallory", SocketID: "s1", Channel: "private-conversation-c1"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Execute(ctx, AuthorizeChannelInput{UserID: "a", SocketID: "s1", Channel: "presence-lobby"})
	assert.ErrorIs(t, err, chat.ErrUnsupportedChannel)

	_, err = uc.Execute(ctx, AuthorizeChannelInput{UserID: "a", Channel: "private-conversation-c1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDeleteMessage(t *testing.T) {
	h := newHarness()
	h.repo.addRawConversation("c", "a", "b")
	ids := seed(t, h, "c", 1)
	uc := NewDeleteMessageUseCase(h.repo, h.members)
	uc.Now = func() time.Time { return base.Add(time.Hour) }
	ctx := context.Background()

	_, err := uc.Execute(ctx, DeleteMessageInput{ConversationID: "c", MessageID: ids[0], UserID: "b"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Execute(ctx, DeleteMessageInput{ConversationID: "c", MessageID: "missing", UserID: "a"})
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := uc.Execute(ctx, DeleteMessageInput{ConversationID: "c", MessageID: ids[0], UserID: "a"})
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Nil(t, deleted.Content)
	assert.Equal(t, base.Add(time.Hour), deleted.UpdatedAt)

	again, err := uc.Execute(ctx, DeleteMessageInput{ConversationID: "c", MessageID: ids[0], UserID: "a"})
	require.NoError(t, err)
	assert.True(t, again.IsDeleted)
}
