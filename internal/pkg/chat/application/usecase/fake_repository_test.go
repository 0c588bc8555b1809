package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
)

// memRepo is an in-memory ChatRepository with the same uniqueness and
// foreign key rules as the Postgres schema.
type memRepo struct {
	mu         sync.Mutex
	users      map[string]bool // nil accepts any user id
	convs      map[string]chat.Conversation
	directKeys map[string]string
	members    map[string]map[string]chat.Member
	msgs       map[string][]chat.Message
	seq        int64

	touchErr      error
	saveErr       error
	isMemberCalls int
}

var _ repository.ChatRepository = (*memRepo)(nil)

func newMemRepo(users ...string) *memRepo {
	r := &memRepo{
		convs:      map[string]chat.Conversation{},
		directKeys: map[string]string{},
		members:    map[string]map[string]chat.Member{},
		msgs:       map[string][]chat.Message{},
	}
	if len(users) > 0 {
		r.users = map[string]bool{}
		for _, u := range users {
			r.users[u] = true
		}
	}
	return r
}

func (r *memRepo) userExists(id string) bool {
	return r.users == nil || r.users[id]
}

func (r *memRepo) GetConversation(_ context.Context, id string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memRepo) FindDirectConversations(_ context.Context, a, b string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, c := range r.convs {
		if c.IsGroup {
			continue
		}
		m := r.members[id]
		_, hasA := m[a]
		_, hasB := m[b]
		if len(m) == 2 && hasA && hasB {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRepo) CreateDirectConversation(_ context.Context, c chat.Conversation, a, b string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.directKeys[*c.DirectKey]; ok {
		return existing, false, nil
	}
	if !r.userExists(a) || !r.userExists(b) {
		return "", false, repository.ErrNotFound
	}
	r.convs[c.ID] = c
	r.directKeys[*c.DirectKey] = c.ID
	r.members[c.ID] = map[string]chat.Member{
		a: chat.NewMember(c.ID, a, chat.RoleMember, c.CreatedAt),
		b: chat.NewMember(c.ID, b, chat.RoleMember, c.CreatedAt),
	}
	return c.ID, true, nil
}

func (r *memRepo) CreateGroupConversation(_ context.Context, c chat.Conversation, members []chat.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range members {
		if !r.userExists(m.UserID) {
			return repository.ErrNotFound
		}
	}
	r.convs[c.ID] = c
	r.members[c.ID] = map[string]chat.Member{}
	for _, m := range members {
		r.members[c.ID][m.UserID] = m
	}
	return nil
}

// addRawConversation bypasses the direct key guard to simulate legacy duplicates.
func (r *memRepo) addRawConversation(id string, users ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.convs[id] = chat.Conversation{ID: id, CreatedAt: now, UpdatedAt: now}
	r.members[id] = map[string]chat.Member{}
	for _, u := range users {
		r.members[id][u] = chat.NewMember(id, u, chat.RoleMember, now)
	}
}

func (r *memRepo) IsMember(_ context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isMemberCalls++
	_, ok := r.members[conversationID][userID]
	return ok, nil
}

func (r *memRepo) ListMemberIDs(_ context.Context, conversationID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.members[conversationID]))
	for id := range r.members[conversationID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memRepo) ListConversationsForUser(_ context.Context, userID string) ([]chat.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []chat.ConversationSummary{}
	for id, m := range r.members {
		if _, ok := m[userID]; !ok {
			continue
		}
		s := chat.ConversationSummary{Conversation: r.convs[id]}
		for uid := range m {
			s.Members = append(s.Members, chat.User{ID: uid})
		}
		sort.Slice(s.Members, func(i, j int) bool { return s.Members[i].ID < s.Members[j].ID })
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memRepo) SaveMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return chat.Message{}, r.saveErr
	}
	if _, ok := r.members[m.ConversationID][m.SenderID]; !ok {
		return chat.Message{}, repository.ErrNotFound
	}
	for _, list := range r.msgs {
		for _, existing := range list {
			if existing.ID == m.ID {
				return chat.Message{}, fmt.Errorf("duplicate message id %s", m.ID)
			}
		}
	}
	r.seq++
	m.Seq = r.seq
	r.msgs[m.ConversationID] = append(r.msgs[m.ConversationID], m)
	return m, nil
}

func (r *memRepo) GetMessage(_ context.Context, conversationID, messageID string) (*chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs[conversationID] {
		if m.ID == messageID {
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) SoftDeleteMessage(_ context.Context, conversationID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.msgs[conversationID] {
		if m.ID == messageID {
			r.msgs[conversationID][i].IsDeleted = true
			r.msgs[conversationID][i].UpdatedAt = at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memRepo) TouchConversation(_ context.Context, conversationID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.touchErr != nil {
		return r.touchErr
	}
	c, ok := r.convs[conversationID]
	if !ok {
		return repository.ErrNotFound
	}
	if at.After(c.UpdatedAt) {
		c.UpdatedAt = at
		r.convs[conversationID] = c
	}
	return nil
}

func (r *memRepo) ListMessages(_ context.Context, conversationID string, before *chat.Cursor, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := append([]chat.Message(nil), r.msgs[conversationID]...)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].Seq > all[j].Seq
	})
	out := make([]chat.Message, 0, limit)
	for _, m := range all {
		if before != nil && !before.After(m) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memRepo) conversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

// stepClock returns a time that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}
