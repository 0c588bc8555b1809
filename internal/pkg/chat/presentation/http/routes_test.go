package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/auth"
	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/realtime"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/notifier"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
	repository "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/persistence/repository/port"
	userrepo "github.com/Ubokutom222/whatsappclone/internal/repository/port"
)

// stubRepo implements the parts of the store the routes touch. Calling any
// other method panics through the nil embedded interface.
type stubRepo struct {
	repository.ChatRepository

	mu       sync.Mutex
	members  map[string][]string // conversation -> users
	messages []chat.Message
	saveErr  error
	saves    int
}

func newStubRepo() *stubRepo {
	return &stubRepo{members: map[string][]string{"c1": {"alice", "bob"}}}
}

func (r *stubRepo) GetConversation(_ context.Context, id string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[id]; !ok {
		return nil, repository.ErrNotFound
	}
	return &chat.Conversation{ID: id}, nil
}

func (r *stubRepo) IsMember(_ context.Context, conversationID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.members[conversationID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRepo) FindDirectConversations(_ context.Context, a, b string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, users := range r.members {
		if len(users) == 2 && ((users[0] == a && users[1] == b) || (users[0] == b && users[1] == a)) {
			return []string{id}, nil
		}
	}
	return nil, nil
}

func (r *stubRepo) CreateDirectConversation(_ context.Context, c chat.Conversation, a, b string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[c.ID] = []string{a, b}
	return c.ID, true, nil
}

func (r *stubRepo) SaveMessage(_ context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return chat.Message{}, r.saveErr
	}
	m.Seq = int64(len(r.messages) + 1)
	r.messages = append(r.messages, m)
	return m, nil
}

func (r *stubRepo) TouchConversation(context.Context, string, time.Time) error { return nil }

func (r *stubRepo) ListMessages(_ context.Context, conversationID string, _ *chat.Cursor, limit int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Message
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if r.messages[i].ConversationID == conversationID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

type stubUsers struct{}

func (stubUsers) FindByID(_ context.Context, id string) (*chat.User, error) {
	if id == "alice" {
		return &chat.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}, nil
	}
	return nil, userrepo.ErrUserNotFound
}

func (stubUsers) List(context.Context) ([]chat.User, error) {
	return []chat.User{{ID: "alice", Name: "Alice"}, {ID: "bob", Name: "Bob"}}, nil
}

type testServer struct {
	engine   *gin.Engine
	repo     *stubRepo
	verifier *auth.Verifier
	notifier *notifier.InlineNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newStubRepo()
	verifier := auth.NewVerifier("test-secret")
	channelTokens := auth.NewChannelTokens("test-secret", time.Minute)
	router := realtime.NewRouter()
	t.Cleanup(router.Close)

	log := zap.NewNop()
	members := usecase.NewMembershipChecker(repo, nil, 0, log)
	resolver := usecase.NewResolveConversationUseCase(repo, members, log)
	writer := usecase.NewWriteMessageUseCase(repo, log)
	n := notifier.NewInlineNotifier(notifier.NewDeliverer(log, notifier.Sink{Name: "local", Publisher: router}), time.Second, log)

	engine := gin.New()
	RegisterRoutes(engine.Group("/api/v1"), Deps{
		Log:               log,
		Tokens:            verifier,
		Router:            router,
		ChannelTokens:     channelTokens,
		SendMessage:       usecase.NewSendMessageUseCase(resolver, writer, n),
		GetMessages:       usecase.NewGetMessagesUseCase(repo, members),
		DeleteMessage:     usecase.NewDeleteMessageUseCase(repo, members),
		StartConversation: usecase.NewStartConversationUseCase(repo, resolver),
		ListConversations: usecase.NewListConversationsUseCase(repo),
		ListUsers:         usecase.NewListUsersUseCase(stubUsers{}),
		GetSession:        usecase.NewGetSessionUseCase(stubUsers{}),
		AuthorizeChannel:  usecase.NewAuthorizeChannelUseCase(members, channelTokens),
	})
	return &testServer{engine: engine, repo: repo, verifier: verifier, notifier: n}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		tok, err := s.verifier.IssueAccessToken(user, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_AccessTokenQueryFallback(t *testing.T) {
	s := newTestServer(t)
	tok, err := s.verifier.IssueAccessToken("alice", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session?access_token="+tok, nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
}

func TestSendMessage_ToRecipientCreatesConversation(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/messages", "alice", gin.H{"recipient_id": "carol", "content": " hi "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "hi", body["content"])
	assert.Equal(t, "alice", body["sender_id"])
	assert.Equal(t, "text", body["message_type"])
	assert.NotEmpty(t, body["id"])
	assert.NotEqual(t, "c1", body["conversation_id"])
	s.notifier.Wait()
}

func TestSendMessage_MediaWithoutTypeIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/conversations/c1/messages", "alice", gin.H{"media_url": "http://x/y.png"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", body["code"])
	assert.Equal(t, 0, s.repo.saves)
}

func TestSendMessage_NonMemberIsForbidden(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/v1/messages", "mallory", gin.H{"conversation_id": "c1", "content": "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", body["code"])
}

func TestSendMessage_StoreFailureIsOpaque(t *testing.T) {
	s := newTestServer(t)
	s.repo.saveErr = errors.New("pq: password authentication failed for user chat")

	w, body := s.do(t, http.MethodPost, "/api/v1/messages", "alice", gin.H{"conversation_id": "c1", "content": "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", body["error"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetMessages(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/v1/messages", "alice", gin.H{"conversation_id": "c1", "content": "one"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/v1/messages", "bob", gin.H{"conversation_id": "c1", "content": "two"})
	require.Equal(t, http.StatusCreated, w.Code)
	s.notifier.Wait()

	w, body := s.do(t, http.MethodGet, "/api/v1/conversations/c1/messages?limit=1", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "two", msgs[0].(map[string]any)["content"])
	assert.NotNil(t, body["next_cursor"])

	w, body = s.do(t, http.MethodGet, "/api/v1/conversations/c1/messages", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["messages"], 2)
	assert.Nil(t, body["next_cursor"])
}

func TestGetMessages_BadInput(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{"limit=abc", "limit=0", "limit=51", "cursor=yesterday"} {
		w, _ := s.do(t, http.MethodGet, "/api/v1/conversations/c1/messages?"+q, "alice", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}

	w, _ := s.do(t, http.MethodGet, "/api/v1/conversations/c1/messages", "mallory", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/conversations/nope/messages", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChannelAuth(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/v1/realtime/auth", "alice", gin.H{"socket_id": "s1", "channel_name": "private-conversation-c1"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := body["auth"].(string)
	require.NotEmpty(t, token)
	assert.NoError(t, auth.NewChannelTokens("test-secret", time.Minute).Verify(token, "alice", "s1", "private-conversation-c1"))

	w, _ = s.do(t, http.MethodPost, "/api/v1/realtime/auth", "mallory", gin.H{"socket_id": "s1", "channel_name": "private-conversation-c1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/realtime/auth", "alice", gin.H{"channel_name": "private-conversation-c1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/api/v1/users", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["users"], 2)
}

func TestBearer(t *testing.T) {
	assert.Equal(t, "abc", bearer("Bearer abc"))
	assert.Equal(t, "abc", bearer("bearer  abc "))
	assert.Equal(t, "", bearer("Basic abc"))
	assert.Equal(t, "", bearer(""))
}
