package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/realtime"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/presentation/controller"
)

// Deps are the use cases and collaborators the chat routes are built from.
type Deps struct {
	Log            *zap.Logger
	Debug          bool
	RequestTimeout time.Duration
	Tokens         TokenVerifier
	Socket         controller.SocketOptions

	Router        *realtime.Router
	ChannelTokens controller.ChannelTokenVerifier

	SendMessage       *usecase.SendMessageUseCase
	GetMessages       *usecase.GetMessagesUseCase
	DeleteMessage     *usecase.DeleteMessageUseCase
	StartConversation *usecase.StartConversationUseCase
	ListConversations *usecase.ListConversationsUseCase
	ListUsers         *usecase.ListUsersUseCase
	GetSession        *usecase.GetSessionUseCase
	AuthorizeChannel  *usecase.AuthorizeChannelUseCase
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Deps) {
	resp := controller.NewResponder(d.Log, d.Debug, d.RequestTimeout)

	sendMsgCtl := controller.NewSendMessageController(d.SendMessage, resp)
	getMsgCtl := controller.NewGetMessagesController(d.GetMessages, resp)
	deleteMsgCtl := controller.NewDeleteMessageController(d.DeleteMessage, resp)
	startCtl := controller.NewStartConversationController(d.StartConversation, resp)
	listConvCtl := controller.NewListConversationsController(d.ListConversations, resp)
	usersCtl := controller.NewListUsersController(d.ListUsers, resp)
	sessionCtl := controller.NewSessionController(d.GetSession, resp)
	channelAuthCtl := controller.NewChannelAuthController(d.AuthorizeChannel, resp)
	socketCtl := controller.NewChatSocketController(d.Router, d.SendMessage, d.ChannelTokens, resp, d.Socket)

	authed := g.Group("", Authenticate(d.Tokens))

	// GET /api/v1/session -> the authenticated user
	authed.GET("/session", sessionCtl.Handle())

	// GET /api/v1/users -> users ordered by name
	authed.GET("/users", usersCtl.Handle())

	// POST /api/v1/conversations -> open a direct or group conversation
	authed.POST("/conversations", startCtl.Handle())

	// GET /api/v1/conversations -> caller's conversations, newest activity first
	authed.GET("/conversations", listConvCtl.Handle())

	// POST /api/v1/messages -> send to conversation_id or recipient_id
	authed.POST("/messages", sendMsgCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> send into a known conversation
	authed.POST("/conversations/:conversationId/messages", sendMsgCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages?limit=&cursor= -> one page, newest first
	authed.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// DELETE /api/v1/conversations/:conversationId/messages/:messageId -> soft delete own message
	authed.DELETE("/conversations/:conversationId/messages/:messageId", deleteMsgCtl.Handle())

	// POST /api/v1/realtime/auth -> subscription token for a private conversation channel
	authed.POST("/realtime/auth", channelAuthCtl.Handle())

	// GET /api/v1/realtime/ws -> websocket endpoint for realtime chat
	authed.GET("/realtime/ws", socketCtl.Handle())
}
