package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/realtime"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// ChannelTokenVerifier checks a subscription grant issued by the channel auth endpoint.
type ChannelTokenVerifier interface {
	Verify(token, userID, socketID, channel string) error
}

// SocketOptions tunes per-connection limits.
type SocketOptions struct {
	RatePerSecond float64
	Burst         int
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
type ChatSocketController struct {
	router          *realtime.Router
	sendMessageUC   *usecase.SendMessageUseCase
	tokens          ChannelTokenVerifier
	resp            *Responder
	opts            SocketOptions
	upgrader        websocket.Upgrader
	inflightTimeout time.Duration
}

func NewChatSocketController(router *realtime.Router, send *usecase.SendMessageUseCase, tokens ChannelTokenVerifier, resp *Responder, opts SocketOptions) *ChatSocketController {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &ChatSocketController{
		router:        router,
		sendMessageUC: send,
		tokens:        tokens,
		resp:          resp,
		opts:          opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		inflightTimeout: 5 * time.Second,
	}
}

const (
	defaultReadTimeout = 60 * time.Second
	maxFrameBytes      = 1 << 20

	eventConnected    = "connected"
	eventSubscribe    = "subscribe"
	eventSubscribed   = "subscribed"
	eventUnsubscribe  = "unsubscribe"
	eventUnsubscribed = "unsubscribed"
	eventMessage      = "message"
	eventMessageSent  = "message-sent"
	eventError        = "error"
)

func send(conn *realtime.Connection, event, channel string, data any) {
	f := realtime.Frame{Event: event, Channel: channel}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return
		}
		f.Data = raw
	}
	if payload, err := json.Marshal(f); err == nil {
		_ = conn.Send(payload)
	}
}

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}

		ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response
			ctl.resp.Log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := realtime.NewConnection(userID, ws, ctl.opts.RatePerSecond, ctl.opts.Burst)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(maxFrameBytes)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		send(conn, eventConnected, "", gin.H{"socket_id": conn.ID})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.resp.Log.Debug("websocket read ended", zap.String("user_id", userID), zap.Error(err))
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			if !conn.Allow() {
				ctl.replyError(conn, "", "rate_limited", "too many frames")
				continue
			}

			var frame realtime.Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "", "invalid_request", "invalid payload")
				continue
			}
			ctl.dispatch(c.Request.Context(), conn, frame)
		}
	}
}

func (ctl *ChatSocketController) dispatch(ctx context.Context, conn *realtime.Connection, frame realtime.Frame) {
	switch frame.Event {
	case eventSubscribe:
		ctl.handleSubscribe(conn, frame)
	case eventUnsubscribe:
		ctl.handleUnsubscribe(conn, frame)
	case eventMessage:
		ctl.handleMessage(ctx, conn, frame)
	default:
		ctl.replyError(conn, frame.Channel, "unsupported_event", "unknown event")
	}
}

func (ctl *ChatSocketController) handleSubscribe(conn *realtime.Connection, frame realtime.Frame) {
	if frame.Channel == "" || frame.Auth == "" {
		ctl.replyError(conn, frame.Channel, "invalid_request", "channel and auth are required")
		return
	}
	if err := ctl.tokens.Verify(frame.Auth, conn.UserID, conn.ID, frame.Channel); err != nil {
		ctl.replyError(conn, frame.Channel, "forbidden", "subscription not authorized")
		return
	}
	if !ctl.router.Subscribe(frame.Channel, conn) {
		return
	}
	send(conn, eventSubscribed, frame.Channel, nil)
}

func (ctl *ChatSocketController) handleUnsubscribe(conn *realtime.Connection, frame realtime.Frame) {
	if frame.Channel == "" {
		ctl.replyError(conn, "", "invalid_request", "channel is required")
		return
	}
	ctl.router.Unsubscribe(frame.Channel, conn)
	send(conn, eventUnsubscribed, frame.Channel, nil)
}

func (ctl *ChatSocketController) handleMessage(ctx context.Context, conn *realtime.Connection, frame realtime.Frame) {
	var req sendMessageRequest
	if len(frame.Data) == 0 || json.Unmarshal(frame.Data, &req) != nil {
		ctl.replyError(conn, frame.Channel, "invalid_request", "message data is required")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.sendMessageUC.Execute(ctx, req.input(conn.UserID))
	if err != nil {
		_, code := Status(err)
		ctl.replyError(conn, frame.Channel, code, ctl.resp.Message(err))
		return
	}
	send(conn, eventMessageSent, frame.Channel, messageJSON(*msg))
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, channel, code, message string) {
	send(conn, eventError, channel, gin.H{"code": code, "error": message})
}
