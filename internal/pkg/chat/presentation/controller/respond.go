package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ubokutom222/whatsappclone/internal/infrastructure/auth"
	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

const defaultRequestTimeout = 3 * time.Second

// Responder writes use case errors as JSON. Internal causes are logged and
// only echoed to the client when Debug is set.
// Timeout bounds the use case work of one HTTP request.
type Responder struct {
	Log     *zap.Logger
	Debug   bool
	Timeout time.Duration
}

func NewResponder(log *zap.Logger, debug bool, timeout time.Duration) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Responder{Log: log, Debug: debug, Timeout: timeout}
}

// Status maps an error onto an HTTP status and a stable error code.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// Message returns the client-facing text for err.
func (r *Responder) Message(err error) string {
	status, _ := Status(err)
	if status == http.StatusInternalServerError && !r.Debug {
		return "internal error"
	}
	return err.Error()
}

func (r *Responder) Error(c *gin.Context, err error) {
	status, code := Status(err)
	if status == http.StatusInternalServerError {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		}
		// cause only in development
		if r.Debug {
			fields = append(fields, zap.Error(err))
		}
		r.Log.Error("request failed", fields...)
	}
	c.JSON(status, gin.H{"error": r.Message(err), "code": code})
}

// BadRequest reports a malformed request body or query.
func (r *Responder) BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}

// sessionUser returns the authenticated user id or aborts with 401.
func sessionUser(c *gin.Context) (string, bool) {
	s, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": "unauthorized"})
		return "", false
	}
	return s.UserID, true
}

func messageJSON(m chat.Message) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"content":         m.Content,
		"message_type":    m.MsgType,
		"media_url":       m.Media.URL,
		"media_thumbnail": m.Media.Thumbnail,
		"media_size":      m.Media.Size,
		"media_duration":  m.Media.Duration,
		"mime_type":       m.Media.MimeType,
		"created_at":      m.CreatedAt,
		"updated_at":      m.UpdatedAt,
		"is_deleted":      m.IsDeleted,
	}
}

func userJSON(u chat.User) gin.H {
	return gin.H{
		"id":             u.ID,
		"name":           u.Name,
		"email":          u.Email,
		"email_verified": u.EmailVerified,
		"image":          u.Image,
		"created_at":     u.CreatedAt,
		"updated_at":     u.UpdatedAt,
	}
}
