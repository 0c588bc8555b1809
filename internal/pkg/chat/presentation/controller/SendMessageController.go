package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// SendMessageController handles the send-message endpoint only (one controller per endpoint)
type SendMessageController struct {
	UC   *usecase.SendMessageUseCase
	resp *Responder
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, resp *Responder) *SendMessageController {
	return &SendMessageController{UC: uc, resp: resp}
}

// sendMessageRequest is the DTO for the HTTP request body and websocket "message" frames
type sendMessageRequest struct {
	ConversationID string  `json:"conversation_id"`
	RecipientID    string  `json:"recipient_id"`
	Content        *string `json:"content"`
	MediaURL       *string `json:"media_url"`
	MediaType      *string `json:"media_type"`
	MediaThumbnail *string `json:"media_thumbnail"`
	MediaSize      *string `json:"media_size"`
	MediaDuration  *string `json:"media_duration"`
	MimeType       *string `json:"mime_type"`
}

func (r sendMessageRequest) input(senderID string) usecase.SendMessageInput {
	return usecase.SendMessageInput{
		SenderID:       senderID,
		ConversationID: r.ConversationID,
		RecipientID:    r.RecipientID,
		Draft: chat.Draft{
			Content:   r.Content,
			MediaURL:  r.MediaURL,
			MediaType: r.MediaType,
			Media: chat.Media{
				Thumbnail: r.MediaThumbnail,
				Size:      r.MediaSize,
				Duration:  r.MediaDuration,
				MimeType:  r.MimeType,
			},
		},
	}
}

// Handle stores the message and returns it as persisted. Realtime delivery
// happens after the response is decided and never affects it.
func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.resp.BadRequest(c, err.Error())
			return
		}
		if id := c.Param("conversationId"); id != "" {
			req.ConversationID = id
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		msg, err := h.UC.Execute(ctx, req.input(userID))
		if err != nil {
			h.resp.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, messageJSON(*msg))
	}
}
