package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

type DeleteMessageController struct {
	UC   *usecase.DeleteMessageUseCase
	resp *Responder
}

func NewDeleteMessageController(uc *usecase.DeleteMessageUseCase, resp *Responder) *DeleteMessageController {
	return &DeleteMessageController{UC: uc, resp: resp}
}

func (h *DeleteMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.DeleteMessageInput{
			ConversationID: c.Param("conversationId"),
			MessageID:      c.Param("messageId"),
			UserID:         userID,
		})
		if err != nil {
			h.resp.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, messageJSON(*msg))
	}
}
