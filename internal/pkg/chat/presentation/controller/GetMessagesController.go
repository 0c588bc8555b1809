package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// GetMessagesController handles paging through a conversation's history (one controller per endpoint)
type GetMessagesController struct {
	UC   *usecase.GetMessagesUseCase
	resp *Responder
}

func NewGetMessagesController(uc *usecase.GetMessagesUseCase, resp *Responder) *GetMessagesController {
	return &GetMessagesController{UC: uc, resp: resp}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		convID := c.Param("conversationId")
		if convID == "" {
			h.resp.BadRequest(c, "conversationId is required")
			return
		}

		limit := chat.DefaultPageSize
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				h.resp.BadRequest(c, "limit must be an integer")
				return
			}
			if n == 0 {
				// zero would mean "default" to the use case
				h.resp.Error(c, chat.ErrInvalidPageSize)
				return
			}
			limit = n
		}

		in := usecase.GetMessagesInput{
			ConversationID: convID,
			UserID:         userID,
			Limit:          limit,
			Cursor:         c.Query("cursor"),
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		page, err := h.UC.Execute(ctx, in)
		if err != nil {
			h.resp.Error(c, err)
			return
		}

		out := make([]gin.H, 0, len(page.Messages))
		for _, m := range page.Messages {
			out = append(out, messageJSON(m))
		}
		c.JSON(http.StatusOK, gin.H{
			"messages":    out,
			"next_cursor": page.NextCursor,
		})
	}
}
