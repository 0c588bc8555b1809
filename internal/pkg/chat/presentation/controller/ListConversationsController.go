package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

type ListConversationsController struct {
	UC   *usecase.ListConversationsUseCase
	resp *Responder
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase, resp *Responder) *ListConversationsController {
	return &ListConversationsController{UC: uc, resp: resp}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		list, err := h.UC.Execute(ctx, userID)
		if err != nil {
			h.resp.Error(c, err)
			return
		}

		out := make([]gin.H, 0, len(list))
		for _, conv := range list {
			members := make([]gin.H, 0, len(conv.Members))
			for _, u := range conv.Members {
				members = append(members, userJSON(u))
			}
			out = append(out, gin.H{
				"id":         conv.ID,
				"is_group":   conv.IsGroup,
				"name":       conv.Name,
				"created_at": conv.CreatedAt,
				"updated_at": conv.UpdatedAt,
				"members":    members,
			})
		}
		c.JSON(http.StatusOK, gin.H{"conversations": out})
	}
}
