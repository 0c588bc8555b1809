package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// StartConversationController handles conversation creation
// One controller per endpoint
type StartConversationController struct {
	UC   *usecase.StartConversationUseCase
	resp *Responder
}

func NewStartConversationController(uc *usecase.StartConversationUseCase, resp *Responder) *StartConversationController {
	return &StartConversationController{UC: uc, resp: resp}
}

type startConversationRequest struct {
	MemberIDs []string `json:"member_ids" binding:"required,min=1"`
	Name      *string  `json:"name"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.resp.BadRequest(c, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		res, err := h.UC.Execute(ctx, usecase.StartConversationInput{
			CreatorID: userID,
			MemberIDs: req.MemberIDs,
			Name:      req.Name,
		})
		if err != nil {
			h.resp.Error(c, err)
			return
		}

		status := http.StatusOK
		if res.Created {
			status = http.StatusCreated
		}
		c.JSON(status, gin.H{
			"conversation_id": res.ConversationID,
			"is_group":        res.IsGroup,
			"created":         res.Created,
		})
	}
}
