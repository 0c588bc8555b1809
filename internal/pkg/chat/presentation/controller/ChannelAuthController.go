package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// ChannelAuthController grants channel subscription tokens to conversation members.
type ChannelAuthController struct {
	UC   *usecase.AuthorizeChannelUseCase
	resp *Responder
}

func NewChannelAuthController(uc *usecase.AuthorizeChannelUseCase, resp *Responder) *ChannelAuthController {
	return &ChannelAuthController{UC: uc, resp: resp}
}

type channelAuthRequest struct {
	SocketID    string `json:"socket_id" form:"socket_id" binding:"required"`
	ChannelName string `json:"channel_name" form:"channel_name" binding:"required"`
}

// Handle accepts JSON or form bodies.
func (h *ChannelAuthController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		var req channelAuthRequest
		if err := c.ShouldBind(&req); err != nil {
			h.resp.BadRequest(c, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		token, err := h.UC.Execute(ctx, usecase.AuthorizeChannelInput{
			UserID:   userID,
			SocketID: req.SocketID,
			Channel:  req.ChannelName,
		})
		if err != nil {
			h.resp.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"auth": token, "channel_name": req.ChannelName})
	}
}
