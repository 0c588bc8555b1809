package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/usecase"
)

// SessionController returns the authenticated user.
type SessionController struct {
	UC   *usecase.GetSessionUseCase
	resp *Responder
}

func NewSessionController(uc *usecase.GetSessionUseCase, resp *Responder) *SessionController {
	return &SessionController{UC: uc, resp: resp}
}

func (h *SessionController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		u, err := h.UC.Execute(ctx, userID)
		if err != nil {
			h.resp.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": userJSON(*u)})
	}
}

// ListUsersController lists users to start conversations with.
type ListUsersController struct {
	UC   *usecase.ListUsersUseCase
	resp *Responder
}

func NewListUsersController(uc *usecase.ListUsersUseCase, resp *Responder) *ListUsersController {
	return &ListUsersController{UC: uc, resp: resp}
}

func (h *ListUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionUser(c); !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.resp.Timeout)
		defer cancel()

		users, err := h.UC.Execute(ctx)
		if err != nil {
			h.resp.Error(c, err)
			return
		}
		out := make([]gin.H, 0, len(users))
		for _, u := range users {
			out = append(out, userJSON(u))
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}
