package repository

import (
	"context"
	"errors"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
)

// ErrUserNotFound is returned when no user has the requested id.
var ErrUserNotFound = errors.New("user repository: not found")

// UserRepository is a read-only view over the identity subsystem's users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*chat.User, error)
	List(ctx context.Context) ([]chat.User, error)
}
