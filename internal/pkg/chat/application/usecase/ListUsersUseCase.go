package usecase

import (
	"context"
	"errors"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
	userrepo "github.com/Ubokutom222/whatsappclone/internal/repository/port"
)

// ListUsersUseCase lists every known user ordered by display name.
type ListUsersUseCase struct {
	Users userrepo.UserRepository
}

func NewListUsersUseCase(users userrepo.UserRepository) *ListUsersUseCase {
	return &ListUsersUseCase{Users: users}
}

func (uc *ListUsersUseCase) Execute(ctx context.Context) ([]chat.User, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return users, nil
}

// GetSessionUseCase resolves the authenticated user id to its user record.
type GetSessionUseCase struct {
	Users userrepo.UserRepository
}

func NewGetSessionUseCase(users userrepo.UserRepository) *GetSessionUseCase {
	return &GetSessionUseCase{Users: users}
}

func (uc *GetSessionUseCase) Execute(ctx context.Context, userID string) (*chat.User, error) {
	u, err := uc.Users.FindByID(ctx, userID)
	if errors.Is(err, userrepo.ErrUserNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, persistenceErr(err)
	}
	return u, nil
}
