package usecase

import (
	"errors"
	"fmt"

	chat "github.com/Ubokutom222/whatsappclone/internal/pkg/chat/application/domain"
)

// Error taxonomy surfaced by the chat use cases. Controllers map these onto
// HTTP statuses; anything else is an internal error.
var (
	// ErrInvalidRequest is the root of all validation failures.
	ErrInvalidRequest = chat.ErrInvalid

	ErrNotFound = errors.New("chat: not found")

	ErrForbidden = chat.ErrNotParticipant

	// ErrPersistence indicates an infrastructure/repository failure inside a use case
	ErrPersistence = fmt.Errorf("chat use case persistence error")
)

func persistenceErr(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}
