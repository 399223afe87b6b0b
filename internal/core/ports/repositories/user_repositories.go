package repositories

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
)

// UserReader defines read operations for users.
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	SaveUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
