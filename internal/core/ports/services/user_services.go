package services

import (
	"context"

	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
)

// UserSvcFacade covers registration, login, and profile lookup. Everything past
// bearer-token issuance (OAuth, sessions, password reset) lives outside this service.
type UserSvcFacade interface {
	// RegisterUser creates a user with a bcrypt password hash.
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error)

	// Login verifies credentials and issues a signed JWT.
	Login(ctx context.Context, req dto.LoginRequest) (string, *domain.User, error)

	// GetUserByID retrieves a user's profile.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
