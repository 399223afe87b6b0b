package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portsrepo "github.com/smallbooks/smallbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils"
)

// userService handles registration, login, and profile lookup.
type userService struct {
	BaseService
	userRepo    portsrepo.UserRepositoryFacade
	jwtSecret   string
	jwtIssuer   string
	tokenExpiry time.Duration
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, jwtSecret, jwtIssuer string, tokenExpiry time.Duration) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		jwtIssuer:   jwtIssuer,
		tokenExpiry: tokenExpiry,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a user with a bcrypt-hashed password.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}
	user.CreatedBy = user.UserID
	user.LastUpdatedBy = user.UserID

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "user registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// Login verifies credentials and issues a signed JWT. Lookup failures and password
// mismatches both surface as ErrUnauthenticated so the response never reveals which
// half was wrong.
func (s *userService) Login(ctx context.Context, req dto.LoginRequest) (string, *domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrUnauthenticated
		}
		return "", nil, err
	}
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return "", nil, apperrors.ErrUnauthenticated
	}

	token, err := utils.GenerateJWT(user.UserID, s.jwtSecret, s.jwtIssuer, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.LogInfo(ctx, "user logged in", slog.String("user_id", user.UserID))
	return token, user, nil
}

// GetUserByID retrieves a user's profile.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}
