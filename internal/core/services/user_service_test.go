package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/smallbooks/smallbooks_backend/internal/apperrors"
	"github.com/smallbooks/smallbooks_backend/internal/core/domain"
	portssvc "github.com/smallbooks/smallbooks_backend/internal/core/ports/services"
	"github.com/smallbooks/smallbooks_backend/internal/core/services"
	"github.com/smallbooks/smallbooks_backend/internal/dto"
	"github.com/smallbooks/smallbooks_backend/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo, "test-secret", "smallbooks-test", time.Hour)
}

func (suite *UserServiceTestSuite) TestRegisterUser_Success() {
	ctx := context.Background()
	req := dto.RegisterUserRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "correct horse battery",
	}

	suite.mockUserRepo.On("FindUserByEmail", ctx, req.Email).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == req.Email &&
			u.PasswordHash != req.Password &&
			u.CreatedBy == u.UserID
	})).Return(nil).Once()

	user, err := suite.service.RegisterUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.NotEmpty(user.UserID)
	suite.True(utils.CheckPasswordHash(req.Password, user.PasswordHash))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegisterUser_DuplicateEmail() {
	ctx := context.Background()
	existing := &domain.User{UserID: uuid.NewString(), Email: "dana@example.com"}

	suite.mockUserRepo.On("FindUserByEmail", ctx, existing.Email).
		Return(existing, nil).Once()

	_, err := suite.service.RegisterUser(ctx, dto.RegisterUserRequest{
		Name:     "Dana",
		Email:    existing.Email,
		Password: "whatever12",
	})

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	password := "correct horse battery"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "dana@example.com", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).
		Return(user, nil).Once()

	token, got, err := suite.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: password})

	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.Equal(user.UserID, got.UserID)
}

func (suite *UserServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("the real password")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "dana@example.com", PasswordHash: hash}

	suite.mockUserRepo.On("FindUserByEmail", ctx, user.Email).
		Return(user, nil).Once()

	token, _, err := suite.service.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "a guess"})

	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
	suite.Empty(token)
}

func (suite *UserServiceTestSuite) TestLogin_UnknownEmail() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.ErrNotFound).Once()

	_, _, err := suite.service.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever12"})

	// Unknown email and wrong password are indistinguishable to the caller.
	suite.ErrorIs(err, apperrors.ErrUnauthenticated)
}

func (suite *UserServiceTestSuite) TestGetUserByID_Passthrough() {
	ctx := context.Background()
	user := &domain.User{UserID: uuid.NewString(), Email: "dana@example.com"}

	suite.mockUserRepo.On("FindUserByID", ctx, user.UserID).
		Return(user, nil).Once()

	got, err := suite.service.GetUserByID(ctx, user.UserID)

	suite.Require().NoError(err)
	suite.Equal(user, got)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
