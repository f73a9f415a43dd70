package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/core/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/utils"
)

// --- Mock UserRepository (based on UserService usage) ---

type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn         func(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsernameFn   func(ctx context.Context, username string) (*domain.User, error)
	FindUserByProviderIDFn func(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
	SaveUserFn             func(ctx context.Context, user domain.User) error
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.FindUserByUsernameFn != nil {
		return m.FindUserByUsernameFn(ctx, username)
	}
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	if m.FindUserByProviderIDFn != nil {
		return m.FindUserByProviderIDFn(ctx, provider, providerUserID)
	}
	args := m.Called(ctx, provider, providerUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	if m.SaveUserFn != nil {
		return m.SaveUserFn(ctx, user)
	}
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiryTime *time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo *MockUserRepository
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockUserRepo)
}

// --- CreateUser Tests ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username: "mrivera",
		Email:    "m.rivera@example.edu",
		Name:     "M. Rivera",
		Password: "password123",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Username == req.Username &&
			user.Email == req.Email &&
			user.PasswordHash != "" && user.PasswordHash != req.Password &&
			user.AuthProvider == domain.ProviderLocal
	})).Return(nil).Once()

	created, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.UserID)
	// Self-registration: the new user is their own creator.
	suite.Equal(created.UserID, created.CreatedBy)
	suite.True(utils.CheckPasswordHash(req.Password, created.PasswordHash))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_SaveError() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username: "mrivera",
		Email:    "m.rivera@example.edu",
		Name:     "M. Rivera",
		Password: "password123",
	}

	suite.mockUserRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(apperrors.ErrConflict).Once()

	created, err := suite.service.CreateUser(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(created)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- CreateOAuthUser Tests ---

func (suite *UserServiceTestSuite) TestCreateOAuthUser_ReturnsExistingIdentity() {
	ctx := context.Background()
	providerUserID := "google-sub-123"
	existing := &domain.User{UserID: uuid.NewString(), AuthProvider: domain.ProviderGoogle, ProviderUserID: &providerUserID}

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, providerUserID).Return(existing, nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "M. Rivera", "m.rivera@example.edu", string(domain.ProviderGoogle), providerUserID, true)

	suite.Require().NoError(err)
	suite.Equal(existing, user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_FirstSignInCreatesAccount() {
	ctx := context.Background()
	providerUserID := "google-sub-456"
	email := "m.rivera@example.edu"

	suite.mockUserRepo.On("FindUserByProviderID", ctx, domain.ProviderGoogle, providerUserID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.Username == email &&
			user.AuthProvider == domain.ProviderGoogle &&
			user.ProviderUserID != nil && *user.ProviderUserID == providerUserID &&
			user.PasswordHash == ""
	})).Return(nil).Once()

	user, err := suite.service.CreateOAuthUser(ctx, "M. Rivera", email, string(domain.ProviderGoogle), providerUserID, true)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(email, user.Email)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_UnverifiedEmailRejected() {
	ctx := context.Background()

	user, err := suite.service.CreateOAuthUser(ctx, "M. Rivera", "m.rivera@example.edu", string(domain.ProviderGoogle), "google-sub-789", false)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByProviderID", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestCreateOAuthUser_UsernameConflictRetriesDisambiguated() {
	ctx := context.Background()
	providerUserID := "google-sub-999"
	email := "taken@example.edu"

	var savedUsernames []string
	suite.mockUserRepo.FindUserByProviderIDFn = func(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
		return nil, apperrors.ErrNotFound
	}
	suite.mockUserRepo.SaveUserFn = func(ctx context.Context, user domain.User) error {
		savedUsernames = append(savedUsernames, user.Username)
		if len(savedUsernames) == 1 {
			return apperrors.ErrConflict
		}
		return nil
	}

	user, err := suite.service.CreateOAuthUser(ctx, "M. Rivera", email, string(domain.ProviderGoogle), providerUserID, true)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Require().Len(savedUsernames, 2)
	suite.Equal(email, savedUsernames[0])
	suite.NotEqual(email, savedUsernames[1])
	suite.Contains(savedUsernames[1], email+"-")
}

// --- GetUserByID Tests ---

func (suite *UserServiceTestSuite) TestGetUserByID_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	expected := &domain.User{UserID: userID, Name: "Found User"}

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(expected, nil).Once()

	user, err := suite.service.GetUserByID(ctx, userID)

	suite.Require().NoError(err)
	suite.Equal(expected, user)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestGetUserByID_NotFound() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.GetUserByID(ctx, userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(user)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- ListUsers Tests ---

func (suite *UserServiceTestSuite) TestListUsers_Success() {
	ctx := context.Background()
	limit, offset := 10, 0
	expected := []domain.User{{UserID: uuid.NewString()}, {UserID: uuid.NewString()}}

	suite.mockUserRepo.On("FindUsers", ctx, limit, offset).Return(expected, nil).Once()

	users, err := suite.service.ListUsers(ctx, limit, offset)

	suite.Require().NoError(err)
	suite.Equal(expected, users)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- UpdateUser Tests ---

func (suite *UserServiceTestSuite) TestUpdateUser_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	newName := "Updated Name"
	req := dto.UpdateUserRequest{Name: &newName}
	original := &domain.User{
		UserID: userID,
		Name:   "Original Name",
		AuditFields: domain.AuditFields{
			LastUpdatedAt: time.Now().UTC().Add(-time.Hour),
			LastUpdatedBy: "somebodyElse",
		},
	}
	originalTimestamp := original.LastUpdatedAt

	suite.mockUserRepo.On("FindUserByID", ctx, userID).Return(original, nil).Once()
	suite.mockUserRepo.On("UpdateUser", ctx, mock.MatchedBy(func(user domain.User) bool {
		return user.UserID == userID && user.Name == newName && user.LastUpdatedBy == userID
	})).Return(nil).Once()

	user, err := suite.service.UpdateUser(ctx, userID, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(newName, user.Name)
	suite.True(user.LastUpdatedAt.After(originalTimestamp))
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_OtherUsersProfileForbidden() {
	ctx := context.Background()
	newName := "Updated Name"
	req := dto.UpdateUserRequest{Name: &newName}

	user, err := suite.service.UpdateUser(ctx, uuid.NewString(), req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(user)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByID", mock.Anything, mock.Anything)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

// --- DeleteUser Tests ---

func (suite *UserServiceTestSuite) TestDeleteUser_Success() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("MarkUserDeleted", ctx, userID, mock.AnythingOfType("time.Time"), userID).Return(nil).Once()

	err := suite.service.DeleteUser(ctx, userID, userID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeleteUser_OtherUsersAccountForbidden() {
	ctx := context.Background()

	err := suite.service.DeleteUser(ctx, uuid.NewString(), uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Refresh Token Tests ---

func (suite *UserServiceTestSuite) TestClearRefreshToken_NullsHashAndExpiry() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockUserRepo.On("UpdateRefreshToken", ctx, userID, "", (*time.Time)(nil)).Return(nil).Once()

	err := suite.service.ClearRefreshToken(ctx, userID)

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

// --- AuthenticateUser Tests ---

func (suite *UserServiceTestSuite) localUser(username, password string) *domain.User {
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	return &domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		AuthProvider: domain.ProviderLocal,
	}
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	user := suite.localUser("mrivera", "correct horse battery")

	suite.mockUserRepo.On("FindUserByUsername", ctx, user.Username).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Username, "correct horse battery")

	suite.Require().NoError(err)
	suite.Equal(user.UserID, authed.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	user := suite.localUser("mrivera", "correct horse battery")

	suite.mockUserRepo.On("FindUserByUsername", ctx, user.Username).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Username, "wrong password")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authed)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownUsernameNotDistinguishable() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	authed, err := suite.service.AuthenticateUser(ctx, "ghost", "whatever")

	// Unknown usernames answer exactly like bad passwords.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(authed)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_ExternalProviderAccountRejected() {
	ctx := context.Background()
	providerUserID := "google-sub-1"
	user := &domain.User{
		UserID:         uuid.NewString(),
		Username:       "m.rivera@example.edu",
		AuthProvider:   domain.ProviderGoogle,
		ProviderUserID: &providerUserID,
	}

	suite.mockUserRepo.On("FindUserByUsername", ctx, user.Username).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Username, "anything")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authed)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DisabledAccountRejected() {
	ctx := context.Background()
	user := suite.localUser("mrivera", "correct horse battery")
	user.IsDisabled = true

	suite.mockUserRepo.On("FindUserByUsername", ctx, user.Username).Return(user, nil).Once()

	authed, err := suite.service.AuthenticateUser(ctx, user.Username, "correct horse battery")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(authed)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_RepoErrorPropagates() {
	ctx := context.Background()

	suite.mockUserRepo.On("FindUserByUsername", ctx, "mrivera").Return(nil, assert.AnError).Once()

	authed, err := suite.service.AuthenticateUser(ctx, "mrivera", "whatever")

	suite.Require().Error(err)
	suite.ErrorIs(err, assert.AnError)
	suite.Nil(authed)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
