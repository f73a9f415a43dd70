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
)

// --- Mock APITokenRepository ---

type MockAPITokenRepository struct {
	mock.Mock
}

func (m *MockAPITokenRepository) CreateToken(ctx context.Context, token *domain.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	args := m.Called(ctx, tokenID)
	var token *domain.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.APIToken)
	}
	return token, args.Error(1)
}

func (m *MockAPITokenRepository) ListTokensByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	var tokens []domain.APIToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]domain.APIToken)
	}
	return tokens, args.Error(1)
}

func (m *MockAPITokenRepository) FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	args := m.Called(ctx, tokenHash)
	var token *domain.APIToken
	if args.Get(0) != nil {
		token = args.Get(0).(*domain.APIToken)
	}
	return token, args.Error(1)
}

func (m *MockAPITokenRepository) TouchTokenUsage(ctx context.Context, token *domain.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) RevokeToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockAPITokenRepository) RevokeTokensByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAPITokenRepository) RevokeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock UserSvcFacade (the token service only reads users) ---

type MockUserFacade struct {
	mock.Mock
}

func (m *MockUserFacade) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserFacade) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserFacade) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserFacade) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserFacade) CreateOAuthUser(ctx context.Context, name, email, provider, providerUserID string, emailVerified bool) (*domain.User, error) {
	args := m.Called(ctx, name, email, provider, providerUserID, emailVerified)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserFacade) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, requestingUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserFacade) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserFacade) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserFacade) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	args := m.Called(ctx, userID, requestingUserID)
	return args.Error(0)
}

func (m *MockUserFacade) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	args := m.Called(ctx, username, password)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

// --- Test Suite ---

type APITokenServiceTestSuite struct {
	suite.Suite
	mockTokenRepo *MockAPITokenRepository
	mockUserSvc   *MockUserFacade
	service       portssvc.APITokenSvc
	userID        string
}

func (suite *APITokenServiceTestSuite) SetupTest() {
	suite.mockTokenRepo = new(MockAPITokenRepository)
	suite.mockUserSvc = new(MockUserFacade)
	suite.service = services.NewAPITokenService(suite.mockTokenRepo, suite.mockUserSvc)
	suite.userID = uuid.New().String()
}

// --- CreateToken Tests ---

func (suite *APITokenServiceTestSuite) TestCreateToken_MintsPrefixedSecret() {
	ctx := context.Background()

	var storedHash string
	suite.mockTokenRepo.On("CreateToken", ctx, mock.MatchedBy(func(t *domain.APIToken) bool {
		storedHash = t.TokenHash
		return t.UserID == suite.userID && t.Name == "harvest script" && t.ExpiresAt == nil && t.TokenHash != ""
	})).Run(func(args mock.Arguments) {
		token := args.Get(1).(*domain.APIToken)
		token.TokenID = uuid.New().String()
		token.CreatedAt = time.Now()
		token.UpdatedAt = token.CreatedAt
	}).Return(nil).Once()

	secret, token, err := suite.service.CreateToken(ctx, suite.userID, "harvest script", nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(token)
	suite.NotEmpty(token.TokenID)
	suite.True(len(secret) > len("jms_"))
	suite.Equal("jms_", secret[:4])
	// Only the digest is persisted, never the secret itself.
	suite.NotEqual(secret, storedHash)
	suite.Len(storedHash, 64)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestCreateToken_AppliesRequestedExpiry() {
	ctx := context.Background()
	lifetime := 30 * 24 * time.Hour
	wantExpiry := time.Now().Add(lifetime)

	suite.mockTokenRepo.On("CreateToken", ctx, mock.MatchedBy(func(t *domain.APIToken) bool {
		return t.ExpiresAt != nil && t.ExpiresAt.Sub(wantExpiry).Abs() < time.Minute
	})).Return(nil).Once()

	_, token, err := suite.service.CreateToken(ctx, suite.userID, "conference import", &lifetime)

	suite.Require().NoError(err)
	suite.NotNil(token.ExpiresAt)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestCreateToken_EmptyNameRejected() {
	ctx := context.Background()

	_, _, err := suite.service.CreateToken(ctx, suite.userID, "", nil)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "CreateToken", mock.Anything, mock.Anything)
}

func (suite *APITokenServiceTestSuite) TestCreateToken_NonPositiveExpiryRejected() {
	ctx := context.Background()
	lifetime := -time.Hour

	_, _, err := suite.service.CreateToken(ctx, suite.userID, "expired on arrival", &lifetime)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "CreateToken", mock.Anything, mock.Anything)
}

// --- ListTokens Tests ---

func (suite *APITokenServiceTestSuite) TestListTokens_Success() {
	ctx := context.Background()
	stored := []domain.APIToken{
		{TokenID: uuid.New().String(), UserID: suite.userID, Name: "newer"},
		{TokenID: uuid.New().String(), UserID: suite.userID, Name: "older"},
	}
	suite.mockTokenRepo.On("ListTokensByUserID", ctx, suite.userID).Return(stored, nil).Once()

	tokens, err := suite.service.ListTokens(ctx, suite.userID)

	suite.Require().NoError(err)
	suite.Len(tokens, 2)
	suite.Equal("newer", tokens[0].Name)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

// --- RevokeToken Tests ---

func (suite *APITokenServiceTestSuite) TestRevokeToken_Success() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	suite.mockTokenRepo.On("FindTokenByID", ctx, tokenID).
		Return(&domain.APIToken{TokenID: tokenID, UserID: suite.userID}, nil).Once()
	suite.mockTokenRepo.On("RevokeToken", ctx, tokenID).Return(nil).Once()

	err := suite.service.RevokeToken(ctx, suite.userID, tokenID)

	suite.NoError(err)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestRevokeToken_ForeignTokenReportedNotFound() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	suite.mockTokenRepo.On("FindTokenByID", ctx, tokenID).
		Return(&domain.APIToken{TokenID: tokenID, UserID: uuid.New().String()}, nil).Once()

	err := suite.service.RevokeToken(ctx, suite.userID, tokenID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "RevokeToken", mock.Anything, mock.Anything)
}

func (suite *APITokenServiceTestSuite) TestRevokeToken_MissingTokenNotFound() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	suite.mockTokenRepo.On("FindTokenByID", ctx, tokenID).
		Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.RevokeToken(ctx, suite.userID, tokenID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- RevokeAllTokens Tests ---

func (suite *APITokenServiceTestSuite) TestRevokeAllTokens_Success() {
	ctx := context.Background()
	suite.mockTokenRepo.On("RevokeTokensByUserID", ctx, suite.userID).Return(nil).Once()

	err := suite.service.RevokeAllTokens(ctx, suite.userID)

	suite.NoError(err)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

// --- ValidateToken Tests ---

func (suite *APITokenServiceTestSuite) TestValidateToken_ResolvesUserAndStampsUsage() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	user := &domain.User{UserID: suite.userID, Username: "harvester"}

	suite.mockTokenRepo.On("FindTokenByHash", ctx, mock.AnythingOfType("string")).
		Return(&domain.APIToken{TokenID: tokenID, UserID: suite.userID}, nil).Once()
	suite.mockTokenRepo.On("TouchTokenUsage", ctx, mock.MatchedBy(func(t *domain.APIToken) bool {
		return t.TokenID == tokenID && t.LastUsedAt != nil
	})).Return(nil).Once()
	suite.mockUserSvc.On("GetUserByID", ctx, suite.userID).Return(user, nil).Once()

	got, err := suite.service.ValidateToken(ctx, "jms_some-presented-secret")

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
	suite.mockTokenRepo.AssertExpectations(suite.T())
	suite.mockUserSvc.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestValidateToken_UnknownSecretUnauthorized() {
	ctx := context.Background()
	suite.mockTokenRepo.On("FindTokenByHash", ctx, mock.AnythingOfType("string")).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ValidateToken(ctx, "jms_who-is-this")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockUserSvc.AssertNotCalled(suite.T(), "GetUserByID", mock.Anything, mock.Anything)
}

func (suite *APITokenServiceTestSuite) TestValidateToken_EmptySecretUnauthorized() {
	ctx := context.Background()

	_, err := suite.service.ValidateToken(ctx, "")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "FindTokenByHash", mock.Anything, mock.Anything)
}

func (suite *APITokenServiceTestSuite) TestValidateToken_ExpiredTokenRevokedAndRejected() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	pastExpiry := time.Now().Add(-time.Hour)

	suite.mockTokenRepo.On("FindTokenByHash", ctx, mock.AnythingOfType("string")).
		Return(&domain.APIToken{TokenID: tokenID, UserID: suite.userID, ExpiresAt: &pastExpiry}, nil).Once()
	suite.mockTokenRepo.On("RevokeToken", ctx, tokenID).Return(nil).Once()

	_, err := suite.service.ValidateToken(ctx, "jms_stale-secret")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "TouchTokenUsage", mock.Anything, mock.Anything)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestValidateToken_TouchFailureDoesNotBlockAuth() {
	ctx := context.Background()
	tokenID := uuid.New().String()
	user := &domain.User{UserID: suite.userID}

	suite.mockTokenRepo.On("FindTokenByHash", ctx, mock.AnythingOfType("string")).
		Return(&domain.APIToken{TokenID: tokenID, UserID: suite.userID}, nil).Once()
	suite.mockTokenRepo.On("TouchTokenUsage", ctx, mock.Anything).Return(assert.AnError).Once()
	suite.mockUserSvc.On("GetUserByID", ctx, suite.userID).Return(user, nil).Once()

	got, err := suite.service.ValidateToken(ctx, "jms_still-valid")

	suite.Require().NoError(err)
	suite.Equal(suite.userID, got.UserID)
}

// --- PurgeExpiredTokens Tests ---

func (suite *APITokenServiceTestSuite) TestPurgeExpiredTokens_ReportsCount() {
	ctx := context.Background()
	suite.mockTokenRepo.On("RevokeExpiredTokens", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(3), nil).Once()

	purged, err := suite.service.PurgeExpiredTokens(ctx)

	suite.Require().NoError(err)
	suite.Equal(int64(3), purged)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func TestAPITokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(APITokenServiceTestSuite))
}
