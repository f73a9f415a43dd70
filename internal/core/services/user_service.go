package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/utils"
)

// userService provides account management and credential verification.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// GetUserByUsername retrieves a user by username.
func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.FindUserByUsername(ctx, username)
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return s.userRepo.FindUsers(ctx, limit, offset)
}

// CreateUser registers a new user with local credentials.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	userID := uuid.NewString()

	user := domain.User{
		UserID:       userID,
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		AuthProvider: domain.ProviderLocal,
		AuditFields:  domain.NewAuditFields(userID, now), // Self-registration
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()), slog.String("username", req.Username))
		return nil, err
	}

	logger.Info("User created successfully", slog.String("user_id", userID), slog.String("username", req.Username))
	return &user, nil
}

// CreateOAuthUser finds the user linked to an external provider identity, or
// creates one when this is the first sign-in.
func (s *userService) CreateOAuthUser(ctx context.Context, name, email, provider, providerUserID string, emailVerified bool) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !emailVerified {
		return nil, apperrors.NewValidationError("email address is not verified with the provider")
	}

	existing, err := s.userRepo.FindUserByProviderID(ctx, domain.AuthProvider(provider), providerUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to look up user by provider identity", slog.String("error", err.Error()), slog.String("provider", provider))
		return nil, err
	}

	now := time.Now().UTC()
	userID := uuid.NewString()

	user := domain.User{
		UserID:         userID,
		Username:       email,
		Email:          email,
		Name:           name,
		AuthProvider:   domain.AuthProvider(provider),
		ProviderUserID: &providerUserID,
		AuditFields:    domain.NewAuditFields(userID, now), // Self-registration via the provider
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		// The email may already be taken as a local username; retry once with a
		// disambiguated username before giving up.
		if errors.Is(err, apperrors.ErrConflict) {
			user.Username = email + "-" + strings.Split(uuid.NewString(), "-")[0]
			if retryErr := s.userRepo.SaveUser(ctx, user); retryErr != nil {
				return nil, retryErr
			}
		} else {
			logger.Error("Failed to save OAuth user", slog.String("error", err.Error()), slog.String("provider", provider))
			return nil, err
		}
	}

	logger.Info("OAuth user created", slog.String("user_id", userID), slog.String("provider", provider))
	return &user, nil
}

// UpdateUser updates an existing user. Users can only update their own
// profile.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return nil, apperrors.NewForbiddenError("users can only update their own profile")
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	user.Touch(requestingUserID, time.Now().UTC())

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, err
	}

	return user, nil
}

// UpdateRefreshToken stores the hash and expiry of a user's refresh token.
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, &refreshTokenExpiryTime)
}

// ClearRefreshToken revokes a user's refresh token.
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "", nil)
}

// DeleteUser marks a user as deleted. Users can only delete their own account.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return apperrors.NewForbiddenError("users can only delete their own account")
	}

	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), requestingUserID); err != nil {
		logger.Error("Failed to mark user deleted", slog.String("error", err.Error()), slog.String("user_id", userID))
		return err
	}

	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

// AuthenticateUser verifies a username and password pair. Lookup failures and
// password mismatches answer with the same error so usernames cannot be
// probed.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("invalid username or password")
		}
		logger.Error("Failed to look up user for authentication", slog.String("error", err.Error()))
		return nil, err
	}

	if user.AuthProvider != domain.ProviderLocal {
		return nil, apperrors.NewUnauthorizedError("account uses an external login provider")
	}

	if user.IsDisabled {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Warn("Password mismatch during authentication", slog.String("user_id", user.UserID))
		return nil, apperrors.NewUnauthorizedError("invalid username or password")
	}

	return user, nil
}
