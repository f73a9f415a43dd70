package services

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// UserReaderSvc defines read operations over platform accounts. Journal-scoped
// roles (editor, reviewer) are not part of the account itself; they live on the
// journal membership.
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for accounts and their session state.
type UserWriterSvc interface {
	// CreateUser creates a new user with local credentials.
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)

	// CreateOAuthUser finds or creates a user linked to an external auth
	// provider identity.
	CreateOAuthUser(ctx context.Context, name, email, provider, providerUserID string, emailVerified bool) (*domain.User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserLifecycleSvc defines operations for retiring accounts.
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete). Authored submissions
	// and review history keep their attribution.
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthSvc defines credential checks for password sign-in.
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}
