package repositories

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// APITokenRepository defines persistence for programmatic access tokens.
// Lookups never return soft-deleted tokens; a missing token surfaces as
// apperrors.ErrNotFound.
type APITokenRepository interface {
	// CreateToken persists a new token and fills in the generated ID and
	// timestamps on the passed struct.
	CreateToken(ctx context.Context, token *domain.APIToken) error

	// FindTokenByID retrieves a token by its ID.
	FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error)

	// ListTokensByUserID retrieves all live tokens of one user, newest first.
	ListTokensByUserID(ctx context.Context, userID string) ([]domain.APIToken, error)

	// FindTokenByHash retrieves a token by the digest of its secret. This is
	// the authentication lookup.
	FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error)

	// TouchTokenUsage stamps the token's last_used_at from its in-memory value.
	TouchTokenUsage(ctx context.Context, token *domain.APIToken) error

	// RevokeToken soft-deletes a single token.
	RevokeToken(ctx context.Context, tokenID string) error

	// RevokeTokensByUserID soft-deletes all tokens of one user.
	RevokeTokensByUserID(ctx context.Context, userID string) error

	// RevokeExpiredTokens soft-deletes every token whose expiry precedes the
	// given instant and reports how many were affected.
	RevokeExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}
