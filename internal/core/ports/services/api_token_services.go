package services

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// APITokenSvc manages programmatic access tokens. Tokens authenticate via the
// x-api-key header and are an alternative to the browser session for
// harvesters and automation.
type APITokenSvc interface {
	// CreateToken mints a token for the user. The returned string is the
	// plaintext secret, available only from this call; the struct carries the
	// stored metadata.
	CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error)

	// ListTokens returns the user's live tokens, newest first.
	ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error)

	// RevokeToken revokes one of the user's tokens. Tokens belonging to other
	// users are reported as not found.
	RevokeToken(ctx context.Context, userID, tokenID string) error

	// RevokeAllTokens revokes every token of the user.
	RevokeAllTokens(ctx context.Context, userID string) error

	// ValidateToken resolves a presented secret to its owning user, stamping
	// the token's last use. Expired and unknown secrets are rejected with
	// apperrors.ErrUnauthorized.
	ValidateToken(ctx context.Context, tokenString string) (*domain.User, error)

	// PurgeExpiredTokens revokes all tokens past their expiry and reports how
	// many were affected. Run periodically by the background worker.
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}
