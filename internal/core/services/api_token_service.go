package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/utils"
)

// apiTokenSecretPrefix marks platform secrets so they are recognizable in
// configuration files and leak scanners.
const apiTokenSecretPrefix = "jms_"

// apiTokenService implements the APITokenSvc interface.
type apiTokenService struct {
	tokenRepo repositories.APITokenRepository
	userSvc   portssvc.UserSvcFacade
}

// NewAPITokenService creates a new instance of apiTokenService.
func NewAPITokenService(tokenRepo repositories.APITokenRepository, userSvc portssvc.UserSvcFacade) portssvc.APITokenSvc {
	return &apiTokenService{
		tokenRepo: tokenRepo,
		userSvc:   userSvc,
	}
}

// CreateToken mints a new token for the user. The plaintext secret is
// returned once; only its digest is stored.
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: token name is required", apperrors.ErrValidation)
	}
	if expiresIn != nil && *expiresIn <= 0 {
		return "", nil, fmt.Errorf("%w: expiry must be in the future", apperrors.ErrValidation)
	}

	random, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token secret: %w", err)
	}
	secret := apiTokenSecretPrefix + random

	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := time.Now().Add(*expiresIn)
		expiresAt = &expiry
	}

	// The digest is deterministic so authentication can look the token up by
	// hashing the presented secret.
	token := &domain.APIToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hashAPIToken(secret),
		ExpiresAt: expiresAt,
	}

	if err := s.tokenRepo.CreateToken(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	return secret, token, nil
}

// ListTokens returns the user's live tokens, newest first.
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	tokens, err := s.tokenRepo.ListTokensByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// RevokeToken revokes one of the user's tokens. A token owned by someone else
// is reported as not found, so callers cannot probe other users' token IDs.
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return fmt.Errorf("%w: user ID and token ID are required", apperrors.ErrValidation)
	}

	token, err := s.tokenRepo.FindTokenByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to find token: %w", err)
	}

	if token.UserID != userID {
		return apperrors.ErrNotFound
	}

	if err := s.tokenRepo.RevokeToken(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllTokens revokes every token of the user.
func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}

	if err := s.tokenRepo.RevokeTokensByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke all tokens: %w", err)
	}
	return nil
}

// ValidateToken resolves a presented secret to its owning user. Unknown and
// expired secrets are rejected with ErrUnauthorized so the middleware does
// not leak which of the two it was.
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.tokenRepo.FindTokenByHash(ctx, hashAPIToken(tokenString))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	now := time.Now()
	if token.ExpiredAt(now) {
		// Retire the token on first use past its expiry.
		_ = s.tokenRepo.RevokeToken(ctx, token.TokenID)
		return nil, apperrors.ErrUnauthorized
	}

	// Stamp the usage; failures here never block authentication.
	token.MarkUsed(now)
	if err := s.tokenRepo.TouchTokenUsage(ctx, token); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to update token last_used_at",
			slog.String("error", err.Error()),
			slog.String("token_id", token.TokenID))
	}

	user, err := s.userSvc.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token user: %w", err)
	}
	return user, nil
}

// PurgeExpiredTokens revokes all tokens past their expiry. The background
// worker runs this periodically so expired tokens do not linger as live rows.
func (s *apiTokenService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	purged, err := s.tokenRepo.RevokeExpiredTokens(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	return purged, nil
}

// hashAPIToken produces the SHA-256 hex digest stored and queried for a token.
func hashAPIToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
