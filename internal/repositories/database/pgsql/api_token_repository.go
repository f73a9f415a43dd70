package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new repository for API token data.
func newPgxAPITokenRepository(pool *pgxpool.Pool) portsrepo.APITokenRepository {
	return &PgxAPITokenRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAPITokenRepository implements portsrepo.APITokenRepository
var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const (
	selectAPITokenFields = `
		api_token_id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertAPITokenQuery = `
		INSERT INTO api_tokens (user_id, name, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + selectAPITokenFields

	findAPITokenByIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM api_tokens
		WHERE api_token_id = $1 AND deleted_at IS NULL
	`

	listAPITokensByUserQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM api_tokens
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	findAPITokenByHashQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM api_tokens
		WHERE token_hash = $1 AND deleted_at IS NULL
	`

	touchAPITokenQuery = `
		UPDATE api_tokens
		SET last_used_at = $2, updated_at = NOW()
		WHERE api_token_id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	revokeAPITokenQuery = `
		UPDATE api_tokens
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE api_token_id = $1 AND deleted_at IS NULL
	`

	revokeAPITokensByUserQuery = `
		UPDATE api_tokens
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL
	`

	revokeExpiredAPITokensQuery = `
		UPDATE api_tokens
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE expires_at < $1 AND deleted_at IS NULL
	`
)

// CreateToken persists a new token and copies the generated ID and timestamps
// back onto the passed struct.
func (r *PgxAPITokenRepository) CreateToken(ctx context.Context, token *domain.APIToken) error {
	row := r.Pool.QueryRow(ctx, insertAPITokenQuery,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.ExpiresAt,
	)

	created, err := scanAPIToken(row)
	if err != nil {
		return fmt.Errorf("failed to insert api token: %w", err)
	}

	token.TokenID = created.TokenID
	token.CreatedAt = created.CreatedAt
	token.UpdatedAt = created.UpdatedAt
	return nil
}

// FindTokenByID retrieves a live token by its ID.
func (r *PgxAPITokenRepository) FindTokenByID(ctx context.Context, tokenID string) (*domain.APIToken, error) {
	token, err := scanAPIToken(r.Pool.QueryRow(ctx, findAPITokenByIDQuery, tokenID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query api token %s: %w", tokenID, err)
	}
	return token, nil
}

// ListTokensByUserID retrieves all live tokens of one user, newest first.
func (r *PgxAPITokenRepository) ListTokensByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	rows, err := r.Pool.Query(ctx, listAPITokensByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query api tokens for user %s: %w", userID, err)
	}
	defer rows.Close()

	var tokens []domain.APIToken
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// FindTokenByHash retrieves a live token by the digest of its secret.
func (r *PgxAPITokenRepository) FindTokenByHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	token, err := scanAPIToken(r.Pool.QueryRow(ctx, findAPITokenByHashQuery, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query api token by hash: %w", err)
	}
	return token, nil
}

// TouchTokenUsage writes the token's last_used_at from its in-memory value and
// refreshes UpdatedAt from the row.
func (r *PgxAPITokenRepository) TouchTokenUsage(ctx context.Context, token *domain.APIToken) error {
	row := r.Pool.QueryRow(ctx, touchAPITokenQuery, token.TokenID, token.LastUsedAt)
	if err := row.Scan(&token.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to touch api token %s: %w", token.TokenID, err)
	}
	return nil
}

// RevokeToken soft-deletes a single token.
func (r *PgxAPITokenRepository) RevokeToken(ctx context.Context, tokenID string) error {
	tag, err := r.Pool.Exec(ctx, revokeAPITokenQuery, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke api token %s: %w", tokenID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// RevokeTokensByUserID soft-deletes all tokens of one user. Revoking for a
// user without tokens is not an error.
func (r *PgxAPITokenRepository) RevokeTokensByUserID(ctx context.Context, userID string) error {
	if _, err := r.Pool.Exec(ctx, revokeAPITokensByUserQuery, userID); err != nil {
		return fmt.Errorf("failed to revoke api tokens for user %s: %w", userID, err)
	}
	return nil
}

// RevokeExpiredTokens soft-deletes every token whose expiry precedes the
// given instant.
func (r *PgxAPITokenRepository) RevokeExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, revokeExpiredAPITokensQuery, before)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke expired api tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanAPIToken reads one api_tokens row in selectAPITokenFields order.
func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var token domain.APIToken
	err := row.Scan(
		&token.TokenID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&token.LastUsedAt,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
