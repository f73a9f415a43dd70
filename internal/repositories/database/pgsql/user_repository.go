package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

var FULL_USER_SELECT_QUERY = `
SELECT
	u.user_id, u.username, u.email, u.name,
	COALESCE(u.password_hash, '') AS password_hash,
	u.auth_provider, u.provider_user_id, u.is_disabled,
	u.created_at, u.created_by, u.last_updated_at, u.last_updated_by,
	u.deleted_at,
	COALESCE(u.refresh_token_hash, '') AS refresh_token_hash,
	u.refresh_token_expiry_time
FROM users u
`

// getUsers runs the full select with the given filter clause appended.
func (r *PgxUserRepository) getUsers(ctx context.Context, filterQuery string, args ...any) ([]domain.User, error) {
	query := FULL_USER_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users", err)
	}
	defer rows.Close()
	domainUsers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.User{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect user rows", err)
	}

	return domainUsers, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (
			user_id, username, email, name, password_hash,
			auth_provider, provider_user_id, is_disabled,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.AuthProvider,
		user.ProviderUserID,
		user.IsDisabled,
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			if pgErr.ConstraintName == "uq_users_username" {
				return apperrors.NewConflictError("username " + user.Username + " is already taken")
			}
			return apperrors.NewConflictError("user ID " + user.UserID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save user "+user.UserID, err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `WHERE u.user_id = $1 AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `WHERE u.username = $1 AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, query, username)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUserByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	query := `WHERE u.auth_provider = $1 AND u.provider_user_id = $2 AND u.deleted_at IS NULL`
	users, err := r.getUsers(ctx, query, provider, providerUserID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &users[0], nil
}

func (r *PgxUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `WHERE u.deleted_at IS NULL ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`
	return r.getUsers(ctx, query, limit, offset)
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `
		UPDATE users
		SET name = $1, email = $2, is_disabled = $3, last_updated_at = $4, last_updated_by = $5
		WHERE user_id = $6 AND deleted_at IS NULL;
	`
	result, err := r.Pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.IsDisabled,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
		user.UserID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update user "+user.UserID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user " + user.UserID + " not found or already deleted")
	}
	return nil
}

// UpdateRefreshToken stores the refresh token hash and expiry for a user. An
// empty hash clears both columns, revoking the session.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiryTime *time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = NULLIF($1, ''), refresh_token_expiry_time = $2, last_updated_at = NOW(), last_updated_by = $3
		WHERE user_id = $4 AND deleted_at IS NULL;
	`
	result, err := r.Pool.Exec(ctx, query, refreshTokenHash, expiryTime, userID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update refresh token for user "+userID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user " + userID + " not found or already deleted")
	}
	return nil
}

func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE users
		SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE user_id = $3 AND deleted_at IS NULL;
	`
	result, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark user "+userID+" as deleted", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user " + userID + " not found or already deleted")
	}
	return nil
}
