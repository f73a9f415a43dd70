package pgsql

import (
	"context"
	"errors"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

var FULL_JOURNAL_SELECT_QUERY = `
SELECT
	j.journal_id, j.path, j.name, j.description, j.publishing_mode,
	j.delayed_open_access_duration, j.doi_prefix, j.current_issue_id, j.enabled,
	j.created_at, j.created_by, j.last_updated_at, j.last_updated_by, j.version
FROM journals j
`

// getJournals runs the full select with the given filter clause appended.
func (r *PgxJournalRepository) getJournals(ctx context.Context, filterQuery string, args ...any) ([]domain.Journal, error) {
	query := FULL_JOURNAL_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journals", err)
	}
	defer rows.Close()
	domainJournals, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Journal])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) { // No rows is not an error for a list.
			return []domain.Journal{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect journal rows", err)
	}

	return domainJournals, nil
}

func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		INSERT INTO journals (
			journal_id, path, name, description, publishing_mode,
			delayed_open_access_duration, doi_prefix, current_issue_id, enabled,
			created_at, created_by, last_updated_at, last_updated_by, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		journal.JournalID,
		journal.Path,
		journal.Name,
		journal.Description,
		journal.PublishingMode,
		journal.DelayedOpenAccessDuration,
		journal.DOIPrefix,
		journal.CurrentIssueID,
		journal.Enabled,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
		1,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				if pgErr.ConstraintName == "uq_journals_path" {
					return apperrors.NewConflictError("journal path " + journal.Path + " is already taken")
				}
				return apperrors.NewConflictError("journal ID " + journal.JournalID + " already exists")
			}
		}
		return apperrors.NewAppError(500, "failed to save journal "+journal.JournalID, err)
	}
	return nil
}

func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `WHERE j.journal_id = $1`
	journals, err := r.getJournals(ctx, query, journalID)
	if err != nil {
		return nil, err
	}
	if len(journals) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &journals[0], nil
}

func (r *PgxJournalRepository) FindJournalByPath(ctx context.Context, path string) (*domain.Journal, error) {
	query := `WHERE j.path = $1`
	journals, err := r.getJournals(ctx, query, path)
	if err != nil {
		return nil, err
	}
	if len(journals) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &journals[0], nil
}

// UpdateJournal persists the journal's settings columns with optimistic locking.
func (r *PgxJournalRepository) UpdateJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		UPDATE journals
		SET name = $1, description = $2, publishing_mode = $3,
		    delayed_open_access_duration = $4, doi_prefix = $5,
		    last_updated_at = NOW(), last_updated_by = $6, version = version + 1
		WHERE journal_id = $7 AND version = $8;
	`
	result, err := r.Pool.Exec(ctx, query,
		journal.Name,
		journal.Description,
		journal.PublishingMode,
		journal.DelayedOpenAccessDuration,
		journal.DOIPrefix,
		journal.LastUpdatedBy,
		journal.JournalID,
		journal.Version,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal "+journal.JournalID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewConflictError("journal " + journal.JournalID + " was modified concurrently")
	}

	return nil
}

// UpdateCurrentIssue repoints the journal's current issue. A nil issueID clears
// the pointer. The version check is skipped here: the current issue is derived
// state maintained by the issue lifecycle, not a user-edited setting.
func (r *PgxJournalRepository) UpdateCurrentIssue(ctx context.Context, journalID string, issueID *string, updatedByUserID string) error {
	query := `
		UPDATE journals
		SET current_issue_id = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE journal_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, issueID, updatedByUserID, journalID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationFailedError("issue does not exist", err)
		}
		return apperrors.NewAppError(500, "failed to update current issue for journal "+journalID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal " + journalID + " not found")
	}
	return nil
}

// UpdateJournalStatus enables or disables a journal.
func (r *PgxJournalRepository) UpdateJournalStatus(ctx context.Context, journal *domain.Journal, enabled bool, updatedByUserID string) error {
	query := `
		UPDATE journals
		SET enabled = $1, last_updated_at = NOW(), last_updated_by = $2, version = version + 1
		WHERE journal_id = $3 AND version = $4;
	`
	result, err := r.Pool.Exec(ctx, query, enabled, updatedByUserID, journal.JournalID, journal.Version)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update journal status "+journal.JournalID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("optimistic locking failed: journal " + journal.JournalID)
	}

	return nil
}

func (r *PgxJournalRepository) AddUserToJournal(ctx context.Context, membership domain.UserJournal) error {
	query := `
		INSERT INTO user_journals (user_id, journal_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, journal_id) DO UPDATE SET role = EXCLUDED.role;
	` // Upsert: add the user or update their role if they already exist
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.JournalID,
		membership.Role,
		membership.JoinedAt,
	)

	if err != nil {
		return apperrors.NewAppError(500, "failed to add/update user "+membership.UserID+" in journal "+membership.JournalID, err)
	}
	return nil
}

func (r *PgxJournalRepository) FindUserJournalRole(ctx context.Context, userID, journalID string) (*domain.UserJournal, error) {
	query := `
		SELECT user_id, journal_id, role, joined_at
		FROM user_journals
		WHERE user_id = $1 AND journal_id = $2;
	`
	var uj domain.UserJournal
	err := r.Pool.QueryRow(ctx, query, userID, journalID).Scan(
		&uj.UserID,
		&uj.JournalID,
		&uj.Role,
		&uj.JoinedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal not found") // User not found within this specific journal
		}
		return nil, apperrors.NewAppError(500, "failed to find user "+userID+" journal role in "+journalID, err)
	}
	return &uj, nil
}

func (r *PgxJournalRepository) ListJournalsByUserID(ctx context.Context, userID string, includeDisabled bool, role *domain.UserJournalRole) ([]domain.Journal, error) {
	baseQuery := `JOIN user_journals uj ON j.journal_id = uj.journal_id WHERE uj.user_id = $1`

	// Disabled journals are only visible to their managers.
	var whereClause string
	var args []any
	args = append(args, userID)

	if !includeDisabled {
		whereClause = " AND j.enabled = true"

		if role != nil {
			whereClause += " AND uj.role = $2"
			args = append(args, *role)
		}
	} else {
		whereClause = " AND (j.enabled = true OR (j.enabled = false AND uj.role = $2))"
		args = append(args, domain.RoleManager)

		if role != nil {
			whereClause = " AND (j.enabled = true AND uj.role = $2 OR (j.enabled = false AND uj.role = $3))"
			args = append(args, *role, domain.RoleManager)
		}
	}

	query := baseQuery + whereClause + " ORDER BY j.name;"

	journals, err := r.getJournals(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return journals, nil
}

// ListUsersByJournalID retrieves all users that belong to a specific journal.
// By default, it excludes users with the REMOVED role.
// Set includeRemoved to true to include users with the REMOVED role.
func (r *PgxJournalRepository) ListUsersByJournalID(ctx context.Context, journalID string, includeRemoved ...bool) ([]domain.UserJournal, error) {
	query := `
		SELECT uj.user_id, u.name as user_name, uj.journal_id, uj.role, uj.joined_at
		FROM user_journals uj
		JOIN users u ON uj.user_id = u.user_id
		WHERE uj.journal_id = $1
	`

	shouldIncludeRemoved := false
	if len(includeRemoved) > 0 {
		shouldIncludeRemoved = includeRemoved[0]
	}

	if !shouldIncludeRemoved {
		query += ` AND uj.role != $2`
	}

	query += ` ORDER BY uj.joined_at DESC;`

	var rows pgx.Rows
	var err error

	if !shouldIncludeRemoved {
		rows, err = r.Pool.Query(ctx, query, journalID, domain.RoleRemoved)
	} else {
		rows, err = r.Pool.Query(ctx, query, journalID)
	}

	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users for journal "+journalID, err)
	}
	defer rows.Close()

	var userJournals []domain.UserJournal
	for rows.Next() {
		var uj domain.UserJournal
		err := rows.Scan(
			&uj.UserID,
			&uj.UserName,
			&uj.JournalID,
			&uj.Role,
			&uj.JoinedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan user journal row", err)
		}
		userJournals = append(userJournals, uj)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating user journal rows", err)
	}

	return userJournals, nil
}

// RemoveUserFromJournal marks a user as removed in a journal by setting their role to REMOVED
func (r *PgxJournalRepository) RemoveUserFromJournal(ctx context.Context, userID, journalID string) error {
	return r.UpdateUserJournalRole(ctx, userID, journalID, domain.RoleRemoved)
}

// UpdateUserJournalRole updates a user's role in a journal
func (r *PgxJournalRepository) UpdateUserJournalRole(ctx context.Context, userID, journalID string, newRole domain.UserJournalRole) error {
	query := `
		UPDATE user_journals
		SET role = $3
		WHERE user_id = $1 AND journal_id = $2;
	`

	result, err := r.Pool.Exec(ctx, query, userID, journalID, newRole)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update role for user "+userID+" in journal "+journalID, err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("journal not found")
	}

	return nil
}
