package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/openjms/journal_mgmt_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxIssueRepository struct {
	BaseRepository
}

// newPgxIssueRepository creates a new repository for issue data.
func newPgxIssueRepository(pool *pgxpool.Pool) portsrepo.IssueRepositoryWithTx {
	return &PgxIssueRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxIssueRepository implements portsrepo.IssueRepositoryWithTx
var _ portsrepo.IssueRepositoryWithTx = (*PgxIssueRepository)(nil)

var FULL_ISSUE_SELECT_QUERY = `
SELECT
	i.issue_id, i.journal_id, i.volume, i.number, i.year, i.title, i.description,
	i.published, i.date_published, i.access_status, i.open_access_date, i.doi,
	i.cover_image_url, i.cover_image_alt_text,
	i.show_volume, i.show_number, i.show_year, i.show_title,
	i.created_at, i.created_by, i.last_updated_at, i.last_updated_by, i.version
FROM issues i
`

// getIssues runs the full select with the given filter clause appended.
func (r *PgxIssueRepository) getIssues(ctx context.Context, filterQuery string, args ...any) ([]domain.Issue, error) {
	query := FULL_ISSUE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query issues", err)
	}
	defer rows.Close()
	domainIssues, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Issue])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Issue{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect issue rows", err)
	}

	return domainIssues, nil
}

func (r *PgxIssueRepository) SaveIssue(ctx context.Context, issue domain.Issue) error {
	query := `
		INSERT INTO issues (
			issue_id, journal_id, volume, number, year, title, description,
			published, date_published, access_status, open_access_date, doi,
			cover_image_url, cover_image_alt_text,
			show_volume, show_number, show_year, show_title,
			created_at, created_by, last_updated_at, last_updated_by, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	_, err := r.Pool.Exec(ctx, query,
		issue.IssueID,
		issue.JournalID,
		issue.Volume,
		issue.Number,
		issue.Year,
		issue.Title,
		issue.Description,
		issue.Published,
		issue.DatePublished,
		issue.AccessStatus,
		issue.OpenAccessDate,
		issue.DOI,
		issue.CoverImageURL,
		issue.CoverImageAltText,
		issue.ShowVolume,
		issue.ShowNumber,
		issue.ShowYear,
		issue.ShowTitle,
		issue.CreatedAt,
		issue.CreatedBy,
		issue.LastUpdatedAt,
		issue.LastUpdatedBy,
		1,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("issue ID " + issue.IssueID + " already exists")
			}
			if pgErr.Code == "23503" && pgErr.ConstraintName == "fk_issues_journal" { // foreign_key_violation
				return apperrors.NewValidationFailedError("journal does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save issue "+issue.IssueID, err)
	}
	return nil
}

func (r *PgxIssueRepository) FindIssueByID(ctx context.Context, issueID string) (*domain.Issue, error) {
	query := `WHERE i.issue_id = $1`
	issues, err := r.getIssues(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &issues[0], nil
}

// appendOptionalSet adds a SET clause for an optional field: explicit nulls
// clear the column, values take the next placeholder, unset fields are skipped.
func appendOptionalSet[T any](sets *[]string, args *[]any, column string, o domain.Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		*sets = append(*sets, column+" = NULL")
		return
	}
	*args = append(*args, o.Value)
	*sets = append(*sets, fmt.Sprintf("%s = $%d", column, len(*args)))
}

// EditIssue applies a partial update. Only fields marked as set are written;
// explicit nulls clear the underlying column. The version is always bumped so
// concurrent full updates fail their optimistic lock check.
func (r *PgxIssueRepository) EditIssue(ctx context.Context, issueID string, update domain.IssueUpdate, updatedByUserID string) error {
	var sets []string
	var args []any

	appendOptionalSet(&sets, &args, "volume", update.Volume)
	appendOptionalSet(&sets, &args, "number", update.Number)
	appendOptionalSet(&sets, &args, "year", update.Year)
	appendOptionalSet(&sets, &args, "title", update.Title)
	appendOptionalSet(&sets, &args, "description", update.Description)
	appendOptionalSet(&sets, &args, "published", update.Published)
	appendOptionalSet(&sets, &args, "date_published", update.DatePublished)
	appendOptionalSet(&sets, &args, "access_status", update.AccessStatus)
	appendOptionalSet(&sets, &args, "open_access_date", update.OpenAccessDate)
	appendOptionalSet(&sets, &args, "doi", update.DOI)
	appendOptionalSet(&sets, &args, "cover_image_url", update.CoverImageURL)
	appendOptionalSet(&sets, &args, "cover_image_alt_text", update.CoverImageAltText)
	appendOptionalSet(&sets, &args, "show_volume", update.ShowVolume)
	appendOptionalSet(&sets, &args, "show_number", update.ShowNumber)
	appendOptionalSet(&sets, &args, "show_year", update.ShowYear)
	appendOptionalSet(&sets, &args, "show_title", update.ShowTitle)

	if len(sets) == 0 {
		return nil // Nothing to update
	}

	args = append(args, updatedByUserID)
	sets = append(sets, fmt.Sprintf("last_updated_by = $%d", len(args)))
	sets = append(sets, "last_updated_at = NOW()", "version = version + 1")

	args = append(args, issueID)
	query := fmt.Sprintf("UPDATE issues SET %s WHERE issue_id = $%d;", strings.Join(sets, ", "), len(args))

	result, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23502" { // not_null_violation
			return apperrors.NewValidationFailedError("cannot clear a required issue field", err)
		}
		return apperrors.NewAppError(500, "failed to update issue "+issueID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("issue " + issueID + " not found")
	}
	return nil
}

func (r *PgxIssueRepository) DeleteIssue(ctx context.Context, issueID string) error {
	query := `DELETE FROM issues WHERE issue_id = $1;`
	result, err := r.Pool.Exec(ctx, query, issueID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewConflictError("issue " + issueID + " still has content attached")
		}
		return apperrors.NewAppError(500, "failed to delete issue "+issueID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("issue " + issueID + " not found")
	}
	return nil
}

// FindLatestPublishedIssue retrieves the most recently published issue of a
// journal, ordered by publication date. excludeIssueID lets the caller skip
// the issue currently being unpublished or deleted.
func (r *PgxIssueRepository) FindLatestPublishedIssue(ctx context.Context, journalID string, excludeIssueID *string) (*domain.Issue, error) {
	filter := `WHERE i.journal_id = $1 AND i.published = true`
	args := []any{journalID}
	if excludeIssueID != nil {
		filter += ` AND i.issue_id != $2`
		args = append(args, *excludeIssueID)
	}
	filter += ` ORDER BY i.date_published DESC, i.created_at DESC LIMIT 1`

	issues, err := r.getIssues(ctx, filter, args...)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &issues[0], nil
}

// ListIssues retrieves a paginated list of issues using token-based pagination.
// Published issues sort first by publication date, then unpublished issues by
// creation date. It returns the issues, a token for the next page (if any),
// and an error.
func (r *PgxIssueRepository) ListIssues(ctx context.Context, filter portsrepo.IssueFilter, limit int, nextToken *string) ([]domain.Issue, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	var clauses []string
	var args []any

	if len(filter.JournalIDs) > 0 {
		args = append(args, filter.JournalIDs)
		clauses = append(clauses, fmt.Sprintf("i.journal_id = ANY($%d)", len(args)))
	}
	if len(filter.IssueIDs) > 0 {
		args = append(args, filter.IssueIDs)
		clauses = append(clauses, fmt.Sprintf("i.issue_id = ANY($%d)", len(args)))
	}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		clauses = append(clauses, fmt.Sprintf("i.published = $%d", len(args)))
	}
	if filter.Volume != nil {
		args = append(args, *filter.Volume)
		clauses = append(clauses, fmt.Sprintf("i.volume = $%d", len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		clauses = append(clauses, fmt.Sprintf("i.year = $%d", len(args)))
	}

	// Keyset cursor over (published, sort_date, created_at). The sort date is
	// the publication date for published issues and the creation date for
	// unpublished ones, so the ordering is stable across both groups.
	if nextToken != nil && *nextToken != "" {
		fields, decodeErr := pagination.DecodeCursor(*nextToken, 3)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		lastPublished := fields[0] == "1"
		lastSortDate, err1 := time.Parse(pagination.TimeFormat, fields[1])
		lastCreatedAt, err2 := time.Parse(pagination.TimeFormat, fields[2])
		if err1 != nil || err2 != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", errors.Join(err1, err2))
		}
		args = append(args, lastPublished, lastSortDate, lastCreatedAt)
		clauses = append(clauses, fmt.Sprintf(
			"(i.published, COALESCE(i.date_published, i.created_at), i.created_at) < ($%d, $%d, $%d)",
			len(args)-2, len(args)-1, len(args)))
	}

	query := FULL_ISSUE_SELECT_QUERY
	if len(clauses) > 0 {
		query += "WHERE " + strings.Join(clauses, " AND ") + " "
	}
	query += `ORDER BY i.published DESC, COALESCE(i.date_published, i.created_at) DESC, i.created_at DESC`
	args = append(args, fetchLimit)
	query += " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query issues", err)
	}
	defer rows.Close()
	issues, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Issue])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to collect issue rows", err)
	}

	var nextTokenVal *string
	if len(issues) > limit {
		last := issues[limit-1] // The actual last item of the current page
		sortDate := last.CreatedAt
		publishedFlag := "0"
		if last.Published {
			publishedFlag = "1"
			if last.DatePublished != nil {
				sortDate = *last.DatePublished
			}
		}
		token := pagination.EncodeCursor(
			publishedFlag,
			sortDate.Format(pagination.TimeFormat),
			last.CreatedAt.Format(pagination.TimeFormat),
		)
		nextTokenVal = &token
		issues = issues[:limit]
	}

	return issues, nextTokenVal, nil
}
