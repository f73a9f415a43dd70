package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSubmissionRepository struct {
	BaseRepository
}

// newPgxSubmissionRepository creates a new repository for submission,
// publication and galley data.
func newPgxSubmissionRepository(pool *pgxpool.Pool) portsrepo.SubmissionRepositoryWithTx {
	return &PgxSubmissionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSubmissionRepository implements portsrepo.SubmissionRepositoryWithTx
var _ portsrepo.SubmissionRepositoryWithTx = (*PgxSubmissionRepository)(nil)

var FULL_SUBMISSION_SELECT_QUERY = `
SELECT
	s.submission_id, s.journal_id, s.status, s.current_publication_id, s.date_submitted,
	s.created_at, s.created_by, s.last_updated_at, s.last_updated_by
FROM submissions s
`

var FULL_PUBLICATION_SELECT_QUERY = `
SELECT
	p.publication_id, p.submission_id, p.issue_id, p.version, p.status,
	p.title, p.abstract, p.date_published, p.doi,
	p.created_at, p.created_by, p.last_updated_at, p.last_updated_by
FROM publications p
`

// getSubmissions runs the full select with the given filter clause appended.
func (r *PgxSubmissionRepository) getSubmissions(ctx context.Context, filterQuery string, args ...any) ([]domain.Submission, error) {
	query := FULL_SUBMISSION_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query submissions", err)
	}
	defer rows.Close()
	submissions, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Submission])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Submission{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect submission rows", err)
	}

	return submissions, nil
}

func (r *PgxSubmissionRepository) getPublications(ctx context.Context, filterQuery string, args ...any) ([]domain.Publication, error) {
	query := FULL_PUBLICATION_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query publications", err)
	}
	defer rows.Close()
	publications, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Publication])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Publication{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect publication rows", err)
	}

	return publications, nil
}

func (r *PgxSubmissionRepository) FindSubmissionByID(ctx context.Context, submissionID string) (*domain.Submission, error) {
	query := `WHERE s.submission_id = $1`
	submissions, err := r.getSubmissions(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	if len(submissions) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &submissions[0], nil
}

// ListSubmissions retrieves submissions matching the filter, newest first.
// The issue filter matches through the publications table so that scheduled
// and published content of an issue can be listed together.
func (r *PgxSubmissionRepository) ListSubmissions(ctx context.Context, filter portsrepo.SubmissionFilter) ([]domain.Submission, error) {
	var clauses []string
	var args []any

	if len(filter.JournalIDs) > 0 {
		args = append(args, filter.JournalIDs)
		clauses = append(clauses, fmt.Sprintf("s.journal_id = ANY($%d)", len(args)))
	}
	if len(filter.StatusIn) > 0 {
		statuses := make([]string, len(filter.StatusIn))
		for i, st := range filter.StatusIn {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		clauses = append(clauses, fmt.Sprintf("s.status = ANY($%d)", len(args)))
	}
	if len(filter.IssueIDs) > 0 {
		args = append(args, filter.IssueIDs)
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM publications p WHERE p.submission_id = s.submission_id AND p.issue_id = ANY($%d))",
			len(args)))
	}

	filterQuery := ""
	if len(clauses) > 0 {
		filterQuery = "WHERE " + strings.Join(clauses, " AND ") + " "
	}
	filterQuery += "ORDER BY s.date_submitted DESC, s.submission_id;"

	return r.getSubmissions(ctx, filterQuery, args...)
}

func (r *PgxSubmissionRepository) SaveSubmission(ctx context.Context, submission domain.Submission) error {
	query := `
		INSERT INTO submissions (
			submission_id, journal_id, status, current_publication_id, date_submitted,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		submission.SubmissionID,
		submission.JournalID,
		submission.Status,
		submission.CurrentPublicationID,
		submission.DateSubmitted,
		submission.CreatedAt,
		submission.CreatedBy,
		submission.LastUpdatedAt,
		submission.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("submission ID " + submission.SubmissionID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("journal does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save submission "+submission.SubmissionID, err)
	}
	return nil
}

func (r *PgxSubmissionRepository) UpdateSubmissionStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus, updatedByUserID string) error {
	query := `
		UPDATE submissions
		SET status = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE submission_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, status, updatedByUserID, submissionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of submission "+submissionID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("submission " + submissionID + " not found")
	}
	return nil
}

func (r *PgxSubmissionRepository) UpdateCurrentPublication(ctx context.Context, submissionID string, publicationID string, updatedByUserID string) error {
	query := `
		UPDATE submissions
		SET current_publication_id = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE submission_id = $3;
	`
	result, err := r.Pool.Exec(ctx, query, publicationID, updatedByUserID, submissionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewValidationFailedError("publication does not exist", err)
		}
		return apperrors.NewAppError(500, "failed to update current publication of submission "+submissionID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("submission " + submissionID + " not found")
	}
	return nil
}

// recomputeSubmissionStatusTx re-derives the submission status from its
// publications inside an existing transaction. DECLINED is an editorial
// decision and is never overwritten.
func (r *PgxSubmissionRepository) recomputeSubmissionStatusTx(ctx context.Context, tx pgx.Tx, submissionID string, updatedByUserID string) (domain.SubmissionStatus, error) {
	var current domain.SubmissionStatus
	err := tx.QueryRow(ctx, `SELECT status FROM submissions WHERE submission_id = $1 FOR UPDATE;`, submissionID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("submission " + submissionID + " not found")
		}
		return "", apperrors.NewAppError(500, "failed to lock submission "+submissionID, err)
	}
	if current == domain.SubmissionDeclined {
		return domain.SubmissionDeclined, nil
	}

	rows, err := tx.Query(ctx, `SELECT status FROM publications WHERE submission_id = $1;`, submissionID)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to query publications of submission "+submissionID, err)
	}
	defer rows.Close()

	var publications []domain.Publication
	for rows.Next() {
		var p domain.Publication
		if err := rows.Scan(&p.Status); err != nil {
			return "", apperrors.NewAppError(500, "failed to scan publication status", err)
		}
		publications = append(publications, p)
	}
	if err := rows.Err(); err != nil {
		return "", apperrors.NewAppError(500, "error iterating publication statuses", err)
	}

	derived := domain.DeriveSubmissionStatus(publications)
	if derived == current {
		return derived, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE submissions
		SET status = $1, last_updated_at = NOW(), last_updated_by = $2
		WHERE submission_id = $3;
	`, derived, updatedByUserID, submissionID)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to update status of submission "+submissionID, err)
	}
	return derived, nil
}

// RecomputeSubmissionStatus re-derives and persists the submission's status in
// its own transaction. It returns the resulting status.
func (r *PgxSubmissionRepository) RecomputeSubmissionStatus(ctx context.Context, submissionID string, updatedByUserID string) (domain.SubmissionStatus, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	status, err := r.recomputeSubmissionStatusTx(ctx, tx, submissionID, updatedByUserID)
	if err != nil {
		return "", err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return status, nil
}

func (r *PgxSubmissionRepository) FindPublicationByID(ctx context.Context, publicationID string) (*domain.Publication, error) {
	query := `WHERE p.publication_id = $1`
	publications, err := r.getPublications(ctx, query, publicationID)
	if err != nil {
		return nil, err
	}
	if len(publications) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &publications[0], nil
}

func (r *PgxSubmissionRepository) FindPublicationsBySubmissionID(ctx context.Context, submissionID string) ([]domain.Publication, error) {
	query := `WHERE p.submission_id = $1 ORDER BY p.version;`
	return r.getPublications(ctx, query, submissionID)
}

func (r *PgxSubmissionRepository) FindPublicationsByIssueID(ctx context.Context, issueID string) ([]domain.Publication, error) {
	query := `WHERE p.issue_id = $1 ORDER BY p.created_at, p.publication_id;`
	return r.getPublications(ctx, query, issueID)
}

func (r *PgxSubmissionRepository) SavePublication(ctx context.Context, publication domain.Publication) error {
	query := `
		INSERT INTO publications (
			publication_id, submission_id, issue_id, version, status,
			title, abstract, date_published, doi,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		publication.PublicationID,
		publication.SubmissionID,
		publication.IssueID,
		publication.Version,
		publication.Status,
		publication.Title,
		publication.Abstract,
		publication.DatePublished,
		publication.DOI,
		publication.CreatedAt,
		publication.CreatedBy,
		publication.LastUpdatedAt,
		publication.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("publication ID " + publication.PublicationID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("submission or issue does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save publication "+publication.PublicationID, err)
	}
	return nil
}

// EditPublication applies a partial update. Only fields marked as set are
// written; explicit nulls clear the underlying column.
func (r *PgxSubmissionRepository) EditPublication(ctx context.Context, publicationID string, update domain.PublicationUpdate, updatedByUserID string) error {
	var sets []string
	var args []any

	appendOptionalSet(&sets, &args, "issue_id", update.IssueID)
	appendOptionalSet(&sets, &args, "status", update.Status)
	appendOptionalSet(&sets, &args, "title", update.Title)
	appendOptionalSet(&sets, &args, "abstract", update.Abstract)
	appendOptionalSet(&sets, &args, "date_published", update.DatePublished)
	appendOptionalSet(&sets, &args, "doi", update.DOI)

	if len(sets) == 0 {
		return nil // Nothing to update
	}

	args = append(args, updatedByUserID)
	sets = append(sets, fmt.Sprintf("last_updated_by = $%d", len(args)))
	sets = append(sets, "last_updated_at = NOW()")

	args = append(args, publicationID)
	query := fmt.Sprintf("UPDATE publications SET %s WHERE publication_id = $%d;", strings.Join(sets, ", "), len(args))

	result, err := r.Pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("issue does not exist", err)
			}
			if pgErr.Code == "23502" { // not_null_violation
				return apperrors.NewValidationFailedError("cannot clear a required publication field", err)
			}
		}
		return apperrors.NewAppError(500, "failed to update publication "+publicationID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("publication " + publicationID + " not found")
	}
	return nil
}

// PublishPublication moves the publication as far toward published as its
// issue allows: PUBLISHED with a fresh DatePublished when the issue is
// published (or there is no issue), SCHEDULED otherwise. The owning
// submission's status is recomputed in the same transaction.
func (r *PgxSubmissionRepository) PublishPublication(ctx context.Context, publicationID string, updatedByUserID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var submissionID string
	var issueID *string
	var issuePublished *bool
	err = tx.QueryRow(ctx, `
		SELECT p.submission_id, p.issue_id, i.published
		FROM publications p
		LEFT JOIN issues i ON p.issue_id = i.issue_id
		WHERE p.publication_id = $1
		FOR UPDATE OF p;
	`, publicationID).Scan(&submissionID, &issueID, &issuePublished)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("publication " + publicationID + " not found")
		}
		return apperrors.NewAppError(500, "failed to lock publication "+publicationID, err)
	}

	// A publication lands on PUBLISHED only when its issue is out (or it has
	// no issue at all). Otherwise it parks on SCHEDULED until the issue ships.
	goesLive := issueID == nil || (issuePublished != nil && *issuePublished)

	if goesLive {
		_, err = tx.Exec(ctx, `
			UPDATE publications
			SET status = $1, date_published = NOW(), last_updated_at = NOW(), last_updated_by = $2
			WHERE publication_id = $3;
		`, domain.SubmissionPublished, updatedByUserID, publicationID)
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE publications
			SET status = $1, last_updated_at = NOW(), last_updated_by = $2
			WHERE publication_id = $3;
		`, domain.SubmissionScheduled, updatedByUserID, publicationID)
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to publish publication "+publicationID, err)
	}

	if _, err := r.recomputeSubmissionStatusTx(ctx, tx, submissionID, updatedByUserID); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UnpublishPublication reverts the publication to QUEUED and clears its
// publication date. The owning submission's status is recomputed in the same
// transaction.
func (r *PgxSubmissionRepository) UnpublishPublication(ctx context.Context, publicationID string, updatedByUserID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var submissionID string
	err = tx.QueryRow(ctx, `
		SELECT submission_id FROM publications WHERE publication_id = $1 FOR UPDATE;
	`, publicationID).Scan(&submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("publication " + publicationID + " not found")
		}
		return apperrors.NewAppError(500, "failed to lock publication "+publicationID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE publications
		SET status = $1, date_published = NULL, last_updated_at = NOW(), last_updated_by = $2
		WHERE publication_id = $3;
	`, domain.SubmissionQueued, updatedByUserID, publicationID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to unpublish publication "+publicationID, err)
	}

	if _, err := r.recomputeSubmissionStatusTx(ctx, tx, submissionID, updatedByUserID); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxSubmissionRepository) FindGalleysByPublicationID(ctx context.Context, publicationID string) ([]domain.Galley, error) {
	query := `
		SELECT
			g.galley_id, g.publication_id, g.label, g.locale, g.url_remote, g.file_id, g.seq,
			g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
		FROM galleys g
		WHERE g.publication_id = $1
		ORDER BY g.seq, g.galley_id;
	`
	rows, err := r.Pool.Query(ctx, query, publicationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query galleys for publication "+publicationID, err)
	}
	defer rows.Close()
	galleys, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Galley])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Galley{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect galley rows", err)
	}
	return galleys, nil
}

func (r *PgxSubmissionRepository) SaveGalley(ctx context.Context, galley domain.Galley) error {
	query := `
		INSERT INTO galleys (
			galley_id, publication_id, label, locale, url_remote, file_id, seq,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		galley.GalleyID,
		galley.PublicationID,
		galley.Label,
		galley.Locale,
		galley.URLRemote,
		galley.FileID,
		galley.Seq,
		galley.CreatedAt,
		galley.CreatedBy,
		galley.LastUpdatedAt,
		galley.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("galley ID " + galley.GalleyID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("publication does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save galley "+galley.GalleyID, err)
	}
	return nil
}

func (r *PgxSubmissionRepository) DeleteGalley(ctx context.Context, galleyID string) error {
	query := `DELETE FROM galleys WHERE galley_id = $1;`
	result, err := r.Pool.Exec(ctx, query, galleyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete galley "+galleyID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("galley " + galleyID + " not found")
	}
	return nil
}
