package pgsql

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJobRepository struct {
	BaseRepository
}

// newPgxJobRepository creates a new repository for the persisted job queue.
func newPgxJobRepository(pool *pgxpool.Pool) portsrepo.JobRepository {
	return &PgxJobRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxJobRepository implements portsrepo.JobRepository
var _ portsrepo.JobRepository = (*PgxJobRepository)(nil)

func (r *PgxJobRepository) EnqueueJob(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error) {
	var jobID int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO jobs (queue, connection, payload, attempts, reserved_at, available_at, created_at)
		VALUES ($1, $2, $3, 0, NULL, $4, NOW())
		RETURNING job_id;
	`, queue, connection, payload, availableAt).Scan(&jobID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to enqueue job on queue "+queue, err)
	}
	return jobID, nil
}

// ClaimJobs reserves up to limit due jobs. SKIP LOCKED keeps concurrent
// workers from claiming the same rows; the reservation survives the claim
// transaction so a crashed worker's jobs stay visible via reserved_at.
func (r *PgxJobRepository) ClaimJobs(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
	if limit <= 0 {
		limit = 10
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	rows, err := tx.Query(ctx, `
		UPDATE jobs
		SET reserved_at = NOW(), attempts = attempts + 1
		WHERE job_id IN (
			SELECT job_id FROM jobs
			WHERE queue = $1 AND reserved_at IS NULL AND available_at <= NOW()
			ORDER BY available_at, job_id
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING job_id, queue, connection, payload, attempts, reserved_at, available_at, created_at;
	`, queue, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to claim jobs from queue "+queue, err)
	}
	jobs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.QueuedJob])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect claimed jobs", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *PgxJobRepository) DeleteJob(ctx context.Context, jobID int64) error {
	result, err := r.Pool.Exec(ctx, `DELETE FROM jobs WHERE job_id = $1;`, jobID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete job", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("job not found")
	}
	return nil
}

// ReleaseJob returns a failed job to the queue for a later attempt.
func (r *PgxJobRepository) ReleaseJob(ctx context.Context, jobID int64, availableAt time.Time) error {
	result, err := r.Pool.Exec(ctx, `
		UPDATE jobs
		SET reserved_at = NULL, available_at = $1
		WHERE job_id = $2;
	`, availableAt, jobID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to release job", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("job not found")
	}
	return nil
}
