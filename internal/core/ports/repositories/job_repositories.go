package repositories

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// JobRepository defines operations on the persisted job queue. Claiming uses
// row locking so multiple workers never process the same job concurrently.
type JobRepository interface {
	// EnqueueJob inserts a job available for processing at availableAt.
	EnqueueJob(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error)

	// ClaimJobs reserves up to limit due jobs from a queue, marking them
	// reserved and incrementing their attempt counter. Reserved jobs are
	// skipped by concurrent claimers.
	ClaimJobs(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error)

	// DeleteJob removes a completed job.
	DeleteJob(ctx context.Context, jobID int64) error

	// ReleaseJob returns a failed job to the queue, delaying its next run
	// until availableAt.
	ReleaseJob(ctx context.Context, jobID int64, availableAt time.Time) error
}
