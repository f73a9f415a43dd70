package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
)

// Worker polls the persisted job queue and dispatches due jobs to their
// handlers. Jobs are deleted on success and released with an exponential
// delay on failure, up to the configured attempt limit.
type Worker struct {
	jobRepo     portsrepo.JobRepository
	statsSvc    portssvc.StatisticsSvcFacade
	logger      *slog.Logger
	pollEvery   time.Duration
	batchSize   int
	maxAttempts int

	tokenSvc     portssvc.APITokenSvc
	janitorEvery time.Duration
}

// WorkerOption customizes a Worker beyond the queue processing defaults.
type WorkerOption func(*Worker)

// WithTokenJanitor makes the worker periodically purge expired API tokens on
// the given interval.
func WithTokenJanitor(tokenSvc portssvc.APITokenSvc, every time.Duration) WorkerOption {
	return func(w *Worker) {
		w.tokenSvc = tokenSvc
		w.janitorEvery = every
	}
}

// NewWorker creates a Worker wired to the usage-stats queue.
func NewWorker(cfg *config.Config, jobRepo portsrepo.JobRepository, statsSvc portssvc.StatisticsSvcFacade, logger *slog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		jobRepo:     jobRepo,
		statsSvc:    statsSvc,
		logger:      logger,
		pollEvery:   cfg.JobPollInterval,
		batchSize:   cfg.JobBatchSize,
		maxAttempts: cfg.JobMaxAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls for due jobs until the context is cancelled. It always returns
// the context's error.
func (w *Worker) Run(ctx context.Context) error {
	// Services resolve their logger from the context; give them ours.
	ctx = middleware.WithLogger(ctx, w.logger)

	w.logger.Info("Job worker started",
		slog.Duration("poll_interval", w.pollEvery),
		slog.Int("batch_size", w.batchSize))

	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	// A nil channel blocks forever, so the janitor case is inert unless the
	// worker was built with WithTokenJanitor.
	var janitorC <-chan time.Time
	if w.tokenSvc != nil {
		janitorTicker := time.NewTicker(w.janitorEvery)
		defer janitorTicker.Stop()
		janitorC = janitorTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Job worker stopping", slog.String("reason", ctx.Err().Error()))
			return ctx.Err()
		case <-ticker.C:
			w.processBatch(ctx)
		case <-janitorC:
			w.purgeExpiredTokens(ctx)
		}
	}
}

// purgeExpiredTokens retires API tokens past their expiry.
func (w *Worker) purgeExpiredTokens(ctx context.Context) {
	purged, err := w.tokenSvc.PurgeExpiredTokens(ctx)
	if err != nil {
		w.logger.Error("Failed to purge expired API tokens", slog.String("error", err.Error()))
		return
	}
	if purged > 0 {
		w.logger.Info("Purged expired API tokens", slog.Int64("count", purged))
	}
}

// processBatch claims one batch of due jobs and runs them sequentially.
func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.jobRepo.ClaimJobs(ctx, domain.QueueUsageStats, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to claim jobs", slog.String("error", err.Error()))
		return
	}

	for _, job := range jobs {
		w.processJob(ctx, job)
	}
}

// processJob dispatches a claimed job and settles it: delete on success or
// permanent failure, release with a delay otherwise.
func (w *Worker) processJob(ctx context.Context, job domain.QueuedJob) {
	logger := w.logger.With(slog.Int64("job_id", job.JobID), slog.String("queue", job.Queue), slog.Int("attempts", job.Attempts))

	err := w.dispatch(ctx, job)
	if err == nil {
		if delErr := w.jobRepo.DeleteJob(ctx, job.JobID); delErr != nil {
			logger.Error("Failed to delete completed job", slog.String("error", delErr.Error()))
		}
		return
	}

	logger.Error("Job failed", slog.String("error", err.Error()))

	if job.Attempts >= w.maxAttempts {
		// Out of attempts; remove the job so it cannot wedge the queue.
		logger.Error("Job exhausted its attempts, dropping it")
		if delErr := w.jobRepo.DeleteJob(ctx, job.JobID); delErr != nil {
			logger.Error("Failed to drop exhausted job", slog.String("error", delErr.Error()))
		}
		return
	}

	delay := retryDelay(job.Attempts)
	if relErr := w.jobRepo.ReleaseJob(ctx, job.JobID, time.Now().UTC().Add(delay)); relErr != nil {
		logger.Error("Failed to release job", slog.String("error", relErr.Error()))
		return
	}
	logger.Warn("Job released for retry", slog.Duration("delay", delay))
}

// dispatch routes a job to the handler for its queue.
func (w *Worker) dispatch(ctx context.Context, job domain.QueuedJob) error {
	switch job.Queue {
	case domain.QueueUsageStats:
		var payload domain.UsageStatsJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("failed to decode usage stats payload: %w", err)
		}
		rows, err := w.statsSvc.CompileUsageStats(ctx, payload.LoadID)
		if err != nil {
			return err
		}
		w.logger.Info("Usage stats compiled",
			slog.String("load_id", payload.LoadID),
			slog.Int("metric_rows", rows))
		return nil
	default:
		return fmt.Errorf("no handler for queue %q", job.Queue)
	}
}

// retryDelay grows the release delay exponentially with the attempt count.
func retryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Second
	b.MaxInterval = 10 * time.Minute
	b.MaxElapsedTime = 0

	delay := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
