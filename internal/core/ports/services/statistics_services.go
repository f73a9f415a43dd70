package services

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// StatisticsSvcFacade defines usage-event recording, metric compilation and
// metric retrieval.
type StatisticsSvcFacade interface {
	// RecordUsageEvent stages one reader interaction into the current load
	// batch. Recording is best-effort; errors are logged, not surfaced.
	RecordUsageEvent(ctx context.Context, journalID string, assocType domain.AssocType, assocID string)

	// EnqueueUsageStatsJob closes the current load batch and enqueues a
	// compile job for it. It returns the load ID of the enqueued batch, or
	// apperrors.ErrNotFound when there is nothing staged.
	EnqueueUsageStatsJob(ctx context.Context) (string, error)

	// CompileUsageStats deletes any metric rows previously compiled for the
	// load and re-aggregates them from staged events. The operation is
	// idempotent per load ID. It returns the number of metric rows written.
	CompileUsageStats(ctx context.Context, loadID string) (int, error)

	// GetMetrics retrieves compiled daily metrics for an entity.
	GetMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time, requestingUserID string) ([]domain.MetricRow, error)
}
