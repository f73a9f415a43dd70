package repositories

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// StatisticsRepository defines operations for staging usage events and
// compiling them into daily metrics.
type StatisticsRepository interface {
	// InsertUsageEvents stages a batch of usage events.
	InsertUsageEvents(ctx context.Context, events []domain.UsageEvent) error

	// ListUsageEventsByLoadID retrieves all staged events of one load batch.
	ListUsageEventsByLoadID(ctx context.Context, loadID string) ([]domain.UsageEvent, error)

	// DeleteMetricsByLoadID removes previously compiled metric rows for a load,
	// making recompilation idempotent. It returns the number of rows removed.
	DeleteMetricsByLoadID(ctx context.Context, loadID string) (int64, error)

	// InsertMetrics persists compiled metric rows.
	InsertMetrics(ctx context.Context, rows []domain.MetricRow) error

	// QueryMetrics retrieves compiled daily metrics for an entity over a date
	// range, summed per day.
	QueryMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time) ([]domain.MetricRow, error)
}
