package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxStatisticsRepository struct {
	BaseRepository
}

// newPgxStatisticsRepository creates a new repository for usage events and
// compiled metrics.
func newPgxStatisticsRepository(pool *pgxpool.Pool) portsrepo.StatisticsRepository {
	return &PgxStatisticsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxStatisticsRepository implements portsrepo.StatisticsRepository
var _ portsrepo.StatisticsRepository = (*PgxStatisticsRepository)(nil)

// InsertUsageEvents stages a batch of usage events in a single round trip.
func (r *PgxStatisticsRepository) InsertUsageEvents(ctx context.Context, events []domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO usage_events (event_id, load_id, journal_id, assoc_type, assoc_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, e := range events {
		batch.Queue(query, e.EventID, e.LoadID, e.JournalID, e.AssocType, e.AssocID, e.OccurredAt)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert usage events", err)
	}
	return nil
}

func (r *PgxStatisticsRepository) ListUsageEventsByLoadID(ctx context.Context, loadID string) ([]domain.UsageEvent, error) {
	query := `
		SELECT e.event_id, e.load_id, e.journal_id, e.assoc_type, e.assoc_id, e.occurred_at
		FROM usage_events e
		WHERE e.load_id = $1
		ORDER BY e.occurred_at, e.event_id;
	`
	rows, err := r.Pool.Query(ctx, query, loadID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query usage events for load "+loadID, err)
	}
	defer rows.Close()
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.UsageEvent])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.UsageEvent{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect usage event rows", err)
	}
	return events, nil
}

// DeleteMetricsByLoadID removes metric rows compiled from a load so the load
// can be recompiled without double counting.
func (r *PgxStatisticsRepository) DeleteMetricsByLoadID(ctx context.Context, loadID string) (int64, error) {
	result, err := r.Pool.Exec(ctx, `DELETE FROM metrics WHERE load_id = $1;`, loadID)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to delete metrics for load "+loadID, err)
	}
	return result.RowsAffected(), nil
}

func (r *PgxStatisticsRepository) InsertMetrics(ctx context.Context, metricRows []domain.MetricRow) error {
	if len(metricRows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO metrics (journal_id, assoc_type, assoc_id, load_id, day, metric)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	for _, m := range metricRows {
		batch.Queue(query, m.JournalID, m.AssocType, m.AssocID, m.LoadID, m.Day, m.Metric)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert metric rows", err)
	}
	return nil
}

// QueryMetrics sums compiled daily metrics for one entity over a day range.
// Bounds are inclusive and compared on the YYYYMMDD day bucket.
func (r *PgxStatisticsRepository) QueryMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time) ([]domain.MetricRow, error) {
	query := `
		SELECT m.journal_id, m.assoc_type, m.assoc_id, '' AS load_id, m.day, SUM(m.metric) AS metric
		FROM metrics m
		WHERE m.journal_id = $1 AND m.assoc_type = $2 AND m.assoc_id = $3
		  AND m.day >= $4 AND m.day <= $5
		GROUP BY m.journal_id, m.assoc_type, m.assoc_id, m.day
		ORDER BY m.day;
	`
	rows, err := r.Pool.Query(ctx, query,
		journalID, assocType, assocID,
		domain.MetricsDay(from), domain.MetricsDay(to),
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query metrics", err)
	}
	defer rows.Close()
	metrics, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.MetricRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.MetricRow{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect metric rows", err)
	}
	return metrics, nil
}
