package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
)

// usageEventFlushSize is how many staged events accumulate in memory before
// they are written to the events table.
const usageEventFlushSize = 100

// jobConnection names the queue connection jobs are enqueued on. There is a
// single database-backed connection.
const jobConnection = "database"

// statisticsService stages usage events under a load ID and compiles closed
// loads into daily metric rows via the job queue.
type statisticsService struct {
	statsRepo  portsrepo.StatisticsRepository
	jobRepo    portsrepo.JobRepository
	journalSvc portssvc.JournalAuthorizerSvc

	mu     sync.Mutex
	loadID string
	staged []domain.UsageEvent
}

// NewStatisticsService creates a new StatisticsService.
func NewStatisticsService(
	statsRepo portsrepo.StatisticsRepository,
	jobRepo portsrepo.JobRepository,
	journalSvc portssvc.JournalAuthorizerSvc,
) portssvc.StatisticsSvcFacade {
	return &statisticsService{
		statsRepo:  statsRepo,
		jobRepo:    jobRepo,
		journalSvc: journalSvc,
	}
}

// Ensure statisticsService implements the portssvc.StatisticsSvcFacade interface
var _ portssvc.StatisticsSvcFacade = (*statisticsService)(nil)

// RecordUsageEvent stages one reader interaction into the current load batch.
// Recording is best-effort: failures are logged and the request that triggered
// the event proceeds unaffected.
func (s *statisticsService) RecordUsageEvent(ctx context.Context, journalID string, assocType domain.AssocType, assocID string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadID == "" {
		s.loadID = uuid.NewString()
	}

	s.staged = append(s.staged, domain.UsageEvent{
		EventID:    uuid.NewString(),
		LoadID:     s.loadID,
		JournalID:  journalID,
		AssocType:  assocType,
		AssocID:    assocID,
		OccurredAt: time.Now().UTC(),
	})

	if len(s.staged) < usageEventFlushSize {
		return
	}

	// Flush under the lock so a concurrently closed load cannot lose events.
	if err := s.statsRepo.InsertUsageEvents(ctx, s.staged); err != nil {
		logger.Warn("Failed to flush staged usage events, keeping them buffered", slog.String("error", err.Error()), slog.String("load_id", s.loadID), slog.Int("staged", len(s.staged)))
		return
	}
	s.staged = nil
}

// EnqueueUsageStatsJob closes the current load batch: remaining staged events
// are written out and a compile job for the load is enqueued. Subsequent
// events start a fresh load.
func (s *statisticsService) EnqueueUsageStatsJob(ctx context.Context) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadID == "" {
		return "", apperrors.ErrNotFound
	}

	if len(s.staged) > 0 {
		if err := s.statsRepo.InsertUsageEvents(ctx, s.staged); err != nil {
			logger.Error("Failed to flush staged usage events before enqueue", slog.String("error", err.Error()), slog.String("load_id", s.loadID))
			return "", fmt.Errorf("failed to flush staged usage events: %w", err)
		}
		s.staged = nil
	}

	payload, err := json.Marshal(domain.UsageStatsJobPayload{LoadID: s.loadID})
	if err != nil {
		return "", fmt.Errorf("failed to encode usage stats job payload: %w", err)
	}

	jobID, err := s.jobRepo.EnqueueJob(ctx, domain.QueueUsageStats, jobConnection, payload, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to enqueue usage stats job", slog.String("error", err.Error()), slog.String("load_id", s.loadID))
		return "", fmt.Errorf("failed to enqueue usage stats job: %w", err)
	}

	closedLoadID := s.loadID
	s.loadID = ""

	logger.Info("Usage stats job enqueued", slog.String("load_id", closedLoadID), slog.Int64("job_id", jobID))
	return closedLoadID, nil
}

// metricKey groups usage events into one daily metric row.
type metricKey struct {
	journalID string
	assocType domain.AssocType
	assocID   string
	day       string
}

// CompileUsageStats aggregates the staged events of one load into daily metric
// rows. Previously compiled rows for the load are removed first, so running
// the same load twice leaves the metrics table unchanged.
func (s *statisticsService) CompileUsageStats(ctx context.Context, loadID string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	removed, err := s.statsRepo.DeleteMetricsByLoadID(ctx, loadID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear metrics of load %s: %w", loadID, err)
	}
	if removed > 0 {
		logger.Info("Recompiling load, previous metrics removed", slog.String("load_id", loadID), slog.Int64("removed", removed))
	}

	events, err := s.statsRepo.ListUsageEventsByLoadID(ctx, loadID)
	if err != nil {
		return 0, fmt.Errorf("failed to load usage events of load %s: %w", loadID, err)
	}
	if len(events) == 0 {
		logger.Debug("No usage events staged for load", slog.String("load_id", loadID))
		return 0, nil
	}

	counts := make(map[metricKey]int64)
	for _, e := range events {
		key := metricKey{
			journalID: e.JournalID,
			assocType: e.AssocType,
			assocID:   e.AssocID,
			day:       domain.MetricsDay(e.OccurredAt),
		}
		counts[key]++
	}

	rows := make([]domain.MetricRow, 0, len(counts))
	for key, metric := range counts {
		rows = append(rows, domain.MetricRow{
			JournalID: key.journalID,
			AssocType: key.assocType,
			AssocID:   key.assocID,
			LoadID:    loadID,
			Day:       key.day,
			Metric:    metric,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Day != rows[j].Day {
			return rows[i].Day < rows[j].Day
		}
		if rows[i].AssocType != rows[j].AssocType {
			return rows[i].AssocType < rows[j].AssocType
		}
		return rows[i].AssocID < rows[j].AssocID
	})

	if err := s.statsRepo.InsertMetrics(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to insert metrics of load %s: %w", loadID, err)
	}

	logger.Info("Usage stats compiled", slog.String("load_id", loadID), slog.Int("events", len(events)), slog.Int("rows", len(rows)))
	return len(rows), nil
}

// GetMetrics retrieves compiled daily metrics for an entity. Metrics are
// editorial data and require at least assistant access to the journal.
func (s *statisticsService) GetMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time, requestingUserID string) ([]domain.MetricRow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
		logger.Warn("Authorization failed for GetMetrics", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	if to.Before(from) {
		return nil, apperrors.NewValidationError("metrics range end must not precede its start")
	}

	return s.statsRepo.QueryMetrics(ctx, journalID, assocType, assocID, from, to)
}
