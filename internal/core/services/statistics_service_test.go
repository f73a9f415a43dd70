package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/core/services"
)

// --- Mock StatisticsRepository ---

type MockStatisticsRepository struct {
	mock.Mock
	InsertUsageEventsFn       func(ctx context.Context, events []domain.UsageEvent) error
	ListUsageEventsByLoadIDFn func(ctx context.Context, loadID string) ([]domain.UsageEvent, error)
	DeleteMetricsByLoadIDFn   func(ctx context.Context, loadID string) (int64, error)
	InsertMetricsFn           func(ctx context.Context, rows []domain.MetricRow) error
}

func (m *MockStatisticsRepository) InsertUsageEvents(ctx context.Context, events []domain.UsageEvent) error {
	if m.InsertUsageEventsFn != nil {
		return m.InsertUsageEventsFn(ctx, events)
	}
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockStatisticsRepository) ListUsageEventsByLoadID(ctx context.Context, loadID string) ([]domain.UsageEvent, error) {
	if m.ListUsageEventsByLoadIDFn != nil {
		return m.ListUsageEventsByLoadIDFn(ctx, loadID)
	}
	args := m.Called(ctx, loadID)
	var events []domain.UsageEvent
	if args.Get(0) != nil {
		events = args.Get(0).([]domain.UsageEvent)
	}
	return events, args.Error(1)
}

func (m *MockStatisticsRepository) DeleteMetricsByLoadID(ctx context.Context, loadID string) (int64, error) {
	if m.DeleteMetricsByLoadIDFn != nil {
		return m.DeleteMetricsByLoadIDFn(ctx, loadID)
	}
	args := m.Called(ctx, loadID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatisticsRepository) InsertMetrics(ctx context.Context, rows []domain.MetricRow) error {
	if m.InsertMetricsFn != nil {
		return m.InsertMetricsFn(ctx, rows)
	}
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockStatisticsRepository) QueryMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time) ([]domain.MetricRow, error) {
	args := m.Called(ctx, journalID, assocType, assocID, from, to)
	var rows []domain.MetricRow
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.MetricRow)
	}
	return rows, args.Error(1)
}

// --- Mock JobRepository ---

type MockJobRepository struct {
	mock.Mock
	EnqueueJobFn func(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error)
}

func (m *MockJobRepository) EnqueueJob(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error) {
	if m.EnqueueJobFn != nil {
		return m.EnqueueJobFn(ctx, queue, connection, payload, availableAt)
	}
	args := m.Called(ctx, queue, connection, payload, availableAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) ClaimJobs(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
	args := m.Called(ctx, queue, limit)
	var jobs []domain.QueuedJob
	if args.Get(0) != nil {
		jobs = args.Get(0).([]domain.QueuedJob)
	}
	return jobs, args.Error(1)
}

func (m *MockJobRepository) DeleteJob(ctx context.Context, jobID int64) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobRepository) ReleaseJob(ctx context.Context, jobID int64, availableAt time.Time) error {
	args := m.Called(ctx, jobID, availableAt)
	return args.Error(0)
}

// --- Test Suite ---

type StatisticsServiceTestSuite struct {
	suite.Suite
	mockStatsRepo  *MockStatisticsRepository
	mockJobRepo    *MockJobRepository
	mockAuthorizer *MockJournalAuthorizer
	service        portssvc.StatisticsSvcFacade

	journalID string
	userID    string
}

func (suite *StatisticsServiceTestSuite) SetupTest() {
	suite.mockStatsRepo = new(MockStatisticsRepository)
	suite.mockJobRepo = new(MockJobRepository)
	suite.mockAuthorizer = new(MockJournalAuthorizer)
	suite.service = services.NewStatisticsService(suite.mockStatsRepo, suite.mockJobRepo, suite.mockAuthorizer)

	suite.journalID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- RecordUsageEvent Tests ---

func (suite *StatisticsServiceTestSuite) TestRecordUsageEvent_StagesInMemory() {
	ctx := context.Background()

	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, uuid.NewString())

	// A single event stays buffered; nothing hits the store yet.
	suite.mockStatsRepo.AssertNotCalled(suite.T(), "InsertUsageEvents", mock.Anything, mock.Anything)
}

func (suite *StatisticsServiceTestSuite) TestRecordUsageEvent_FlushesFullBatches() {
	ctx := context.Background()
	var flushed [][]domain.UsageEvent
	suite.mockStatsRepo.InsertUsageEventsFn = func(ctx context.Context, events []domain.UsageEvent) error {
		flushed = append(flushed, events)
		return nil
	}

	for i := 0; i < 100; i++ {
		suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, "issue-1")
	}

	suite.Require().Len(flushed, 1)
	suite.Len(flushed[0], 100)
	loadID := flushed[0][0].LoadID
	suite.NotEmpty(loadID)
	for _, e := range flushed[0] {
		suite.Equal(loadID, e.LoadID)
		suite.Equal(suite.journalID, e.JournalID)
	}
}

// --- EnqueueUsageStatsJob Tests ---

func (suite *StatisticsServiceTestSuite) TestEnqueueUsageStatsJob_FlushesAndEnqueues() {
	ctx := context.Background()
	var staged []domain.UsageEvent
	suite.mockStatsRepo.InsertUsageEventsFn = func(ctx context.Context, events []domain.UsageEvent) error {
		staged = append(staged, events...)
		return nil
	}

	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, "issue-1")
	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeSubmission, "submission-1")

	suite.mockJobRepo.On("EnqueueJob", ctx, domain.QueueUsageStats, "database", mock.MatchedBy(func(payload []byte) bool {
		var p domain.UsageStatsJobPayload
		return json.Unmarshal(payload, &p) == nil && p.LoadID != ""
	}), mock.AnythingOfType("time.Time")).Return(int64(42), nil).Once()

	loadID, err := suite.service.EnqueueUsageStatsJob(ctx)

	suite.Require().NoError(err)
	suite.NotEmpty(loadID)
	suite.Require().Len(staged, 2)
	suite.Equal(loadID, staged[0].LoadID)
	suite.Equal(loadID, staged[1].LoadID)
	suite.mockJobRepo.AssertExpectations(suite.T())
}

func (suite *StatisticsServiceTestSuite) TestEnqueueUsageStatsJob_NothingStaged() {
	ctx := context.Background()

	loadID, err := suite.service.EnqueueUsageStatsJob(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Empty(loadID)
	suite.mockJobRepo.AssertNotCalled(suite.T(), "EnqueueJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatisticsServiceTestSuite) TestEnqueueUsageStatsJob_StartsFreshLoadAfterClose() {
	ctx := context.Background()
	suite.mockStatsRepo.InsertUsageEventsFn = func(ctx context.Context, events []domain.UsageEvent) error {
		return nil
	}
	suite.mockJobRepo.EnqueueJobFn = func(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error) {
		return 1, nil
	}

	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, "issue-1")
	firstLoadID, err := suite.service.EnqueueUsageStatsJob(ctx)
	suite.Require().NoError(err)

	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, "issue-1")
	secondLoadID, err := suite.service.EnqueueUsageStatsJob(ctx)
	suite.Require().NoError(err)

	suite.NotEqual(firstLoadID, secondLoadID)
}

func (suite *StatisticsServiceTestSuite) TestEnqueueUsageStatsJob_FlushFailureKeepsLoadOpen() {
	ctx := context.Background()
	suite.mockStatsRepo.InsertUsageEventsFn = func(ctx context.Context, events []domain.UsageEvent) error {
		return assert.AnError
	}

	suite.service.RecordUsageEvent(ctx, suite.journalID, domain.AssocTypeIssue, "issue-1")

	loadID, err := suite.service.EnqueueUsageStatsJob(ctx)

	suite.Require().Error(err)
	suite.Empty(loadID)
	suite.mockJobRepo.AssertNotCalled(suite.T(), "EnqueueJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- CompileUsageStats Tests ---

func (suite *StatisticsServiceTestSuite) TestCompileUsageStats_AggregatesPerEntityAndDay() {
	ctx := context.Background()
	loadID := uuid.NewString()
	day1 := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day1Later := time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	events := []domain.UsageEvent{
		{EventID: uuid.NewString(), LoadID: loadID, JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-a", OccurredAt: day1},
		{EventID: uuid.NewString(), LoadID: loadID, JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-a", OccurredAt: day1Later},
		{EventID: uuid.NewString(), LoadID: loadID, JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-b", OccurredAt: day1},
		{EventID: uuid.NewString(), LoadID: loadID, JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-a", OccurredAt: day2},
	}

	suite.mockStatsRepo.On("DeleteMetricsByLoadID", ctx, loadID).Return(int64(0), nil).Once()
	suite.mockStatsRepo.On("ListUsageEventsByLoadID", ctx, loadID).Return(events, nil).Once()
	suite.mockStatsRepo.On("InsertMetrics", ctx, mock.MatchedBy(func(rows []domain.MetricRow) bool {
		if len(rows) != 3 {
			return false
		}
		// Two views of issue-a on the first day collapse into one row.
		return rows[0].Day == "20250310" && rows[0].AssocID == "issue-a" && rows[0].Metric == 2 &&
			rows[1].Day == "20250310" && rows[1].AssocID == "issue-b" && rows[1].Metric == 1 &&
			rows[2].Day == "20250311" && rows[2].AssocID == "issue-a" && rows[2].Metric == 1 &&
			rows[0].LoadID == loadID
	})).Return(nil).Once()

	count, err := suite.service.CompileUsageStats(ctx, loadID)

	suite.Require().NoError(err)
	suite.Equal(3, count)
	suite.mockStatsRepo.AssertExpectations(suite.T())
}

func (suite *StatisticsServiceTestSuite) TestCompileUsageStats_RecompileClearsPreviousRowsFirst() {
	ctx := context.Background()
	loadID := uuid.NewString()
	events := []domain.UsageEvent{
		{EventID: uuid.NewString(), LoadID: loadID, JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-a", OccurredAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}

	var calls []string
	suite.mockStatsRepo.DeleteMetricsByLoadIDFn = func(ctx context.Context, gotLoadID string) (int64, error) {
		calls = append(calls, "delete")
		suite.Equal(loadID, gotLoadID)
		return 3, nil
	}
	suite.mockStatsRepo.ListUsageEventsByLoadIDFn = func(ctx context.Context, loadID string) ([]domain.UsageEvent, error) {
		return events, nil
	}
	suite.mockStatsRepo.InsertMetricsFn = func(ctx context.Context, rows []domain.MetricRow) error {
		calls = append(calls, "insert")
		return nil
	}

	count, err := suite.service.CompileUsageStats(ctx, loadID)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	// Old rows of the load must be gone before new ones land, so a rerun
	// cannot double-count.
	suite.Equal([]string{"delete", "insert"}, calls)
}

func (suite *StatisticsServiceTestSuite) TestCompileUsageStats_EmptyLoadWritesNothing() {
	ctx := context.Background()
	loadID := uuid.NewString()

	suite.mockStatsRepo.On("DeleteMetricsByLoadID", ctx, loadID).Return(int64(0), nil).Once()
	suite.mockStatsRepo.On("ListUsageEventsByLoadID", ctx, loadID).Return([]domain.UsageEvent{}, nil).Once()

	count, err := suite.service.CompileUsageStats(ctx, loadID)

	suite.Require().NoError(err)
	suite.Zero(count)
	suite.mockStatsRepo.AssertNotCalled(suite.T(), "InsertMetrics", mock.Anything, mock.Anything)
}

// --- GetMetrics Tests ---

func (suite *StatisticsServiceTestSuite) TestGetMetrics_Success() {
	ctx := context.Background()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	expected := []domain.MetricRow{{JournalID: suite.journalID, AssocType: domain.AssocTypeIssue, AssocID: "issue-a", Day: "20250310", Metric: 12}}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.journalID, domain.RoleAssistant).Return(nil).Once()
	suite.mockStatsRepo.On("QueryMetrics", ctx, suite.journalID, domain.AssocTypeIssue, "issue-a", from, to).Return(expected, nil).Once()

	rows, err := suite.service.GetMetrics(ctx, suite.journalID, domain.AssocTypeIssue, "issue-a", from, to, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(expected, rows)
	suite.mockStatsRepo.AssertExpectations(suite.T())
}

func (suite *StatisticsServiceTestSuite) TestGetMetrics_RequiresJournalMembership() {
	ctx := context.Background()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.journalID, domain.RoleAssistant).Return(apperrors.ErrForbidden).Once()

	rows, err := suite.service.GetMetrics(ctx, suite.journalID, domain.AssocTypeIssue, "issue-a", from, to, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(rows)
	suite.mockStatsRepo.AssertNotCalled(suite.T(), "QueryMetrics", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatisticsServiceTestSuite) TestGetMetrics_RejectsInvertedRange() {
	ctx := context.Background()
	from := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.journalID, domain.RoleAssistant).Return(nil).Once()

	rows, err := suite.service.GetMetrics(ctx, suite.journalID, domain.AssocTypeIssue, "issue-a", from, to, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(rows)
	suite.mockStatsRepo.AssertNotCalled(suite.T(), "QueryMetrics", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStatisticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatisticsServiceTestSuite))
}
