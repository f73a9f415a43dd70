package jobs_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/jobs"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
)

// --- Mock JobRepository (function-backed; the worker loop runs concurrently
// with the test body, so recorded state is guarded by a mutex and settlement
// is signalled over channels) ---

type MockJobRepository struct {
	mock.Mock
	ClaimJobsFn  func(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error)
	DeleteJobFn  func(ctx context.Context, jobID int64) error
	ReleaseJobFn func(ctx context.Context, jobID int64, availableAt time.Time) error
}

func (m *MockJobRepository) EnqueueJob(ctx context.Context, queue string, connection string, payload []byte, availableAt time.Time) (int64, error) {
	args := m.Called(ctx, queue, connection, payload, availableAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobRepository) ClaimJobs(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
	if m.ClaimJobsFn != nil {
		return m.ClaimJobsFn(ctx, queue, limit)
	}
	args := m.Called(ctx, queue, limit)
	var claimed []domain.QueuedJob
	if args.Get(0) != nil {
		claimed = args.Get(0).([]domain.QueuedJob)
	}
	return claimed, args.Error(1)
}

func (m *MockJobRepository) DeleteJob(ctx context.Context, jobID int64) error {
	if m.DeleteJobFn != nil {
		return m.DeleteJobFn(ctx, jobID)
	}
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockJobRepository) ReleaseJob(ctx context.Context, jobID int64, availableAt time.Time) error {
	if m.ReleaseJobFn != nil {
		return m.ReleaseJobFn(ctx, jobID, availableAt)
	}
	args := m.Called(ctx, jobID, availableAt)
	return args.Error(0)
}

// --- Mock StatisticsService ---

type MockStatisticsService struct {
	mock.Mock
	CompileUsageStatsFn func(ctx context.Context, loadID string) (int, error)
}

func (m *MockStatisticsService) RecordUsageEvent(ctx context.Context, journalID string, assocType domain.AssocType, assocID string) {
	m.Called(ctx, journalID, assocType, assocID)
}

func (m *MockStatisticsService) EnqueueUsageStatsJob(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStatisticsService) CompileUsageStats(ctx context.Context, loadID string) (int, error) {
	if m.CompileUsageStatsFn != nil {
		return m.CompileUsageStatsFn(ctx, loadID)
	}
	args := m.Called(ctx, loadID)
	return args.Int(0), args.Error(1)
}

func (m *MockStatisticsService) GetMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time, requestingUserID string) ([]domain.MetricRow, error) {
	args := m.Called(ctx, journalID, assocType, assocID, from, to, requestingUserID)
	var rows []domain.MetricRow
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.MetricRow)
	}
	return rows, args.Error(1)
}

// --- Mock APITokenService (janitor dependency) ---

type MockAPITokenService struct {
	mock.Mock
	PurgeExpiredTokensFn func(ctx context.Context) (int64, error)
}

func (m *MockAPITokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	args := m.Called(ctx, userID, name, expiresIn)
	var token *domain.APIToken
	if args.Get(1) != nil {
		token = args.Get(1).(*domain.APIToken)
	}
	return args.String(0), token, args.Error(2)
}

func (m *MockAPITokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	var tokens []domain.APIToken
	if args.Get(0) != nil {
		tokens = args.Get(0).([]domain.APIToken)
	}
	return tokens, args.Error(1)
}

func (m *MockAPITokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	return m.Called(ctx, userID, tokenID).Error(0)
}

func (m *MockAPITokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAPITokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	args := m.Called(ctx, tokenString)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockAPITokenService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	if m.PurgeExpiredTokensFn != nil {
		return m.PurgeExpiredTokensFn(ctx)
	}
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Suite ---

type WorkerTestSuite struct {
	suite.Suite
	mockJobRepo  *MockJobRepository
	mockStatsSvc *MockStatisticsService
	cfg          *config.Config
	logger       *slog.Logger
}

func (suite *WorkerTestSuite) SetupTest() {
	suite.mockJobRepo = new(MockJobRepository)
	suite.mockStatsSvc = new(MockStatisticsService)
	suite.cfg = &config.Config{
		JobPollInterval: 5 * time.Millisecond,
		JobBatchSize:    10,
		JobMaxAttempts:  3,
	}
	suite.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// claimOnce hands out the given jobs on the first claim and nothing afterwards.
func (suite *WorkerTestSuite) claimOnce(jobs []domain.QueuedJob) {
	var mu sync.Mutex
	claimed := false
	suite.mockJobRepo.ClaimJobsFn = func(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
		suite.Equal(domain.QueueUsageStats, queue)
		mu.Lock()
		defer mu.Unlock()
		if claimed {
			return nil, nil
		}
		claimed = true
		return jobs, nil
	}
}

// runUntil starts the worker, waits for the signal, then stops the worker and
// asserts a clean context-cancelled exit.
func (suite *WorkerTestSuite) runUntil(worker *jobs.Worker, signal <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(ctx)
	}()

	select {
	case <-signal:
	case <-time.After(2 * time.Second):
		cancel()
		suite.FailNow("worker did not settle the job in time")
	}
	cancel()

	select {
	case err := <-errCh:
		suite.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		suite.FailNow("worker did not stop after cancellation")
	}
}

func (suite *WorkerTestSuite) usageStatsJob(jobID int64, loadID string, attempts int) domain.QueuedJob {
	payload, err := json.Marshal(domain.UsageStatsJobPayload{LoadID: loadID})
	suite.Require().NoError(err)
	return domain.QueuedJob{
		JobID:       jobID,
		Queue:       domain.QueueUsageStats,
		Connection:  "database",
		Payload:     payload,
		Attempts:    attempts,
		AvailableAt: time.Now().UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

// --- Test Cases ---

func (suite *WorkerTestSuite) TestRun_CompletedJobIsDeleted() {
	loadID := "load-1"
	suite.claimOnce([]domain.QueuedJob{suite.usageStatsJob(7, loadID, 1)})

	var mu sync.Mutex
	var compiledLoadID string
	var deletedJobID int64
	var released int
	done := make(chan struct{})

	suite.mockStatsSvc.CompileUsageStatsFn = func(ctx context.Context, loadID string) (int, error) {
		mu.Lock()
		compiledLoadID = loadID
		mu.Unlock()
		return 4, nil
	}
	suite.mockJobRepo.DeleteJobFn = func(ctx context.Context, jobID int64) error {
		mu.Lock()
		deletedJobID = jobID
		mu.Unlock()
		close(done)
		return nil
	}
	suite.mockJobRepo.ReleaseJobFn = func(ctx context.Context, jobID int64, availableAt time.Time) error {
		mu.Lock()
		released++
		mu.Unlock()
		return nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)
	suite.runUntil(worker, done)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal(loadID, compiledLoadID)
	suite.Equal(int64(7), deletedJobID)
	suite.Zero(released)
}

func (suite *WorkerTestSuite) TestRun_FailedJobIsReleasedWithDelay() {
	suite.claimOnce([]domain.QueuedJob{suite.usageStatsJob(8, "load-2", 1)})

	var mu sync.Mutex
	var releasedJobID int64
	var availableAt time.Time
	var deleted int
	done := make(chan struct{})

	suite.mockStatsSvc.CompileUsageStatsFn = func(ctx context.Context, loadID string) (int, error) {
		return 0, assert.AnError
	}
	suite.mockJobRepo.ReleaseJobFn = func(ctx context.Context, jobID int64, at time.Time) error {
		mu.Lock()
		releasedJobID = jobID
		availableAt = at
		mu.Unlock()
		close(done)
		return nil
	}
	suite.mockJobRepo.DeleteJobFn = func(ctx context.Context, jobID int64) error {
		mu.Lock()
		deleted++
		mu.Unlock()
		return nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)
	suite.runUntil(worker, done)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal(int64(8), releasedJobID)
	// The retry must be pushed into the future, not made due immediately.
	suite.True(availableAt.After(time.Now().Add(2*time.Second)), "release time %v is not delayed", availableAt)
	suite.Zero(deleted)
}

func (suite *WorkerTestSuite) TestRun_ExhaustedJobIsDropped() {
	// Attempts already at the limit: one more failure must drop the job
	// instead of wedging the queue with endless retries.
	suite.claimOnce([]domain.QueuedJob{suite.usageStatsJob(9, "load-3", 3)})

	var mu sync.Mutex
	var deletedJobID int64
	var released int
	done := make(chan struct{})

	suite.mockStatsSvc.CompileUsageStatsFn = func(ctx context.Context, loadID string) (int, error) {
		return 0, assert.AnError
	}
	suite.mockJobRepo.DeleteJobFn = func(ctx context.Context, jobID int64) error {
		mu.Lock()
		deletedJobID = jobID
		mu.Unlock()
		close(done)
		return nil
	}
	suite.mockJobRepo.ReleaseJobFn = func(ctx context.Context, jobID int64, availableAt time.Time) error {
		mu.Lock()
		released++
		mu.Unlock()
		return nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)
	suite.runUntil(worker, done)

	mu.Lock()
	defer mu.Unlock()
	suite.Equal(int64(9), deletedJobID)
	suite.Zero(released)
}

func (suite *WorkerTestSuite) TestRun_MalformedPayloadIsReleased() {
	job := suite.usageStatsJob(10, "unused", 1)
	job.Payload = []byte("{not json")
	suite.claimOnce([]domain.QueuedJob{job})

	var mu sync.Mutex
	var compiled int
	done := make(chan struct{})

	suite.mockStatsSvc.CompileUsageStatsFn = func(ctx context.Context, loadID string) (int, error) {
		mu.Lock()
		compiled++
		mu.Unlock()
		return 0, nil
	}
	suite.mockJobRepo.ReleaseJobFn = func(ctx context.Context, jobID int64, availableAt time.Time) error {
		close(done)
		return nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)
	suite.runUntil(worker, done)

	mu.Lock()
	defer mu.Unlock()
	suite.Zero(compiled)
}

func (suite *WorkerTestSuite) TestRun_UnknownQueueJobIsDropped() {
	job := domain.QueuedJob{
		JobID:       11,
		Queue:       "mystery",
		Connection:  "database",
		Payload:     []byte(`{}`),
		Attempts:    3,
		AvailableAt: time.Now().UTC(),
	}
	// The claim query filters by queue name, but a claimed row with an
	// unroutable queue must still be settled.
	var mu sync.Mutex
	claimed := false
	suite.mockJobRepo.ClaimJobsFn = func(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
		mu.Lock()
		defer mu.Unlock()
		if claimed {
			return nil, nil
		}
		claimed = true
		return []domain.QueuedJob{job}, nil
	}

	done := make(chan struct{})
	suite.mockJobRepo.DeleteJobFn = func(ctx context.Context, jobID int64) error {
		close(done)
		return nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)
	suite.runUntil(worker, done)
}

func (suite *WorkerTestSuite) TestRun_JanitorPurgesExpiredTokens() {
	suite.mockJobRepo.ClaimJobsFn = func(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
		return nil, nil
	}

	var mu sync.Mutex
	purges := 0
	done := make(chan struct{})
	tokenSvc := &MockAPITokenService{
		PurgeExpiredTokensFn: func(ctx context.Context) (int64, error) {
			mu.Lock()
			defer mu.Unlock()
			purges++
			if purges == 1 {
				close(done)
			}
			return 2, nil
		},
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger,
		jobs.WithTokenJanitor(tokenSvc, 5*time.Millisecond))
	suite.runUntil(worker, done)

	mu.Lock()
	defer mu.Unlock()
	suite.GreaterOrEqual(purges, 1)
}

func (suite *WorkerTestSuite) TestRun_StopsOnContextCancellation() {
	suite.mockJobRepo.ClaimJobsFn = func(ctx context.Context, queue string, limit int) ([]domain.QueuedJob, error) {
		return nil, nil
	}

	worker := jobs.NewWorker(suite.cfg, suite.mockJobRepo, suite.mockStatsSvc, suite.logger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(ctx)
	}()

	// Let it poll a few times, then stop it.
	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		suite.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		suite.FailNow("worker did not stop after cancellation")
	}
}

func TestWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}
