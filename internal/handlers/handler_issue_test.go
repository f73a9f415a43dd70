package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/handlers"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
	"github.com/openjms/journal_mgmt_app/internal/platform/config"
)

// --- Mock IssueService ---

type MockIssueService struct {
	mock.Mock
}

func (m *MockIssueService) GetIssueByID(ctx context.Context, journalID, issueID string, requestingUserID string) (*domain.Issue, error) {
	args := m.Called(ctx, journalID, issueID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockIssueService) ListIssues(ctx context.Context, journalID string, requestingUserID string, params dto.ListIssuesParams) (*dto.ListIssuesResponse, error) {
	args := m.Called(ctx, journalID, requestingUserID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListIssuesResponse), args.Error(1)
}

func (m *MockIssueService) GetCurrentIssue(ctx context.Context, journalID string) (*domain.Issue, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockIssueService) GetIssueTOC(ctx context.Context, journalID, issueID string, requestingUserID string) ([]domain.Publication, error) {
	args := m.Called(ctx, journalID, issueID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Publication), args.Error(1)
}

func (m *MockIssueService) CreateIssue(ctx context.Context, journalID string, req dto.CreateIssueRequest, creatorUserID string) (*domain.Issue, error) {
	args := m.Called(ctx, journalID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockIssueService) UpdateIssue(ctx context.Context, journalID, issueID string, req dto.UpdateIssueRequest, requestingUserID string) (*domain.Issue, error) {
	args := m.Called(ctx, journalID, issueID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Issue), args.Error(1)
}

func (m *MockIssueService) PublishIssue(ctx context.Context, journalID, issueID string, req dto.PublishIssueRequest, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	args := m.Called(ctx, journalID, issueID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssueLifecycleResult), args.Error(1)
}

func (m *MockIssueService) UnpublishIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	args := m.Called(ctx, journalID, issueID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssueLifecycleResult), args.Error(1)
}

func (m *MockIssueService) SetCurrentIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	args := m.Called(ctx, journalID, issueID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssueLifecycleResult), args.Error(1)
}

func (m *MockIssueService) DeleteIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	args := m.Called(ctx, journalID, issueID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.IssueLifecycleResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.IssueSvcFacade = (*MockIssueService)(nil)

// --- Mock StatisticsService ---

type MockStatisticsService struct {
	mock.Mock
}

func (m *MockStatisticsService) RecordUsageEvent(ctx context.Context, journalID string, assocType domain.AssocType, assocID string) {
	m.Called(ctx, journalID, assocType, assocID)
}

func (m *MockStatisticsService) EnqueueUsageStatsJob(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStatisticsService) CompileUsageStats(ctx context.Context, loadID string) (int, error) {
	args := m.Called(ctx, loadID)
	return args.Int(0), args.Error(1)
}

func (m *MockStatisticsService) GetMetrics(ctx context.Context, journalID string, assocType domain.AssocType, assocID string, from, to time.Time, requestingUserID string) ([]domain.MetricRow, error) {
	args := m.Called(ctx, journalID, assocType, assocID, from, to, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MetricRow), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.StatisticsSvcFacade = (*MockStatisticsService)(nil)

// --- Test Suite ---

type IssueHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockIssueService *MockIssueService
	mockStatsService *MockStatisticsService
	cfg              *config.Config

	journalID string
	issueID   string
	userID    string
}

func (suite *IssueHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.cfg = &config.Config{
		JWTSecret:      "test-secret-key-that-is-long-enough",
		CSRFCookieName: "csrfToken",
		CSRFHeaderName: "X-CSRF-Token",
	}

	suite.mockIssueService = new(MockIssueService)
	suite.mockStatsService = new(MockStatisticsService)

	// Mimic the real wiring: the journal tree admits anonymous readers and
	// resolves the bearer token when present.
	content := suite.router.Group("/api/v1", middleware.OptionalAuthMiddleware(suite.cfg.JWTSecret))
	journalSpecific := content.Group("/journals/:journal_id")
	handlers.RegisterIssueRoutes(journalSpecific, suite.cfg, &portssvc.ServiceContainer{
		Issue:      suite.mockIssueService,
		Statistics: suite.mockStatsService,
	})

	suite.journalID = uuid.NewString()
	suite.issueID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// generateTestToken creates a dummy JWT for testing.
func (suite *IssueHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "jms-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.cfg.JWTSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// attachCSRF puts a matching CSRF cookie/header pair on the request.
func (suite *IssueHandlerTestSuite) attachCSRF(req *http.Request) {
	const token = "test-csrf-token"
	req.AddCookie(&http.Cookie{Name: suite.cfg.CSRFCookieName, Value: token})
	req.Header.Set(suite.cfg.CSRFHeaderName, token)
}

func (suite *IssueHandlerTestSuite) publishURL() string {
	return fmt.Sprintf("/api/v1/journals/%s/issues/%s/publish", suite.journalID, suite.issueID)
}

// csrfCookieFromResponse returns the CSRF cookie set on the response, or nil.
func (suite *IssueHandlerTestSuite) csrfCookieFromResponse(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == suite.cfg.CSRFCookieName {
			return ck
		}
	}
	return nil
}

// --- CSRF Tests ---

func (suite *IssueHandlerTestSuite) TestPublishIssue_MissingCSRFTokenRejected() {
	req, _ := http.NewRequest(http.MethodPost, suite.publishURL(), nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)

	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("CSRF token missing", body["error"])
	suite.mockIssueService.AssertNotCalled(suite.T(), "PublishIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IssueHandlerTestSuite) TestPublishIssue_MismatchedCSRFTokenRejected() {
	req, _ := http.NewRequest(http.MethodPost, suite.publishURL(), nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.AddCookie(&http.Cookie{Name: suite.cfg.CSRFCookieName, Value: "cookie-value"})
	req.Header.Set(suite.cfg.CSRFHeaderName, "a-different-value")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)

	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("CSRF token mismatch", body["error"])
	suite.mockIssueService.AssertNotCalled(suite.T(), "PublishIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IssueHandlerTestSuite) TestDeleteIssue_MissingCSRFTokenRejected() {
	url := fmt.Sprintf("/api/v1/journals/%s/issues/%s", suite.journalID, suite.issueID)
	req, _ := http.NewRequest(http.MethodDelete, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockIssueService.AssertNotCalled(suite.T(), "DeleteIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IssueHandlerTestSuite) TestGetIssue_HandsOutCSRFCookie() {
	issue := &domain.Issue{
		IssueID:   suite.issueID,
		JournalID: suite.journalID,
		Volume:    4,
		Number:    "2",
		Year:      2025,
		Published: true,
	}
	suite.mockIssueService.On("GetIssueByID", mock.Anything, suite.journalID, suite.issueID, "").Return(issue, nil).Once()
	suite.mockStatsService.On("RecordUsageEvent", mock.Anything, suite.journalID, domain.AssocTypeIssue, suite.issueID).Return().Once()

	url := fmt.Sprintf("/api/v1/journals/%s/issues/%s", suite.journalID, suite.issueID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	cookie := suite.csrfCookieFromResponse(w)
	suite.Require().NotNil(cookie, "GET should hand out a CSRF cookie")
	suite.NotEmpty(cookie.Value)
	suite.False(cookie.HttpOnly, "clients must be able to echo the token back in a header")
	suite.mockStatsService.AssertExpectations(suite.T())
}

func (suite *IssueHandlerTestSuite) TestGetIssue_ExistingCSRFCookieKept() {
	issue := &domain.Issue{
		IssueID:   suite.issueID,
		JournalID: suite.journalID,
		Published: false,
	}
	suite.mockIssueService.On("GetIssueByID", mock.Anything, suite.journalID, suite.issueID, suite.userID).Return(issue, nil).Once()

	url := fmt.Sprintf("/api/v1/journals/%s/issues/%s", suite.journalID, suite.issueID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	req.AddCookie(&http.Cookie{Name: suite.cfg.CSRFCookieName, Value: "already-issued"})

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Nil(suite.csrfCookieFromResponse(w), "an existing CSRF cookie must not be reissued")
	// Unpublished issues are editorial previews, not reader traffic.
	suite.mockStatsService.AssertNotCalled(suite.T(), "RecordUsageEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Lifecycle endpoint Tests ---

func (suite *IssueHandlerTestSuite) TestPublishIssue_EchoedTokenReachesService() {
	result := &dto.IssueLifecycleResult{
		Issue: &dto.IssueResponse{
			IssueID:   suite.issueID,
			JournalID: suite.journalID,
			Published: true,
		},
		Submissions: []dto.SubmissionOutcome{
			{SubmissionID: uuid.NewString(), OK: true},
		},
	}
	suite.mockIssueService.On("PublishIssue",
		mock.Anything,
		suite.journalID,
		suite.issueID,
		mock.MatchedBy(func(req dto.PublishIssueRequest) bool {
			return req.Confirmed && req.AssignDOIs && !req.Notify
		}),
		suite.userID,
	).Return(result, nil).Once()

	req, _ := http.NewRequest(http.MethodPost, suite.publishURL(), strings.NewReader(`{"confirmed":true,"assignDOIs":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	suite.attachCSRF(req)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var got dto.IssueLifecycleResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.False(got.NeedsConfirmation)
	suite.Require().NotNil(got.Issue)
	suite.Equal(suite.issueID, got.Issue.IssueID)
	suite.Len(got.Submissions, 1)
	suite.mockIssueService.AssertExpectations(suite.T())
}

func (suite *IssueHandlerTestSuite) TestPublishIssue_AnonymousRejected() {
	req, _ := http.NewRequest(http.MethodPost, suite.publishURL(), nil)
	suite.attachCSRF(req)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockIssueService.AssertNotCalled(suite.T(), "PublishIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *IssueHandlerTestSuite) TestPublishIssue_NotFoundMapsTo404() {
	suite.mockIssueService.On("PublishIssue", mock.Anything, suite.journalID, suite.issueID, mock.AnythingOfType("dto.PublishIssueRequest"), suite.userID).
		Return(nil, apperrors.ErrNotFound).Once()

	req, _ := http.NewRequest(http.MethodPost, suite.publishURL(), nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	suite.attachCSRF(req)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)

	var body map[string]string
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("Issue not found", body["error"])
}

func (suite *IssueHandlerTestSuite) TestCreateIssue_EchoedTokenCreates() {
	created := &domain.Issue{
		IssueID:   uuid.NewString(),
		JournalID: suite.journalID,
		Volume:    7,
		Number:    "1",
		Year:      2026,
	}
	suite.mockIssueService.On("CreateIssue",
		mock.Anything,
		suite.journalID,
		mock.MatchedBy(func(req dto.CreateIssueRequest) bool {
			return req.Volume == 7 && req.Number == "1" && req.Year == 2026
		}),
		suite.userID,
	).Return(created, nil).Once()

	url := fmt.Sprintf("/api/v1/journals/%s/issues", suite.journalID)
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"volume":7,"number":"1","year":2026}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	suite.attachCSRF(req)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var got dto.IssueResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(created.IssueID, got.IssueID)
	suite.mockIssueService.AssertExpectations(suite.T())
}

func (suite *IssueHandlerTestSuite) TestListIssues_AnonymousAllowed() {
	resp := &dto.ListIssuesResponse{Issues: []dto.IssueResponse{}}
	suite.mockIssueService.On("ListIssues",
		mock.Anything,
		suite.journalID,
		"", // anonymous
		mock.MatchedBy(func(p dto.ListIssuesParams) bool { return p.Limit == 20 }),
	).Return(resp, nil).Once()

	url := fmt.Sprintf("/api/v1/journals/%s/issues", suite.journalID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockIssueService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestIssueHandler(t *testing.T) {
	suite.Run(t, new(IssueHandlerTestSuite))
}
