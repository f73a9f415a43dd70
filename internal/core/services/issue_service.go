package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
	"github.com/openjms/journal_mgmt_app/internal/middleware"
)

// confirmDOIAssignmentMsg is returned when publishing would assign DOIs and
// the caller has not acknowledged that yet.
const confirmDOIAssignmentMsg = "Publishing this issue will assign DOIs to the issue and its scheduled publications. Confirm to continue."

// Global event names emitted by lifecycle operations so clients can
// invalidate cached issue data.
const (
	eventIssuePublished   = "issuePublished"
	eventIssueUnpublished = "issueUnpublished"
	eventIssueDeleted     = "issueDeleted"
)

// issueService provides issue reads, writes and the lifecycle operations:
// publish, unpublish, set-current and delete, together with their side
// effects on submissions, identifiers and notifications.
type issueService struct {
	issueRepo       portsrepo.IssueRepositoryWithTx
	journalRepo     portsrepo.JournalRepositoryFacade
	submissionRepo  portsrepo.SubmissionRepositoryWithTx
	journalSvc      portssvc.JournalAuthorizerSvc
	identifierSvc   portssvc.IdentifierSvcFacade
	notificationSvc portssvc.NotificationSvcFacade
	hooks           *LifecycleHooks
}

// IssueServiceOption is a functional option for configuring the issue service
type IssueServiceOption func(*issueService)

// WithIdentifierService adds the identifier (DOI) service dependency
func WithIdentifierService(svc portssvc.IdentifierSvcFacade) IssueServiceOption {
	return func(s *issueService) {
		s.identifierSvc = svc
	}
}

// WithNotificationService adds the notification service dependency
func WithNotificationService(svc portssvc.NotificationSvcFacade) IssueServiceOption {
	return func(s *issueService) {
		s.notificationSvc = svc
	}
}

// WithLifecycleHooks installs a hook registry invoked around lifecycle
// transitions
func WithLifecycleHooks(hooks *LifecycleHooks) IssueServiceOption {
	return func(s *issueService) {
		s.hooks = hooks
	}
}

// NewIssueService creates a new IssueService.
func NewIssueService(
	issueRepo portsrepo.IssueRepositoryWithTx,
	journalRepo portsrepo.JournalRepositoryFacade,
	submissionRepo portsrepo.SubmissionRepositoryWithTx,
	journalSvc portssvc.JournalAuthorizerSvc,
	options ...IssueServiceOption,
) portssvc.IssueSvcFacade {
	svc := &issueService{
		issueRepo:      issueRepo,
		journalRepo:    journalRepo,
		submissionRepo: submissionRepo,
		journalSvc:     journalSvc,
		hooks:          NewLifecycleHooks(),
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure issueService implements the portssvc.IssueSvcFacade interface
var _ portssvc.IssueSvcFacade = (*issueService)(nil)

// fetchIssueInJournal retrieves an issue and verifies it belongs to the given
// journal, answering NotFound otherwise so callers cannot probe other
// journals' issues.
func (s *issueService) fetchIssueInJournal(ctx context.Context, journalID, issueID string) (*domain.Issue, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	issue, err := s.issueRepo.FindIssueByID(ctx, issueID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find issue by ID", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		}
		return nil, err
	}

	if issue.JournalID != journalID {
		logger.Warn("Issue found but belongs to different journal", slog.String("issue_id", issueID), slog.String("issue_journal", issue.JournalID), slog.String("requested_journal", journalID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return issue, nil
}

// GetIssueByID retrieves a specific issue. Published issues are visible to
// everyone; unpublished issues only to the journal's editorial users.
func (s *issueService) GetIssueByID(ctx context.Context, journalID, issueID string, requestingUserID string) (*domain.Issue, error) {
	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	if !issue.Published {
		if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
			return nil, err
		}
	}

	return issue, nil
}

// ListIssues retrieves a paginated list of a journal's issues. Non-members
// only see published issues regardless of the requested filter.
func (s *issueService) ListIssues(ctx context.Context, journalID string, requestingUserID string, params dto.ListIssuesParams) (*dto.ListIssuesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.IssueFilter{
		JournalIDs: []string{journalID},
		Published:  params.Published,
		Volume:     params.Volume,
		Year:       params.Year,
	}

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrForbidden) {
			return nil, err
		}
		published := true
		filter.Published = &published
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	issues, nextToken, err := s.issueRepo.ListIssues(ctx, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list issues from repository", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve issues: %w", err)
	}

	resp := dto.ToListIssuesResponse(issues, nextToken)

	logger.Debug("Issues listed successfully", slog.Int("count", len(issues)), slog.String("journal_id", journalID))
	return &resp, nil
}

// GetIssueTOC retrieves the issue's table of contents. Journal staff see
// every publication attached to the issue; readers only see published ones,
// and only once the issue itself is published.
func (s *issueService) GetIssueTOC(ctx context.Context, journalID, issueID string, requestingUserID string) ([]domain.Publication, error) {
	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	isStaff := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant) == nil
	if !issue.Published && !isStaff {
		return nil, apperrors.ErrNotFound
	}

	publications, err := s.submissionRepo.FindPublicationsByIssueID(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issue table of contents: %w", err)
	}

	if isStaff {
		return publications, nil
	}

	visible := make([]domain.Publication, 0, len(publications))
	for _, p := range publications {
		if p.Status == domain.SubmissionPublished {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// GetCurrentIssue retrieves the journal's current issue.
func (s *issueService) GetCurrentIssue(ctx context.Context, journalID string) (*domain.Issue, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	if journal.CurrentIssueID == nil {
		return nil, fmt.Errorf("journal %s has no current issue: %w", journalID, apperrors.ErrNotFound)
	}

	return s.issueRepo.FindIssueByID(ctx, *journal.CurrentIssueID)
}

// CreateIssue persists a new unpublished issue.
func (s *issueService) CreateIssue(ctx context.Context, journalID string, req dto.CreateIssueRequest, creatorUserID string) (*domain.Issue, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, creatorUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for CreateIssue", slog.String("user_id", creatorUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	issueID := uuid.NewString()

	// New issues inherit the journal's access default; subscription journals
	// gate new content, everything else is open.
	accessStatus := domain.AccessOpen
	if journal.PublishingMode == domain.PublishingModeSubscription {
		accessStatus = domain.AccessSubscription
	}

	issue := domain.Issue{
		IssueID:      issueID,
		JournalID:    journalID,
		Volume:       req.Volume,
		Number:       req.Number,
		Year:         req.Year,
		Title:        req.Title,
		Description:  req.Description,
		Published:    false,
		AccessStatus: accessStatus,
		ShowVolume:   boolOrDefault(req.ShowVolume, true),
		ShowNumber:   boolOrDefault(req.ShowNumber, true),
		ShowYear:     boolOrDefault(req.ShowYear, true),
		ShowTitle:    boolOrDefault(req.ShowTitle, req.Title != ""),
		AuditFields:  domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.issueRepo.SaveIssue(ctx, issue); err != nil {
		logger.Error("Failed to save issue", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save issue: %w", err)
	}

	logger.Info("Issue created successfully", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	return &issue, nil
}

// UpdateIssue applies a partial update to issue metadata. When the issue is
// already published and carries a DOI, the identifier subsystem is told about
// the metadata change.
func (s *issueService) UpdateIssue(ctx context.Context, journalID, issueID string, req dto.UpdateIssueRequest, requestingUserID string) (*domain.Issue, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for UpdateIssue", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	if _, err := s.fetchIssueInJournal(ctx, journalID, issueID); err != nil {
		return nil, err
	}

	update := domain.IssueUpdate{
		Volume:            domain.NewOptionalFromPtr(req.Volume),
		Number:            domain.NewOptionalFromPtr(req.Number),
		Year:              domain.NewOptionalFromPtr(req.Year),
		Title:             domain.NewOptionalFromPtr(req.Title),
		Description:       domain.NewOptionalFromPtr(req.Description),
		CoverImageURL:     domain.NewOptionalFromPtr(req.CoverImageURL),
		CoverImageAltText: domain.NewOptionalFromPtr(req.CoverImageAltText),
		ShowVolume:        domain.NewOptionalFromPtr(req.ShowVolume),
		ShowNumber:        domain.NewOptionalFromPtr(req.ShowNumber),
		ShowYear:          domain.NewOptionalFromPtr(req.ShowYear),
		ShowTitle:         domain.NewOptionalFromPtr(req.ShowTitle),
	}

	if err := s.issueRepo.EditIssue(ctx, issueID, update, requestingUserID); err != nil {
		logger.Error("Failed to update issue", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	updatedIssue, err := s.issueRepo.FindIssueByID(ctx, issueID)
	if err != nil {
		logger.Error("Failed to reload issue after update", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return nil, err
	}

	if updatedIssue.Published && updatedIssue.DOI != nil && s.identifierSvc != nil {
		journal, jErr := s.journalRepo.FindJournalByID(ctx, journalID)
		if jErr == nil {
			if nErr := s.identifierSvc.IssueUpdated(ctx, journal, updatedIssue); nErr != nil {
				logger.Warn("Failed to notify identifier service of issue metadata change", slog.String("error", nErr.Error()), slog.String("issue_id", issueID))
			}
		}
	}

	logger.Info("Issue updated successfully", slog.String("issue_id", issueID), slog.String("journal_id", journalID))
	return updatedIssue, nil
}

// PublishIssue publishes an issue.
//
// On first publish it assigns the issue DOI (when requested and confirmed),
// stamps the publication date and moves the issue's scheduled publications to
// published. On every publish it recomputes the access policy from the
// journal's publishing mode and makes the issue the journal's current issue.
// Requesting DOI assignment without confirmation returns a
// confirmation-required result and changes nothing.
func (s *issueService) PublishIssue(ctx context.Context, journalID, issueID string, req dto.PublishIssueRequest, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for PublishIssue", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	firstPublish := !issue.Published

	hctx := HookCtx{Pos: HookPosPrePublish, Journal: journal, Issue: issue, ActorID: requestingUserID}
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Issue publish vetoed by hook", slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	// DOI assignment needs explicit consent; until it is given nothing is
	// changed.
	if firstPublish && req.AssignDOIs && !req.Confirmed {
		logger.Debug("Publish requires confirmation for DOI assignment", slog.String("issue_id", issueID))
		return &dto.IssueLifecycleResult{
			NeedsConfirmation:   true,
			ConfirmationMessage: confirmDOIAssignmentMsg,
		}, nil
	}

	now := time.Now().UTC()

	if firstPublish && req.AssignDOIs {
		if s.identifierSvc == nil {
			logger.Warn("Identifier service not available, skipping DOI assignment", slog.String("issue_id", issueID))
		} else {
			doi, err := s.identifierSvc.CreateIssueDOI(ctx, journal, issue, requestingUserID)
			if err != nil {
				logger.Error("Failed to assign issue DOI", slog.String("error", err.Error()), slog.String("issue_id", issueID))
				return nil, fmt.Errorf("failed to assign issue DOI: %w", err)
			}
			issue.DOI = doi
		}
	}

	update := domain.IssueUpdate{}
	if firstPublish {
		update.Published = domain.NewOptional(true)
		update.DatePublished = domain.NewOptional(now)
		issue.Published = true
		issue.DatePublished = &now
	}

	// Subscription journals with a delayed open access policy open the issue
	// up after the configured number of months.
	if journal.PublishingMode == domain.PublishingModeSubscription && journal.DelayedOpenAccessDuration > 0 {
		openDate := computeOpenAccessDate(now, journal.DelayedOpenAccessDuration)
		update.AccessStatus = domain.NewOptional(domain.AccessSubscription)
		update.OpenAccessDate = domain.NewOptional(openDate)
		issue.AccessStatus = domain.AccessSubscription
		issue.OpenAccessDate = &openDate
	}

	if update.Published.Set || update.AccessStatus.Set {
		if err := s.issueRepo.EditIssue(ctx, issueID, update, requestingUserID); err != nil {
			logger.Error("Failed to persist issue publish", slog.String("error", err.Error()), slog.String("issue_id", issueID))
			return nil, fmt.Errorf("failed to publish issue: %w", err)
		}
	}

	// The freshly published issue always becomes the journal's current issue,
	// which keeps at most one issue current.
	if err := s.journalRepo.UpdateCurrentIssue(ctx, journalID, &issueID, requestingUserID); err != nil {
		logger.Error("Failed to update current issue", slog.String("error", err.Error()), slog.String("journal_id", journalID), slog.String("issue_id", issueID))
		return nil, fmt.Errorf("failed to update current issue: %w", err)
	}

	var outcomes []dto.SubmissionOutcome
	if firstPublish {
		outcomes, err = s.publishScheduledPublications(ctx, journal, issue, req.AssignDOIs, requestingUserID)
		if err != nil {
			logger.Error("Publication cascade failed", slog.String("error", err.Error()), slog.String("issue_id", issueID))
			return nil, fmt.Errorf("failed to run publication cascade: %w", err)
		}
	} else if s.identifierSvc != nil {
		// Re-publishing an already-published issue is a metadata refresh from
		// the identifier subsystem's point of view.
		if err := s.identifierSvc.IssueUpdated(ctx, journal, issue); err != nil {
			logger.Warn("Failed to notify identifier service of issue republish", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		}
	}

	if req.Notify && journal.PublishingMode != domain.PublishingModeNone {
		if s.notificationSvc == nil {
			logger.Warn("Notification service not available, skipping reader notification", slog.String("issue_id", issueID))
		} else if err := s.notificationSvc.NotifyIssuePublished(ctx, journal, issue); err != nil {
			// Notification is best-effort; the publish itself already happened.
			logger.Error("Failed to notify readers of published issue", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		}
	}

	hctx.Pos = HookPosPostPublish
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Post-publish hook failed", slog.String("issue_id", issueID), slog.String("error", err.Error()))
	}

	logger.Info("Issue published successfully", slog.String("issue_id", issueID), slog.String("journal_id", journalID), slog.Bool("first_publish", firstPublish))

	resp := dto.ToIssueResponse(issue)
	return &dto.IssueLifecycleResult{
		Issue:       &resp,
		Event:       &dto.GlobalEvent{Name: eventIssuePublished, Data: map[string]any{"issueId": issueID}},
		Submissions: outcomes,
	}, nil
}

// publishScheduledPublications moves every publication scheduled into the
// issue to published, assigning publication DOIs when requested. Failures are
// collected per submission so one stuck submission does not block the rest.
func (s *issueService) publishScheduledPublications(ctx context.Context, journal *domain.Journal, issue *domain.Issue, assignDOIs bool, userID string) ([]dto.SubmissionOutcome, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	submissions, err := s.submissionRepo.ListSubmissions(ctx, portsrepo.SubmissionFilter{
		JournalIDs: []string{journal.JournalID},
		IssueIDs:   []string{issue.IssueID},
		StatusIn:   []domain.SubmissionStatus{domain.SubmissionScheduled, domain.SubmissionPublished},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions scheduled into issue %s: %w", issue.IssueID, err)
	}

	outcomes := make([]dto.SubmissionOutcome, 0, len(submissions))
	for _, submission := range submissions {
		outcome := dto.SubmissionOutcome{SubmissionID: submission.SubmissionID, OK: true}

		publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submission.SubmissionID)
		if err != nil {
			logger.Error("Failed to load publications for submission", slog.String("error", err.Error()), slog.String("submission_id", submission.SubmissionID))
			outcome.OK = false
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		for i := range publications {
			if !publications[i].IsScheduledInto(issue.IssueID) {
				continue
			}
			if err := s.submissionRepo.PublishPublication(ctx, publications[i].PublicationID, userID); err != nil {
				logger.Error("Failed to publish scheduled publication", slog.String("error", err.Error()), slog.String("publication_id", publications[i].PublicationID), slog.String("submission_id", submission.SubmissionID))
				outcome.OK = false
				outcome.Error = err.Error()
				continue
			}
			if assignDOIs && s.identifierSvc != nil {
				if _, err := s.identifierSvc.CreatePublicationDOI(ctx, journal, &publications[i], userID); err != nil {
					logger.Error("Failed to assign publication DOI", slog.String("error", err.Error()), slog.String("publication_id", publications[i].PublicationID))
					outcome.OK = false
					outcome.Error = err.Error()
				}
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// UnpublishIssue reverts a published issue to unpublished.
//
// The issue's publication date is cleared (nulled, not just omitted), the
// journal's current issue is re-derived from the remaining published issues,
// and publications that went live with this issue are reverted to scheduled.
func (s *issueService) UnpublishIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for UnpublishIssue", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	hctx := HookCtx{Pos: HookPosPreUnpublish, Journal: journal, Issue: issue, ActorID: requestingUserID}
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Issue unpublish vetoed by hook", slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	// The date column must actually be nulled, not left at its old value.
	update := domain.IssueUpdate{
		Published:     domain.NewOptional(false),
		DatePublished: domain.NewNullOptional[time.Time](),
	}
	if err := s.issueRepo.EditIssue(ctx, issueID, update, requestingUserID); err != nil {
		logger.Error("Failed to persist issue unpublish", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return nil, fmt.Errorf("failed to unpublish issue: %w", err)
	}
	issue.Published = false
	issue.DatePublished = nil

	if err := s.rederiveCurrentIssue(ctx, journalID, &issueID, requestingUserID); err != nil {
		logger.Error("Failed to re-derive current issue", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, err
	}

	outcomes := s.revertPublishedPublications(ctx, journalID, issueID, requestingUserID)

	hctx.Pos = HookPosPostUnpublish
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Post-unpublish hook failed", slog.String("issue_id", issueID), slog.String("error", err.Error()))
	}

	logger.Info("Issue unpublished successfully", slog.String("issue_id", issueID), slog.String("journal_id", journalID))

	resp := dto.ToIssueResponse(issue)
	return &dto.IssueLifecycleResult{
		Issue:       &resp,
		Event:       &dto.GlobalEvent{Name: eventIssueUnpublished, Data: map[string]any{"issueId": issueID}},
		Submissions: outcomes,
	}, nil
}

// revertPublishedPublications reverts every publication that went live with
// the issue back to scheduled. The unpublish-then-publish double step lets the
// store land the publication on SCHEDULED now that the issue is unpublished,
// instead of dropping it all the way back to QUEUED.
func (s *issueService) revertPublishedPublications(ctx context.Context, journalID, issueID string, userID string) []dto.SubmissionOutcome {
	logger := middleware.GetLoggerFromCtx(ctx)

	submissions, err := s.submissionRepo.ListSubmissions(ctx, portsrepo.SubmissionFilter{
		JournalIDs: []string{journalID},
		IssueIDs:   []string{issueID},
	})
	if err != nil {
		logger.Error("Failed to list submissions for unpublish cascade", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return []dto.SubmissionOutcome{}
	}

	outcomes := make([]dto.SubmissionOutcome, 0, len(submissions))
	for _, submission := range submissions {
		outcome := dto.SubmissionOutcome{SubmissionID: submission.SubmissionID, OK: true}

		publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submission.SubmissionID)
		if err != nil {
			logger.Error("Failed to load publications for submission", slog.String("error", err.Error()), slog.String("submission_id", submission.SubmissionID))
			outcome.OK = false
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		for i := range publications {
			if !publications[i].IsPublishedInto(issueID) {
				continue
			}
			if err := s.submissionRepo.UnpublishPublication(ctx, publications[i].PublicationID, userID); err != nil {
				logger.Error("Failed to unpublish publication", slog.String("error", err.Error()), slog.String("publication_id", publications[i].PublicationID))
				outcome.OK = false
				outcome.Error = err.Error()
				continue
			}
			if err := s.submissionRepo.PublishPublication(ctx, publications[i].PublicationID, userID); err != nil {
				logger.Error("Failed to reschedule publication", slog.String("error", err.Error()), slog.String("publication_id", publications[i].PublicationID))
				outcome.OK = false
				outcome.Error = err.Error()
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// SetCurrentIssue makes the issue the journal's current issue. The operation
// is idempotent and does not require the issue to be published.
func (s *issueService) SetCurrentIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for SetCurrentIssue", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.UpdateCurrentIssue(ctx, journalID, &issueID, requestingUserID); err != nil {
		logger.Error("Failed to update current issue", slog.String("error", err.Error()), slog.String("journal_id", journalID), slog.String("issue_id", issueID))
		return nil, fmt.Errorf("failed to update current issue: %w", err)
	}

	logger.Info("Current issue updated", slog.String("issue_id", issueID), slog.String("journal_id", journalID))

	resp := dto.ToIssueResponse(issue)
	return &dto.IssueLifecycleResult{Issue: &resp}, nil
}

// DeleteIssue removes an issue. Publications referencing the issue are
// detached and their submissions reset to queued; when the deleted issue was
// the journal's current issue, a new current issue is derived from the
// remaining published issues.
func (s *issueService) DeleteIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for DeleteIssue", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		return nil, err
	}

	issue, err := s.fetchIssueInJournal(ctx, journalID, issueID)
	if err != nil {
		return nil, err
	}

	hctx := HookCtx{Pos: HookPosPreDelete, Journal: journal, Issue: issue, ActorID: requestingUserID}
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Issue delete vetoed by hook", slog.String("issue_id", issueID), slog.String("error", err.Error()))
		return nil, err
	}

	outcomes := s.detachIssuePublications(ctx, journalID, issueID, requestingUserID)

	if err := s.issueRepo.DeleteIssue(ctx, issueID); err != nil {
		logger.Error("Failed to delete issue", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return nil, fmt.Errorf("failed to delete issue: %w", err)
	}

	if journal.CurrentIssueID != nil && *journal.CurrentIssueID == issueID {
		if err := s.rederiveCurrentIssue(ctx, journalID, nil, requestingUserID); err != nil {
			logger.Error("Failed to re-derive current issue after delete", slog.String("error", err.Error()), slog.String("journal_id", journalID))
			return nil, err
		}
	}

	hctx.Pos = HookPosPostDelete
	if err := s.hooks.invoke(ctx, hctx); err != nil {
		logger.Warn("Post-delete hook failed", slog.String("issue_id", issueID), slog.String("error", err.Error()))
	}

	logger.Info("Issue deleted successfully", slog.String("issue_id", issueID), slog.String("journal_id", journalID))

	return &dto.IssueLifecycleResult{
		Event:       &dto.GlobalEvent{Name: eventIssueDeleted, Data: map[string]any{"issueId": issueID}},
		Submissions: outcomes,
	}, nil
}

// detachIssuePublications detaches every publication referencing the issue
// (nulling the reference and resetting the publication to queued) and
// recomputes each owning submission's status.
func (s *issueService) detachIssuePublications(ctx context.Context, journalID, issueID string, userID string) []dto.SubmissionOutcome {
	logger := middleware.GetLoggerFromCtx(ctx)

	submissions, err := s.submissionRepo.ListSubmissions(ctx, portsrepo.SubmissionFilter{
		JournalIDs: []string{journalID},
		IssueIDs:   []string{issueID},
	})
	if err != nil {
		logger.Error("Failed to list submissions for issue delete", slog.String("error", err.Error()), slog.String("issue_id", issueID))
		return []dto.SubmissionOutcome{}
	}

	outcomes := make([]dto.SubmissionOutcome, 0, len(submissions))
	for _, submission := range submissions {
		outcome := dto.SubmissionOutcome{SubmissionID: submission.SubmissionID, OK: true}

		publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submission.SubmissionID)
		if err != nil {
			logger.Error("Failed to load publications for submission", slog.String("error", err.Error()), slog.String("submission_id", submission.SubmissionID))
			outcome.OK = false
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}

		touched := false
		for i := range publications {
			if publications[i].IssueID == nil || *publications[i].IssueID != issueID {
				continue
			}
			update := domain.PublicationUpdate{
				IssueID: domain.NewNullOptional[string](),
				Status:  domain.NewOptional(domain.SubmissionQueued),
			}
			if err := s.submissionRepo.EditPublication(ctx, publications[i].PublicationID, update, userID); err != nil {
				logger.Error("Failed to detach publication from issue", slog.String("error", err.Error()), slog.String("publication_id", publications[i].PublicationID))
				outcome.OK = false
				outcome.Error = err.Error()
				continue
			}
			touched = true
		}

		if touched {
			if _, err := s.submissionRepo.RecomputeSubmissionStatus(ctx, submission.SubmissionID, userID); err != nil {
				logger.Error("Failed to recompute submission status", slog.String("error", err.Error()), slog.String("submission_id", submission.SubmissionID))
				outcome.OK = false
				outcome.Error = err.Error()
			}
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// rederiveCurrentIssue points the journal's current issue at its most
// recently published issue, or clears it when the journal has none left.
// excludeIssueID skips an issue whose published flag is being cleared in the
// same operation.
func (s *issueService) rederiveCurrentIssue(ctx context.Context, journalID string, excludeIssueID *string, userID string) error {
	latest, err := s.issueRepo.FindLatestPublishedIssue(ctx, journalID, excludeIssueID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.journalRepo.UpdateCurrentIssue(ctx, journalID, nil, userID)
		}
		return fmt.Errorf("failed to find latest published issue: %w", err)
	}
	return s.journalRepo.UpdateCurrentIssue(ctx, journalID, &latest.IssueID, userID)
}

// computeOpenAccessDate returns the date delayed open access content opens
// up, delayMonths after now. The delay is decomposed into whole years plus
// remaining months, rolling the month past December into the following year.
// Day-of-month overflow normalizes forward (Jan 31 + 1 month lands in early
// March), matching civil calendar arithmetic.
func computeOpenAccessDate(now time.Time, delayMonths int) time.Time {
	years := delayMonths / 12
	months := delayMonths % 12

	month := int(now.Month()) + months
	year := now.Year() + years + (month-1)/12
	month = (month-1)%12 + 1

	return time.Date(year, time.Month(month), now.Day(), 0, 0, 0, 0, time.UTC)
}

// boolOrDefault dereferences an optional request flag.
func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
