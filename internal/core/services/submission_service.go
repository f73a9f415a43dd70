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

// submissionService provides submission, publication version and galley
// operations on top of the submission repository.
type submissionService struct {
	submissionRepo portsrepo.SubmissionRepositoryWithTx
	issueRepo      portsrepo.IssueRepositoryFacade
	journalSvc     portssvc.JournalAuthorizerSvc
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	submissionRepo portsrepo.SubmissionRepositoryWithTx,
	issueRepo portsrepo.IssueRepositoryFacade,
	journalSvc portssvc.JournalAuthorizerSvc,
) portssvc.SubmissionSvcFacade {
	return &submissionService{
		submissionRepo: submissionRepo,
		issueRepo:      issueRepo,
		journalSvc:     journalSvc,
	}
}

// Ensure submissionService implements the portssvc.SubmissionSvcFacade interface
var _ portssvc.SubmissionSvcFacade = (*submissionService)(nil)

// fetchSubmissionInJournal retrieves a submission and verifies it belongs to
// the given journal, answering NotFound otherwise so callers cannot probe
// other journals' submissions.
func (s *submissionService) fetchSubmissionInJournal(ctx context.Context, journalID, submissionID string) (*domain.Submission, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	submission, err := s.submissionRepo.FindSubmissionByID(ctx, submissionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find submission by ID", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		}
		return nil, err
	}

	if submission.JournalID != journalID {
		logger.Warn("Submission found but belongs to different journal", slog.String("submission_id", submissionID), slog.String("submission_journal", submission.JournalID), slog.String("requested_journal", journalID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return submission, nil
}

// fetchPublicationInJournal retrieves a publication and verifies, through its
// submission, that it belongs to the given journal.
func (s *submissionService) fetchPublicationInJournal(ctx context.Context, journalID, publicationID string) (*domain.Publication, *domain.Submission, error) {
	publication, err := s.submissionRepo.FindPublicationByID(ctx, publicationID)
	if err != nil {
		return nil, nil, err
	}

	submission, err := s.fetchSubmissionInJournal(ctx, journalID, publication.SubmissionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrNotFound // Obscure existence
		}
		return nil, nil, err
	}

	return publication, submission, nil
}

// GetSubmissionByID retrieves a submission with its publication versions.
// Published submissions are visible to everyone; everything else only to the
// journal's editorial users.
func (s *submissionService) GetSubmissionByID(ctx context.Context, journalID, submissionID string, requestingUserID string) (*dto.SubmissionResponse, error) {
	submission, err := s.fetchSubmissionInJournal(ctx, journalID, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != domain.SubmissionPublished {
		if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
			return nil, err
		}
	}

	publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load publications of submission %s: %w", submissionID, err)
	}

	resp := dto.ToSubmissionResponse(submission, publications)
	return &resp, nil
}

// ListSubmissions retrieves a journal's submissions. This is an editorial
// listing and requires at least assistant access.
func (s *submissionService) ListSubmissions(ctx context.Context, journalID string, requestingUserID string, params dto.ListSubmissionsParams) (*dto.ListSubmissionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
		logger.Warn("Authorization failed for ListSubmissions", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	filter := portsrepo.SubmissionFilter{JournalIDs: []string{journalID}}
	for _, st := range params.Status {
		filter.StatusIn = append(filter.StatusIn, domain.SubmissionStatus(st))
	}
	if params.IssueID != nil && *params.IssueID != "" {
		filter.IssueIDs = []string{*params.IssueID}
	}

	submissions, err := s.submissionRepo.ListSubmissions(ctx, filter)
	if err != nil {
		logger.Error("Failed to list submissions from repository", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve submissions: %w", err)
	}

	resp := dto.ListSubmissionsResponse{Submissions: make([]dto.SubmissionResponse, 0, len(submissions))}
	for i := range submissions {
		publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submissions[i].SubmissionID)
		if err != nil {
			logger.Error("Failed to load publications for submission", slog.String("error", err.Error()), slog.String("submission_id", submissions[i].SubmissionID))
			return nil, fmt.Errorf("failed to load publications: %w", err)
		}
		resp.Submissions = append(resp.Submissions, dto.ToSubmissionResponse(&submissions[i], publications))
	}

	logger.Debug("Submissions listed successfully", slog.Int("count", len(submissions)), slog.String("journal_id", journalID))
	return &resp, nil
}

// CreateSubmission persists a new queued submission with its first publication
// version. Any journal member can author a submission.
func (s *submissionService) CreateSubmission(ctx context.Context, journalID string, req dto.CreateSubmissionRequest, creatorUserID string) (*dto.SubmissionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, creatorUserID, journalID, domain.RoleReader); err != nil {
		logger.Warn("Authorization failed for CreateSubmission", slog.String("user_id", creatorUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now().UTC()
	submissionID := uuid.NewString()
	publicationID := uuid.NewString()

	audit := domain.NewAuditFields(creatorUserID, now)

	submission := domain.Submission{
		SubmissionID:  submissionID,
		JournalID:     journalID,
		Status:        domain.SubmissionQueued,
		DateSubmitted: now,
		AuditFields:   audit,
	}
	if err := s.submissionRepo.SaveSubmission(ctx, submission); err != nil {
		logger.Error("Failed to save submission", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	publication := domain.Publication{
		PublicationID: publicationID,
		SubmissionID:  submissionID,
		Version:       1,
		Status:        domain.SubmissionQueued,
		Title:         req.Title,
		Abstract:      req.Abstract,
		AuditFields:   audit,
	}
	if err := s.submissionRepo.SavePublication(ctx, publication); err != nil {
		logger.Error("Failed to save first publication version", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		return nil, fmt.Errorf("failed to save publication: %w", err)
	}

	if err := s.submissionRepo.UpdateCurrentPublication(ctx, submissionID, publicationID, creatorUserID); err != nil {
		logger.Error("Failed to set current publication", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		return nil, fmt.Errorf("failed to set current publication: %w", err)
	}
	submission.CurrentPublicationID = &publicationID

	logger.Info("Submission created successfully", slog.String("submission_id", submissionID), slog.String("journal_id", journalID))

	resp := dto.ToSubmissionResponse(&submission, []domain.Publication{publication})
	return &resp, nil
}

// CreatePublicationVersion adds a new publication version to a submission,
// copied from the latest existing version and starting over as queued.
func (s *submissionService) CreatePublicationVersion(ctx context.Context, journalID, submissionID string, requestingUserID string) (*domain.Publication, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for CreatePublicationVersion", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	if _, err := s.fetchSubmissionInJournal(ctx, journalID, submissionID); err != nil {
		return nil, err
	}

	publications, err := s.submissionRepo.FindPublicationsBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load publications of submission %s: %w", submissionID, err)
	}
	if len(publications) == 0 {
		return nil, apperrors.NewValidationError("submission " + submissionID + " has no publication to version from")
	}

	latest := publications[len(publications)-1] // FindPublicationsBySubmissionID orders by version

	now := time.Now().UTC()
	publication := domain.Publication{
		PublicationID: uuid.NewString(),
		SubmissionID:  submissionID,
		Version:       latest.Version + 1,
		Status:        domain.SubmissionQueued,
		Title:         latest.Title,
		Abstract:      latest.Abstract,
		AuditFields:   domain.NewAuditFields(requestingUserID, now),
	}

	if err := s.submissionRepo.SavePublication(ctx, publication); err != nil {
		logger.Error("Failed to save publication version", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		return nil, fmt.Errorf("failed to save publication version: %w", err)
	}

	if err := s.submissionRepo.UpdateCurrentPublication(ctx, submissionID, publication.PublicationID, requestingUserID); err != nil {
		logger.Error("Failed to set current publication", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		return nil, fmt.Errorf("failed to set current publication: %w", err)
	}

	logger.Info("Publication version created", slog.String("publication_id", publication.PublicationID), slog.String("submission_id", submissionID), slog.Int("version", publication.Version))
	return &publication, nil
}

// SchedulePublication assigns a publication to an issue. The publication lands
// on SCHEDULED while the issue is unpublished, or goes straight to PUBLISHED
// when scheduling into an already published issue.
func (s *submissionService) SchedulePublication(ctx context.Context, journalID, publicationID, issueID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for SchedulePublication", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return err
	}

	publication, _, err := s.fetchPublicationInJournal(ctx, journalID, publicationID)
	if err != nil {
		return err
	}

	issue, err := s.issueRepo.FindIssueByID(ctx, issueID)
	if err != nil {
		return err
	}
	if issue.JournalID != journalID {
		return apperrors.ErrNotFound // Obscure existence
	}

	if publication.Status == domain.SubmissionPublished {
		return apperrors.NewConflictError("publication " + publicationID + " is already published")
	}

	update := domain.PublicationUpdate{IssueID: domain.NewOptional(issueID)}
	if err := s.submissionRepo.EditPublication(ctx, publicationID, update, requestingUserID); err != nil {
		logger.Error("Failed to assign publication to issue", slog.String("error", err.Error()), slog.String("publication_id", publicationID), slog.String("issue_id", issueID))
		return fmt.Errorf("failed to assign publication to issue: %w", err)
	}

	if err := s.submissionRepo.PublishPublication(ctx, publicationID, requestingUserID); err != nil {
		logger.Error("Failed to move publication into issue workflow", slog.String("error", err.Error()), slog.String("publication_id", publicationID))
		return fmt.Errorf("failed to schedule publication: %w", err)
	}

	logger.Info("Publication scheduled", slog.String("publication_id", publicationID), slog.String("issue_id", issueID), slog.Bool("issue_published", issue.Published))
	return nil
}

// UnschedulePublication detaches a publication from its issue and returns it
// to the queue.
func (s *submissionService) UnschedulePublication(ctx context.Context, journalID, publicationID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for UnschedulePublication", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return err
	}

	publication, _, err := s.fetchPublicationInJournal(ctx, journalID, publicationID)
	if err != nil {
		return err
	}

	if publication.IssueID == nil {
		return nil // Nothing scheduled, nothing to do
	}

	// Detach first so the revert cannot land back on SCHEDULED.
	update := domain.PublicationUpdate{IssueID: domain.NewNullOptional[string]()}
	if err := s.submissionRepo.EditPublication(ctx, publicationID, update, requestingUserID); err != nil {
		logger.Error("Failed to detach publication from issue", slog.String("error", err.Error()), slog.String("publication_id", publicationID))
		return fmt.Errorf("failed to detach publication: %w", err)
	}

	if err := s.submissionRepo.UnpublishPublication(ctx, publicationID, requestingUserID); err != nil {
		logger.Error("Failed to return publication to queue", slog.String("error", err.Error()), slog.String("publication_id", publicationID))
		return fmt.Errorf("failed to unschedule publication: %w", err)
	}

	logger.Info("Publication unscheduled", slog.String("publication_id", publicationID))
	return nil
}

// DeclineSubmission marks a submission DECLINED. Declined submissions keep
// that status until an editor re-queues them explicitly.
func (s *submissionService) DeclineSubmission(ctx context.Context, journalID, submissionID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleEditor); err != nil {
		logger.Warn("Authorization failed for DeclineSubmission", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return err
	}

	submission, err := s.fetchSubmissionInJournal(ctx, journalID, submissionID)
	if err != nil {
		return err
	}

	if submission.Status == domain.SubmissionPublished {
		return apperrors.NewConflictError("cannot decline a published submission")
	}

	if err := s.submissionRepo.UpdateSubmissionStatus(ctx, submissionID, domain.SubmissionDeclined, requestingUserID); err != nil {
		logger.Error("Failed to decline submission", slog.String("error", err.Error()), slog.String("submission_id", submissionID))
		return fmt.Errorf("failed to decline submission: %w", err)
	}

	logger.Info("Submission declined", slog.String("submission_id", submissionID), slog.String("journal_id", journalID))
	return nil
}

// AddGalley attaches a galley to a publication, appending it to the display
// order.
func (s *submissionService) AddGalley(ctx context.Context, journalID, publicationID string, req dto.CreateGalleyRequest, requestingUserID string) (*domain.Galley, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
		logger.Warn("Authorization failed for AddGalley", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	if _, _, err := s.fetchPublicationInJournal(ctx, journalID, publicationID); err != nil {
		return nil, err
	}

	if req.URLRemote == nil && req.FileID == nil {
		return nil, apperrors.NewValidationError("galley needs either a remote URL or a file")
	}

	existing, err := s.submissionRepo.FindGalleysByPublicationID(ctx, publicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load galleys of publication %s: %w", publicationID, err)
	}

	now := time.Now().UTC()
	galley := domain.Galley{
		GalleyID:      uuid.NewString(),
		PublicationID: publicationID,
		Label:         req.Label,
		Locale:        req.Locale,
		URLRemote:     req.URLRemote,
		FileID:        req.FileID,
		Seq:           len(existing),
		AuditFields:   domain.NewAuditFields(requestingUserID, now),
	}

	if err := s.submissionRepo.SaveGalley(ctx, galley); err != nil {
		logger.Error("Failed to save galley", slog.String("error", err.Error()), slog.String("publication_id", publicationID))
		return nil, fmt.Errorf("failed to save galley: %w", err)
	}

	logger.Info("Galley added", slog.String("galley_id", galley.GalleyID), slog.String("publication_id", publicationID))
	return &galley, nil
}

// ListGalleys retrieves the galleys of a publication in display order.
// Galleys of published content are public; otherwise editorial access is
// required.
func (s *submissionService) ListGalleys(ctx context.Context, journalID, publicationID string, requestingUserID string) ([]domain.Galley, error) {
	publication, _, err := s.fetchPublicationInJournal(ctx, journalID, publicationID)
	if err != nil {
		return nil, err
	}

	if publication.Status != domain.SubmissionPublished {
		if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
			return nil, err
		}
	}

	return s.submissionRepo.FindGalleysByPublicationID(ctx, publicationID)
}

// RemoveGalley deletes a galley from a publication.
func (s *submissionService) RemoveGalley(ctx context.Context, journalID, publicationID, galleyID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.journalSvc.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleAssistant); err != nil {
		logger.Warn("Authorization failed for RemoveGalley", slog.String("user_id", requestingUserID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return err
	}

	if _, _, err := s.fetchPublicationInJournal(ctx, journalID, publicationID); err != nil {
		return err
	}

	galleys, err := s.submissionRepo.FindGalleysByPublicationID(ctx, publicationID)
	if err != nil {
		return fmt.Errorf("failed to load galleys of publication %s: %w", publicationID, err)
	}

	found := false
	for _, g := range galleys {
		if g.GalleyID == galleyID {
			found = true
			break
		}
	}
	if !found {
		return apperrors.NewNotFoundError("galley " + galleyID + " not found on publication " + publicationID)
	}

	if err := s.submissionRepo.DeleteGalley(ctx, galleyID); err != nil {
		logger.Error("Failed to delete galley", slog.String("error", err.Error()), slog.String("galley_id", galleyID))
		return fmt.Errorf("failed to delete galley: %w", err)
	}

	logger.Info("Galley removed", slog.String("galley_id", galleyID), slog.String("publication_id", publicationID))
	return nil
}
