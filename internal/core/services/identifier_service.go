package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
)

// identifierService implements the IdentifierSvcFacade. DOIs are minted from
// the journal's registered prefix and a suffix derived from the journal path
// and the identified object, e.g. 10.1234/jpk.v12i3 for an issue.
type identifierService struct {
	BaseService
	issueRepo      portsrepo.IssueRepositoryFacade
	submissionRepo portsrepo.SubmissionRepositoryFacade
}

// NewIdentifierService creates a new identifier service with the provided dependencies
func NewIdentifierService(issueRepo portsrepo.IssueRepositoryFacade, submissionRepo portsrepo.SubmissionRepositoryFacade) portssvc.IdentifierSvcFacade {
	return &identifierService{
		issueRepo:      issueRepo,
		submissionRepo: submissionRepo,
	}
}

// Ensure identifierService implements the IdentifierSvcFacade interface
var _ portssvc.IdentifierSvcFacade = (*identifierService)(nil)

// CreateIssueDOI mints and persists a DOI for the issue. Journals without a
// configured prefix skip assignment; issues that already carry a DOI keep it.
func (s *identifierService) CreateIssueDOI(ctx context.Context, journal *domain.Journal, issue *domain.Issue, requestingUserID string) (*string, error) {
	if journal.DOIPrefix == "" {
		s.LogDebug(ctx, "Journal has no DOI prefix configured, skipping issue DOI assignment",
			slog.String("journal_id", journal.JournalID))
		return nil, nil
	}
	if issue.DOI != nil {
		return issue.DOI, nil
	}

	doi := fmt.Sprintf("%s/%s.v%di%s", journal.DOIPrefix, journal.Path, issue.Volume, issue.Number)

	update := domain.IssueUpdate{DOI: domain.NewOptional(doi)}
	if err := s.issueRepo.EditIssue(ctx, issue.IssueID, update, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to persist issue DOI",
			slog.String("issue_id", issue.IssueID),
			slog.String("doi", doi))
		return nil, fmt.Errorf("failed to persist issue DOI: %w", err)
	}

	s.LogInfo(ctx, "Issue DOI assigned",
		slog.String("issue_id", issue.IssueID),
		slog.String("doi", doi))
	return &doi, nil
}

// CreatePublicationDOI mints and persists a DOI for a publication.
func (s *identifierService) CreatePublicationDOI(ctx context.Context, journal *domain.Journal, publication *domain.Publication, requestingUserID string) (*string, error) {
	if journal.DOIPrefix == "" {
		s.LogDebug(ctx, "Journal has no DOI prefix configured, skipping publication DOI assignment",
			slog.String("journal_id", journal.JournalID))
		return nil, nil
	}
	if publication.DOI != nil {
		return publication.DOI, nil
	}

	// The first UUID group is enough to keep suffixes short and unique within
	// the prefix.
	shortID := publication.PublicationID
	if idx := strings.IndexByte(shortID, '-'); idx > 0 {
		shortID = shortID[:idx]
	}
	doi := fmt.Sprintf("%s/%s.%s", journal.DOIPrefix, journal.Path, shortID)

	update := domain.PublicationUpdate{DOI: domain.NewOptional(doi)}
	if err := s.submissionRepo.EditPublication(ctx, publication.PublicationID, update, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to persist publication DOI",
			slog.String("publication_id", publication.PublicationID),
			slog.String("doi", doi))
		return nil, fmt.Errorf("failed to persist publication DOI: %w", err)
	}

	s.LogInfo(ctx, "Publication DOI assigned",
		slog.String("publication_id", publication.PublicationID),
		slog.String("doi", doi))
	return &doi, nil
}

// IssueUpdated records that the metadata of an already-identified issue
// changed. Registration agencies pick pending refreshes up out of band, so
// this only needs to leave a trace here.
func (s *identifierService) IssueUpdated(ctx context.Context, journal *domain.Journal, issue *domain.Issue) error {
	if issue.DOI == nil {
		return nil
	}

	s.LogInfo(ctx, "Issue metadata changed, DOI registration refresh pending",
		slog.String("issue_id", issue.IssueID),
		slog.String("doi", *issue.DOI),
		slog.String("journal_id", journal.JournalID))
	return nil
}
