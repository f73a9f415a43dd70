package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// IdentifierSvcFacade defines the identifier (DOI) assignment operations the
// lifecycle manager depends on.
type IdentifierSvcFacade interface {
	// CreateIssueDOI mints and persists a DOI for the issue using the
	// journal's registered prefix. It is a no-op when the journal has no
	// prefix configured or the issue already carries a DOI.
	CreateIssueDOI(ctx context.Context, journal *domain.Journal, issue *domain.Issue, requestingUserID string) (*string, error)

	// CreatePublicationDOI mints and persists a DOI for a publication.
	CreatePublicationDOI(ctx context.Context, journal *domain.Journal, publication *domain.Publication, requestingUserID string) (*string, error)

	// IssueUpdated notifies the identifier subsystem that metadata of an
	// already-identified issue changed, so registrations can be refreshed.
	IssueUpdated(ctx context.Context, journal *domain.Journal, issue *domain.Issue) error
}
