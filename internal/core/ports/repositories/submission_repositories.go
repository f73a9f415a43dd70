package repositories

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// SubmissionFilter narrows submission listings. Zero-value fields are ignored.
type SubmissionFilter struct {
	JournalIDs []string
	IssueIDs   []string // match submissions whose publications reference these issues
	StatusIn   []domain.SubmissionStatus
}

// SubmissionReader defines read operations for submission data
type SubmissionReader interface {
	// FindSubmissionByID retrieves a specific submission by its unique identifier.
	FindSubmissionByID(ctx context.Context, submissionID string) (*domain.Submission, error)

	// ListSubmissions retrieves all submissions matching the filter.
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]domain.Submission, error)
}

// SubmissionWriter defines write operations for submission data
type SubmissionWriter interface {
	// SaveSubmission persists a new submission.
	SaveSubmission(ctx context.Context, submission domain.Submission) error

	// UpdateSubmissionStatus overwrites the submission's aggregate status.
	UpdateSubmissionStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus, updatedByUserID string) error

	// UpdateCurrentPublication points the submission at its representative
	// publication version.
	UpdateCurrentPublication(ctx context.Context, submissionID string, publicationID string, updatedByUserID string) error

	// RecomputeSubmissionStatus re-derives and persists the submission's status
	// from its publications, leaving DECLINED submissions untouched. It returns
	// the resulting status.
	RecomputeSubmissionStatus(ctx context.Context, submissionID string, updatedByUserID string) (domain.SubmissionStatus, error)
}

// PublicationReader defines read operations for publication data
type PublicationReader interface {
	// FindPublicationByID retrieves a specific publication.
	FindPublicationByID(ctx context.Context, publicationID string) (*domain.Publication, error)

	// FindPublicationsBySubmissionID retrieves all publications of a submission,
	// ordered by version.
	FindPublicationsBySubmissionID(ctx context.Context, submissionID string) ([]domain.Publication, error)

	// FindPublicationsByIssueID retrieves all publications referencing an issue.
	FindPublicationsByIssueID(ctx context.Context, issueID string) ([]domain.Publication, error)
}

// PublicationWriter defines write operations for publication data
type PublicationWriter interface {
	// SavePublication persists a new publication version.
	SavePublication(ctx context.Context, publication domain.Publication) error

	// EditPublication applies a partial update to a publication. Optional
	// fields that are set update the column; explicit nulls clear it.
	EditPublication(ctx context.Context, publicationID string, update domain.PublicationUpdate, updatedByUserID string) error

	// PublishPublication moves the publication as far toward published as its
	// issue allows: PUBLISHED (stamping DatePublished) when the issue is
	// published or the publication has no issue, SCHEDULED otherwise. The
	// owning submission's status is recomputed within the same database
	// transaction.
	PublishPublication(ctx context.Context, publicationID string, updatedByUserID string) error

	// UnpublishPublication reverts the publication to QUEUED, clears its
	// DatePublished, and recomputes the owning submission's status within the
	// same database transaction.
	UnpublishPublication(ctx context.Context, publicationID string, updatedByUserID string) error
}

// GalleyReader defines read operations for galley data
type GalleyReader interface {
	// FindGalleysByPublicationID retrieves the galleys of a publication in
	// display order.
	FindGalleysByPublicationID(ctx context.Context, publicationID string) ([]domain.Galley, error)
}

// GalleyWriter defines write operations for galley data
type GalleyWriter interface {
	// SaveGalley persists a new galley.
	SaveGalley(ctx context.Context, galley domain.Galley) error

	// DeleteGalley removes a galley.
	DeleteGalley(ctx context.Context, galleyID string) error
}

// SubmissionRepositoryFacade combines all submission-related repository interfaces
// This is a facade for clients that need access to all operations
type SubmissionRepositoryFacade interface {
	SubmissionReader
	SubmissionWriter
	PublicationReader
	PublicationWriter
	GalleyReader
	GalleyWriter
}

// SubmissionRepositoryWithTx extends SubmissionRepositoryFacade with transaction capabilities
type SubmissionRepositoryWithTx interface {
	SubmissionRepositoryFacade
	TransactionManager
}
