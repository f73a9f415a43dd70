package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// SubmissionReaderSvc defines read operations for submission data
type SubmissionReaderSvc interface {
	// GetSubmissionByID retrieves a specific submission with its publications.
	GetSubmissionByID(ctx context.Context, journalID, submissionID string, requestingUserID string) (*dto.SubmissionResponse, error)

	// ListSubmissions retrieves submissions of a journal, optionally narrowed
	// by status or issue.
	ListSubmissions(ctx context.Context, journalID string, requestingUserID string, params dto.ListSubmissionsParams) (*dto.ListSubmissionsResponse, error)
}

// SubmissionWriterSvc defines write operations for submission data
type SubmissionWriterSvc interface {
	// CreateSubmission persists a new queued submission with its first
	// publication version.
	CreateSubmission(ctx context.Context, journalID string, req dto.CreateSubmissionRequest, creatorUserID string) (*dto.SubmissionResponse, error)

	// CreatePublicationVersion adds a new publication version to a submission,
	// copied from the latest version.
	CreatePublicationVersion(ctx context.Context, journalID, submissionID string, requestingUserID string) (*domain.Publication, error)

	// SchedulePublication assigns a publication to an issue, moving it (and its
	// submission) to SCHEDULED, or directly to PUBLISHED when the issue is
	// already published.
	SchedulePublication(ctx context.Context, journalID, publicationID, issueID string, requestingUserID string) error

	// UnschedulePublication detaches a scheduled publication from its issue,
	// returning it to QUEUED.
	UnschedulePublication(ctx context.Context, journalID, publicationID string, requestingUserID string) error

	// DeclineSubmission marks a submission DECLINED.
	DeclineSubmission(ctx context.Context, journalID, submissionID string, requestingUserID string) error
}

// GalleySvc defines operations on publication galleys
type GalleySvc interface {
	// AddGalley attaches a galley to a publication.
	AddGalley(ctx context.Context, journalID, publicationID string, req dto.CreateGalleyRequest, requestingUserID string) (*domain.Galley, error)

	// ListGalleys retrieves the galleys of a publication in display order.
	ListGalleys(ctx context.Context, journalID, publicationID string, requestingUserID string) ([]domain.Galley, error)

	// RemoveGalley deletes a galley from a publication.
	RemoveGalley(ctx context.Context, journalID, publicationID, galleyID string, requestingUserID string) error
}

// SubmissionSvcFacade combines all submission-related service interfaces
// This is a facade for clients that need access to all operations
type SubmissionSvcFacade interface {
	SubmissionReaderSvc
	SubmissionWriterSvc
	GalleySvc
}
