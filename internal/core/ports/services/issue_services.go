package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// IssueReaderSvc defines read operations for issue data
type IssueReaderSvc interface {
	// GetIssueByID retrieves a specific issue. The issue must belong to the
	// given journal and the requesting user must be a member of that journal.
	GetIssueByID(ctx context.Context, journalID, issueID string, requestingUserID string) (*domain.Issue, error)

	// ListIssues retrieves a paginated list of a journal's issues.
	ListIssues(ctx context.Context, journalID string, requestingUserID string, params dto.ListIssuesParams) (*dto.ListIssuesResponse, error)

	// GetCurrentIssue retrieves the journal's current issue, or
	// apperrors.ErrNotFound when none is set.
	GetCurrentIssue(ctx context.Context, journalID string) (*domain.Issue, error)

	// GetIssueTOC retrieves the issue's table of contents: the publications
	// scheduled or published into it. Readers only see published entries.
	GetIssueTOC(ctx context.Context, journalID, issueID string, requestingUserID string) ([]domain.Publication, error)
}

// IssueWriterSvc defines write operations for issue data
type IssueWriterSvc interface {
	// CreateIssue persists a new unpublished issue.
	CreateIssue(ctx context.Context, journalID string, req dto.CreateIssueRequest, creatorUserID string) (*domain.Issue, error)

	// UpdateIssue applies a partial update to issue metadata.
	UpdateIssue(ctx context.Context, journalID, issueID string, req dto.UpdateIssueRequest, requestingUserID string) (*domain.Issue, error)
}

// IssueLifecycleSvc defines the issue lifecycle operations: publishing,
// unpublishing, designating the current issue and deletion, together with
// their side effects on submissions, identifiers and notifications.
type IssueLifecycleSvc interface {
	// PublishIssue publishes an issue: assigns its DOI on first publish, stamps
	// the publication date, computes the access policy from the journal's
	// publishing mode, makes the issue current, moves the issue's scheduled
	// publications to published, and fans out reader notifications.
	//
	// When req.AssignDOIs is set without req.Confirmed and the issue has not
	// been published before, no state is changed and the returned result asks
	// for confirmation.
	PublishIssue(ctx context.Context, journalID, issueID string, req dto.PublishIssueRequest, requestingUserID string) (*dto.IssueLifecycleResult, error)

	// UnpublishIssue reverts a published issue to unpublished, clears its
	// publication date, re-derives the journal's current issue, and reverts the
	// issue's published publications to scheduled.
	UnpublishIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error)

	// SetCurrentIssue makes the issue the journal's current issue.
	SetCurrentIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error)

	// DeleteIssue removes an issue, detaches its publications (resetting their
	// submissions to queued), and re-derives the journal's current issue.
	DeleteIssue(ctx context.Context, journalID, issueID string, requestingUserID string) (*dto.IssueLifecycleResult, error)
}

// IssueSvcFacade combines all issue-related service interfaces
// This is a facade for clients that need access to all operations
type IssueSvcFacade interface {
	IssueReaderSvc
	IssueWriterSvc
	IssueLifecycleSvc
}
