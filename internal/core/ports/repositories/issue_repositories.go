package repositories

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// IssueFilter narrows issue listings. Zero-value fields are ignored.
type IssueFilter struct {
	JournalIDs []string
	IssueIDs   []string
	Published  *bool // nil means both published and unpublished
	Volume     *int
	Year       *int
}

// IssueReader defines read operations for issue data
type IssueReader interface {
	// FindIssueByID retrieves a specific issue by its unique identifier.
	FindIssueByID(ctx context.Context, issueID string) (*domain.Issue, error)

	// ListIssues retrieves a paginated list of issues matching the filter,
	// ordered by publication recency (published issues newest first, then
	// unpublished by creation). It returns the issues, a token for the next
	// page, and an error.
	ListIssues(ctx context.Context, filter IssueFilter, limit int, nextToken *string) ([]domain.Issue, *string, error)

	// FindLatestPublishedIssue retrieves the most recently published issue of a
	// journal, optionally excluding one issue ID. Returns apperrors.ErrNotFound
	// when the journal has no published issues.
	FindLatestPublishedIssue(ctx context.Context, journalID string, excludeIssueID *string) (*domain.Issue, error)
}

// IssueWriter defines write operations for issue data
type IssueWriter interface {
	// SaveIssue persists a new issue.
	SaveIssue(ctx context.Context, issue domain.Issue) error

	// EditIssue applies a partial update to an issue. Optional fields that are
	// set update the column; explicit nulls clear it; unset fields are left
	// untouched. The issue version is incremented.
	EditIssue(ctx context.Context, issueID string, update domain.IssueUpdate, updatedByUserID string) error

	// DeleteIssue removes an issue row.
	DeleteIssue(ctx context.Context, issueID string) error
}

// IssueRepositoryFacade combines all issue-related repository interfaces
// This is a facade for clients that need access to all operations
type IssueRepositoryFacade interface {
	IssueReader
	IssueWriter
}

// IssueRepositoryWithTx extends IssueRepositoryFacade with transaction capabilities
type IssueRepositoryWithTx interface {
	IssueRepositoryFacade
	TransactionManager
}
