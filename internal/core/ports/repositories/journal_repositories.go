package repositories

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its ID.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByPath retrieves a journal by its URL path slug.
	FindJournalByPath(ctx context.Context, path string) (*domain.Journal, error)

	// ListJournalsByUserID retrieves all journals a user belongs to.
	ListJournalsByUserID(ctx context.Context, userID string, includeDisabled bool, role *domain.UserJournalRole) ([]domain.Journal, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a new journal.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// UpdateJournal updates a journal's settings (name, description, publishing
	// mode, delayed open access duration, DOI prefix).
	UpdateJournal(ctx context.Context, journal domain.Journal) error

	// UpdateCurrentIssue points the journal's current issue at issueID, or
	// clears the pointer when issueID is nil.
	UpdateCurrentIssue(ctx context.Context, journalID string, issueID *string, updatedByUserID string) error

	// UpdateJournalStatus enables or disables a journal.
	UpdateJournalStatus(ctx context.Context, journal *domain.Journal, enabled bool, updatedByUserID string) error
}

// JournalMembershipManager defines operations for managing journal memberships
type JournalMembershipManager interface {
	// AddUserToJournal adds a user to a journal with a specific role.
	AddUserToJournal(ctx context.Context, membership domain.UserJournal) error

	// FindUserJournalRole retrieves the role of a user in a journal.
	FindUserJournalRole(ctx context.Context, userID, journalID string) (*domain.UserJournal, error)

	// ListUsersByJournalID retrieves all memberships of a journal, excluding
	// REMOVED users unless includeRemoved is set.
	ListUsersByJournalID(ctx context.Context, journalID string, includeRemoved ...bool) ([]domain.UserJournal, error)

	// UpdateUserJournalRole updates a user's role in a journal.
	UpdateUserJournalRole(ctx context.Context, userID, journalID string, newRole domain.UserJournalRole) error

	// RemoveUserFromJournal marks a user as removed from a journal.
	RemoveUserFromJournal(ctx context.Context, userID, journalID string) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalMembershipManager
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
