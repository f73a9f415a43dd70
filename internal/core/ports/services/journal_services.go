package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal by its ID.
	GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// GetJournalByPath retrieves a journal by its URL path slug.
	GetJournalByPath(ctx context.Context, path string) (*domain.Journal, error)

	// ListUserJournals retrieves journals a user belongs to.
	// If includeDisabled is true, it includes disabled journals the user manages.
	ListUserJournals(ctx context.Context, userID string, includeDisabled bool) ([]domain.Journal, error)

	// ListJournalUsers retrieves all users and their roles for a specific journal.
	// Only members of the journal can access this data.
	ListJournalUsers(ctx context.Context, journalID string, requestingUserID string) ([]domain.UserJournal, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournal persists a new journal and makes the creator its manager.
	CreateJournal(ctx context.Context, path, name, description string, creatorUserID string) (*domain.Journal, error)

	// UpdateJournalSettings updates a journal's publishing configuration.
	// Only journal managers may change settings.
	UpdateJournalSettings(ctx context.Context, journalID string, settings domain.JournalSettingsUpdate, requestingUserID string) (*domain.Journal, error)

	// DisableJournal marks a journal as disabled.
	DisableJournal(ctx context.Context, journalID string, requestingUserID string) error

	// EnableJournal marks a journal as enabled.
	EnableJournal(ctx context.Context, journalID string, requestingUserID string) error
}

// JournalMembershipSvc defines operations for managing journal membership
type JournalMembershipSvc interface {
	// AddUserToJournal adds a user to a journal with a specific role.
	AddUserToJournal(ctx context.Context, addingUserID, targetUserID, journalID string, role domain.UserJournalRole) error

	// RemoveUserFromJournal removes a user from a journal.
	// Only journal managers can remove users.
	RemoveUserFromJournal(ctx context.Context, requestingUserID, targetUserID, journalID string) error

	// UpdateUserJournalRole updates a user's role in a journal.
	// Only journal managers can update user roles.
	UpdateUserJournalRole(ctx context.Context, requestingUserID, targetUserID, journalID string, newRole domain.UserJournalRole) error
}

// JournalAuthorizerSvc defines operations for journal authorization
type JournalAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a journal.
	AuthorizeUserAction(ctx context.Context, userID, journalID string, requiredRole domain.UserJournalRole) error
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	JournalMembershipSvc
	JournalAuthorizerSvc
}
