package domain

import "time"

// PublishingMode controls how readers get access to a journal's published content.
type PublishingMode string

const (
	// PublishingModeOpen makes all published content freely available.
	PublishingModeOpen PublishingMode = "OPEN"
	// PublishingModeSubscription gates published content behind a subscription,
	// optionally opening it after a delay.
	PublishingModeSubscription PublishingMode = "SUBSCRIPTION"
	// PublishingModeNone means the journal does not publish content online.
	PublishingModeNone PublishingMode = "NONE"
)

// Journal represents a single journal hosted on the platform. It is the
// isolation boundary for issues, submissions, users and settings.
type Journal struct {
	JournalID                  string         `json:"journalID"`                  // Primary Key (e.g., UUID)
	Path                       string         `json:"path"`                       // URL slug, unique across the platform
	Name                       string         `json:"name"`                       // Display name of the journal
	Description                string         `json:"description"`                // Optional description
	PublishingMode             PublishingMode `json:"publishingMode"`             // OPEN, SUBSCRIPTION or NONE
	DelayedOpenAccessDuration  int            `json:"delayedOpenAccessDuration"`  // Months before subscription content opens; 0 disables
	DOIPrefix                  string         `json:"doiPrefix"`                  // Registration agency prefix (e.g., "10.1234"); empty disables DOI assignment
	CurrentIssueID             *string        `json:"currentIssueID"`             // Nullable FK -> issues.issue_id
	Enabled                    bool           `json:"enabled"`                    // Indicates whether the journal is active or disabled
	Version                    int64          `json:"version"`                    // Optimistic locking version
	AuditFields                               // Embed common audit fields
}

// UserJournalRole defines the possible roles a user can have within a journal.
type UserJournalRole string

const (
	RoleManager   UserJournalRole = "MANAGER"   // Full control over the journal, including settings
	RoleEditor    UserJournalRole = "EDITOR"    // Manages issues and the publication workflow
	RoleAssistant UserJournalRole = "ASSISTANT" // Limited editorial access, no publishing
	RoleReader    UserJournalRole = "READER"    // Registered reader, receives notifications
	RoleRemoved   UserJournalRole = "REMOVED"   // For users who have been removed from the journal
)

// CanPublish reports whether the role is allowed to run issue lifecycle
// operations (publish, unpublish, set current, delete).
func (r UserJournalRole) CanPublish() bool {
	return r == RoleManager || r == RoleEditor
}

// CanManage reports whether the role is allowed to change journal settings
// and memberships.
func (r UserJournalRole) CanManage() bool {
	return r == RoleManager
}

// JournalSettingsUpdate describes a partial update to a journal's publishing
// configuration. Fields left unset are not touched.
type JournalSettingsUpdate struct {
	Name                      Optional[string]
	Description               Optional[string]
	PublishingMode            Optional[PublishingMode]
	DelayedOpenAccessDuration Optional[int]
	DOIPrefix                 Optional[string]
}

// UserJournal represents the membership of a User in a Journal.
type UserJournal struct {
	UserID    string          `json:"userID"`    // FK -> users.user_id
	UserName  string          `json:"userName"`  // Name of the user
	JournalID string          `json:"journalID"` // FK -> journals.journal_id
	Role      UserJournalRole `json:"role"`      // Role of the user in this specific journal
	JoinedAt  time.Time       `json:"joinedAt"`  // Timestamp when the user joined the journal
}
