package domain

import "time"

// NotificationType identifies the event a notification describes.
type NotificationType string

const (
	NotificationTypePublishedIssue   NotificationType = "PUBLISHED_ISSUE"
	NotificationTypeSubmissionStatus NotificationType = "SUBMISSION_STATUS"
)

// NotificationLevel controls whether a notification is persisted prominently
// or treated as transient noise by clients.
type NotificationLevel string

const (
	NotificationLevelNormal  NotificationLevel = "NORMAL"
	NotificationLevelTrivial NotificationLevel = "TRIVIAL"
)

// AssocType identifies the kind of entity a notification points at.
type AssocType string

const (
	AssocTypeIssue      AssocType = "ISSUE"
	AssocTypeSubmission AssocType = "SUBMISSION"
)

// Notification represents an in-app notification delivered to a single user.
type Notification struct {
	NotificationID string            `json:"notificationID"` // Primary Key (e.g., UUID)
	UserID         string            `json:"userID"`         // FK -> users.user_id (NON-NULL)
	JournalID      string            `json:"journalID"`      // FK -> journals.journal_id; the context the event occurred in
	Type           NotificationType  `json:"type"`
	Level          NotificationLevel `json:"level"`
	AssocType      AssocType         `json:"assocType"` // What AssocID refers to
	AssocID        string            `json:"assocID"`   // ID of the associated entity
	DateCreated    time.Time         `json:"dateCreated"`
	DateRead       *time.Time        `json:"dateRead"` // Nullable; set when the user reads it
}
