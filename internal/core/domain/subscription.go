package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionType represents a purchasable subscription offering of a
// journal running in SUBSCRIPTION publishing mode.
type SubscriptionType struct {
	SubscriptionTypeID string          `json:"subscriptionTypeID"` // Primary Key (e.g., UUID)
	JournalID          string          `json:"journalID"`          // FK -> journals.journal_id (NON-NULL)
	Name               string          `json:"name"`               // e.g., "Individual annual"
	Description        string          `json:"description"`        // Optional description
	Cost               decimal.Decimal `json:"cost"`               // Precise decimal type
	CurrencyCode       string          `json:"currencyCode"`       // e.g., "USD"
	DurationMonths     int             `json:"durationMonths"`     // Length of the subscription term
	Institutional      bool            `json:"institutional"`      // Institutional vs individual offering
	AuditFields
}

// Subscription represents a reader's active subscription to a journal.
type Subscription struct {
	SubscriptionID     string    `json:"subscriptionID"`     // Primary Key (e.g., UUID)
	SubscriptionTypeID string    `json:"subscriptionTypeID"` // FK -> subscription_types (NON-NULL)
	JournalID          string    `json:"journalID"`          // FK -> journals.journal_id (NON-NULL)
	UserID             string    `json:"userID"`             // FK -> users.user_id (NON-NULL)
	DateStart          time.Time `json:"dateStart"`
	DateEnd            time.Time `json:"dateEnd"`
	AuditFields
}

// IsActive reports whether the subscription covers the given time.
func (s *Subscription) IsActive(now time.Time) bool {
	return !now.Before(s.DateStart) && now.Before(s.DateEnd)
}
