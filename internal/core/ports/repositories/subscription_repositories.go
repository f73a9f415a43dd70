package repositories

import (
	"context"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// SubscriptionTypeReader defines read operations for subscription type data
type SubscriptionTypeReader interface {
	// FindSubscriptionTypeByID retrieves a specific subscription type.
	FindSubscriptionTypeByID(ctx context.Context, subscriptionTypeID string) (*domain.SubscriptionType, error)

	// ListSubscriptionTypesByJournalID retrieves all subscription types offered
	// by a journal.
	ListSubscriptionTypesByJournalID(ctx context.Context, journalID string) ([]domain.SubscriptionType, error)
}

// SubscriptionTypeWriter defines write operations for subscription type data
type SubscriptionTypeWriter interface {
	// SaveSubscriptionType persists a new subscription type.
	SaveSubscriptionType(ctx context.Context, st domain.SubscriptionType) error

	// DeleteSubscriptionType removes a subscription type.
	DeleteSubscriptionType(ctx context.Context, subscriptionTypeID string) error
}

// SubscriptionReader defines read operations for reader subscriptions
type SubscriptionReader interface {
	// HasActiveSubscription reports whether the user holds a subscription to
	// the journal covering the given time.
	HasActiveSubscription(ctx context.Context, userID, journalID string, at time.Time) (bool, error)

	// ListSubscriptionsByUserID retrieves all subscriptions of a user.
	ListSubscriptionsByUserID(ctx context.Context, userID string) ([]domain.Subscription, error)
}

// SubscriptionWriter defines write operations for reader subscriptions
type SubscriptionWriter interface {
	// SaveSubscription persists a new subscription.
	SaveSubscription(ctx context.Context, sub domain.Subscription) error
}

// SubscriptionRepositoryFacade combines all subscription-related repository interfaces
type SubscriptionRepositoryFacade interface {
	SubscriptionTypeReader
	SubscriptionTypeWriter
	SubscriptionReader
	SubscriptionWriter
}
