package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// SubscriptionSvcFacade defines subscription type management and reader
// access checks for subscription-mode journals.
type SubscriptionSvcFacade interface {
	// CreateSubscriptionType adds a subscription offering to a journal.
	// Only journal managers may create offerings.
	CreateSubscriptionType(ctx context.Context, journalID string, req dto.CreateSubscriptionTypeRequest, requestingUserID string) (*domain.SubscriptionType, error)

	// ListSubscriptionTypes retrieves the journal's subscription offerings.
	ListSubscriptionTypes(ctx context.Context, journalID string) ([]domain.SubscriptionType, error)

	// DeleteSubscriptionType removes a subscription offering.
	DeleteSubscriptionType(ctx context.Context, journalID, subscriptionTypeID string, requestingUserID string) error

	// Subscribe creates a subscription for a user against an offering.
	Subscribe(ctx context.Context, journalID, subscriptionTypeID, userID string) (*domain.Subscription, error)

	// CanUserAccessIssue reports whether a user may read the content of an
	// issue, considering the journal's publishing mode, the issue's access
	// status and open-access date, and the user's subscriptions.
	CanUserAccessIssue(ctx context.Context, userID string, journal *domain.Journal, issue *domain.Issue) (bool, error)
}
