package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	portssvc "github.com/openjms/journal_mgmt_app/internal/core/ports/services"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// subscriptionService implements the SubscriptionSvcFacade interface
type subscriptionService struct {
	BaseService
	subscriptionRepo portsrepo.SubscriptionRepositoryFacade
}

// NewSubscriptionService creates a new subscription service with the provided dependencies
func NewSubscriptionService(subscriptionRepo portsrepo.SubscriptionRepositoryFacade, authorizer portssvc.JournalAuthorizerSvc) portssvc.SubscriptionSvcFacade {
	return &subscriptionService{
		BaseService:      BaseService{JournalAuthorizer: authorizer},
		subscriptionRepo: subscriptionRepo,
	}
}

// Ensure subscriptionService implements the SubscriptionSvcFacade interface
var _ portssvc.SubscriptionSvcFacade = (*subscriptionService)(nil)

// CreateSubscriptionType adds a subscription offering to a journal
func (s *subscriptionService) CreateSubscriptionType(ctx context.Context, journalID string, req dto.CreateSubscriptionTypeRequest, requestingUserID string) (*domain.SubscriptionType, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		s.LogError(ctx, err, "User not authorized to create subscription type",
			slog.String("user_id", requestingUserID),
			slog.String("journal_id", journalID))
		return nil, err
	}

	if req.Cost.IsNegative() {
		return nil, fmt.Errorf("%w: subscription cost must not be negative", apperrors.ErrValidation)
	}

	now := time.Now()
	st := domain.SubscriptionType{
		SubscriptionTypeID: uuid.NewString(),
		JournalID:          journalID,
		Name:               req.Name,
		Description:        req.Description,
		Cost:               req.Cost,
		CurrencyCode:       req.CurrencyCode,
		DurationMonths:     req.DurationMonths,
		Institutional:      req.Institutional,
		AuditFields:        domain.NewAuditFields(requestingUserID, now),
	}

	if err := s.subscriptionRepo.SaveSubscriptionType(ctx, st); err != nil {
		s.LogError(ctx, err, "Failed to save subscription type",
			slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Subscription type created successfully",
		slog.String("subscription_type_id", st.SubscriptionTypeID),
		slog.String("journal_id", journalID))
	return &st, nil
}

// ListSubscriptionTypes retrieves the journal's subscription offerings
func (s *subscriptionService) ListSubscriptionTypes(ctx context.Context, journalID string) ([]domain.SubscriptionType, error) {
	types, err := s.subscriptionRepo.ListSubscriptionTypesByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list subscription types",
			slog.String("journal_id", journalID))
		return nil, err
	}

	if types == nil {
		return []domain.SubscriptionType{}, nil
	}
	return types, nil
}

// DeleteSubscriptionType removes a subscription offering
func (s *subscriptionService) DeleteSubscriptionType(ctx context.Context, journalID, subscriptionTypeID string, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		return err
	}

	st, err := s.subscriptionRepo.FindSubscriptionTypeByID(ctx, subscriptionTypeID)
	if err != nil {
		return err
	}
	if st.JournalID != journalID {
		s.LogDebug(ctx, "Subscription type belongs to different journal",
			slog.String("subscription_type_id", subscriptionTypeID),
			slog.String("requested_journal", journalID))
		return apperrors.ErrNotFound
	}

	if err := s.subscriptionRepo.DeleteSubscriptionType(ctx, subscriptionTypeID); err != nil {
		s.LogError(ctx, err, "Failed to delete subscription type",
			slog.String("subscription_type_id", subscriptionTypeID))
		return err
	}

	s.LogInfo(ctx, "Subscription type deleted successfully",
		slog.String("subscription_type_id", subscriptionTypeID),
		slog.String("journal_id", journalID))
	return nil
}

// Subscribe creates a subscription for a user against an offering
func (s *subscriptionService) Subscribe(ctx context.Context, journalID, subscriptionTypeID, userID string) (*domain.Subscription, error) {
	st, err := s.subscriptionRepo.FindSubscriptionTypeByID(ctx, subscriptionTypeID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find subscription type",
				slog.String("subscription_type_id", subscriptionTypeID))
		}
		return nil, err
	}
	if st.JournalID != journalID {
		return nil, apperrors.ErrNotFound
	}

	now := time.Now().UTC()
	sub := domain.Subscription{
		SubscriptionID:     uuid.NewString(),
		SubscriptionTypeID: subscriptionTypeID,
		JournalID:          journalID,
		UserID:             userID,
		DateStart:          now,
		DateEnd:            now.AddDate(0, st.DurationMonths, 0),
		AuditFields:        domain.NewAuditFields(userID, now),
	}

	if err := s.subscriptionRepo.SaveSubscription(ctx, sub); err != nil {
		s.LogError(ctx, err, "Failed to save subscription",
			slog.String("user_id", userID),
			slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Subscription created successfully",
		slog.String("subscription_id", sub.SubscriptionID),
		slog.String("user_id", userID),
		slog.String("journal_id", journalID))
	return &sub, nil
}

// CanUserAccessIssue reports whether a user may read the content of an issue.
// Open journals and open issues are readable by everyone; subscription-gated
// content opens up once its open access date passes, and is otherwise
// reserved for active subscribers and the journal's own team.
func (s *subscriptionService) CanUserAccessIssue(ctx context.Context, userID string, journal *domain.Journal, issue *domain.Issue) (bool, error) {
	now := time.Now().UTC()

	switch journal.PublishingMode {
	case domain.PublishingModeOpen:
		return true, nil
	case domain.PublishingModeNone:
		// Content is not offered online; only the journal's team sees it.
		return s.isJournalStaff(ctx, userID, journal.JournalID), nil
	}

	if issue.IsOpenToReaders(now) {
		return true, nil
	}

	if userID == "" {
		return false, nil
	}

	if s.isJournalStaff(ctx, userID, journal.JournalID) {
		return true, nil
	}

	active, err := s.subscriptionRepo.HasActiveSubscription(ctx, userID, journal.JournalID, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to check subscription",
			slog.String("user_id", userID),
			slog.String("journal_id", journal.JournalID))
		return false, err
	}
	return active, nil
}

// isJournalStaff reports whether the user holds an editorial role in the
// journal. Authorization failures mean "not staff", never an error.
func (s *subscriptionService) isJournalStaff(ctx context.Context, userID, journalID string) bool {
	if userID == "" {
		return false
	}
	return s.AuthorizeUser(ctx, userID, journalID, domain.RoleAssistant) == nil
}
