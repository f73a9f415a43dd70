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
)

// journalService implements the JournalSvcFacade interface. It owns the
// journal aggregate: settings, enablement and memberships, and it is the
// authorizer every other journal-scoped service delegates to.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewJournalService creates a new journal service with the provided dependencies
func NewJournalService(journalRepo portsrepo.JournalRepositoryFacade) portssvc.JournalSvcFacade {
	return &journalService{
		journalRepo: journalRepo,
	}
}

// Ensure journalService implements the JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// GetJournalByID retrieves a journal by its ID
func (s *journalService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by ID",
				slog.String("journal_id", journalID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Journal retrieved successfully",
		slog.String("journal_id", journal.JournalID))
	return journal, nil
}

// GetJournalByPath retrieves a journal by its URL path slug
func (s *journalService) GetJournalByPath(ctx context.Context, path string) (*domain.Journal, error) {
	journal, err := s.journalRepo.FindJournalByPath(ctx, path)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal by path",
				slog.String("path", path))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Journal retrieved successfully",
		slog.String("journal_id", journal.JournalID),
		slog.String("path", path))
	return journal, nil
}

// ListUserJournals retrieves all journals a user belongs to
func (s *journalService) ListUserJournals(ctx context.Context, userID string, includeDisabled bool) ([]domain.Journal, error) {
	journals, err := s.journalRepo.ListJournalsByUserID(ctx, userID, includeDisabled, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if journals == nil {
		return []domain.Journal{}, nil
	}

	s.LogDebug(ctx, "Journals listed successfully",
		slog.Int("count", len(journals)),
		slog.String("user_id", userID))
	return journals, nil
}

// ListJournalUsers retrieves all users and their roles for a specific journal
func (s *journalService) ListJournalUsers(ctx context.Context, journalID string, requestingUserID string) ([]domain.UserJournal, error) {
	// Any active member may see the journal's member list
	if err := s.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleReader); err != nil {
		return nil, err
	}

	members, err := s.journalRepo.ListUsersByJournalID(ctx, journalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users for journal",
			slog.String("journal_id", journalID))
		return nil, err
	}

	if members == nil {
		return []domain.UserJournal{}, nil
	}
	return members, nil
}

// CreateJournal creates a new journal and makes the creator its manager
func (s *journalService) CreateJournal(ctx context.Context, path, name, description string, creatorUserID string) (*domain.Journal, error) {
	now := time.Now()
	journalID := uuid.NewString()

	journal := domain.Journal{
		JournalID:      journalID,
		Path:           path,
		Name:           name,
		Description:    description,
		PublishingMode: domain.PublishingModeOpen,
		Enabled:        true,
		AuditFields:    domain.NewAuditFields(creatorUserID, now),
	}

	if err := s.journalRepo.SaveJournal(ctx, journal); err != nil {
		s.LogError(ctx, err, "Failed to save journal",
			slog.String("journal_id", journalID),
			slog.String("path", path))
		return nil, err
	}

	// Add the creator as the initial manager
	membership := domain.UserJournal{
		UserID:    creatorUserID,
		JournalID: journalID,
		Role:      domain.RoleManager,
		JoinedAt:  now,
	}
	if err := s.journalRepo.AddUserToJournal(ctx, membership); err != nil {
		// The journal itself was created; surface the membership failure in
		// the logs but keep the journal.
		s.LogError(ctx, err, "Failed to add creator as manager to new journal",
			slog.String("journal_id", journalID),
			slog.String("user_id", creatorUserID))
	}

	s.LogInfo(ctx, "Journal created successfully",
		slog.String("journal_id", journalID),
		slog.String("path", path),
		slog.String("creator_id", creatorUserID))
	return &journal, nil
}

// UpdateJournalSettings updates a journal's publishing configuration
func (s *journalService) UpdateJournalSettings(ctx context.Context, journalID string, settings domain.JournalSettingsUpdate, requestingUserID string) (*domain.Journal, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal for settings update",
				slog.String("journal_id", journalID))
		}
		return nil, err
	}

	updated := false
	if settings.Name.Set {
		journal.Name = settings.Name.Value
		updated = true
	}
	if settings.Description.Set {
		journal.Description = settings.Description.Value
		updated = true
	}
	if settings.PublishingMode.Set {
		switch settings.PublishingMode.Value {
		case domain.PublishingModeOpen, domain.PublishingModeSubscription, domain.PublishingModeNone:
		default:
			return nil, fmt.Errorf("%w: unknown publishing mode %q", apperrors.ErrValidation, settings.PublishingMode.Value)
		}
		journal.PublishingMode = settings.PublishingMode.Value
		updated = true
	}
	if settings.DelayedOpenAccessDuration.Set {
		if settings.DelayedOpenAccessDuration.Value < 0 {
			return nil, fmt.Errorf("%w: delayed open access duration must not be negative", apperrors.ErrValidation)
		}
		journal.DelayedOpenAccessDuration = settings.DelayedOpenAccessDuration.Value
		updated = true
	}
	if settings.DOIPrefix.Set {
		journal.DOIPrefix = settings.DOIPrefix.Value
		updated = true
	}

	if !updated {
		s.LogDebug(ctx, "No fields provided for journal settings update",
			slog.String("journal_id", journalID))
		return journal, nil
	}

	now := time.Now()
	journal.Touch(requestingUserID, now)

	if err := s.journalRepo.UpdateJournal(ctx, *journal); err != nil {
		s.LogError(ctx, err, "Failed to update journal settings",
			slog.String("journal_id", journalID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal settings updated successfully",
		slog.String("journal_id", journalID))
	return journal, nil
}

// DisableJournal marks a journal as disabled
func (s *journalService) DisableJournal(ctx context.Context, journalID string, requestingUserID string) error {
	return s.setJournalEnabled(ctx, journalID, false, requestingUserID)
}

// EnableJournal marks a journal as enabled
func (s *journalService) EnableJournal(ctx context.Context, journalID string, requestingUserID string) error {
	return s.setJournalEnabled(ctx, journalID, true, requestingUserID)
}

func (s *journalService) setJournalEnabled(ctx context.Context, journalID string, enabled bool, requestingUserID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		return err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal for status change",
				slog.String("journal_id", journalID))
		}
		return err
	}

	if journal.Enabled == enabled {
		return nil
	}

	if err := s.journalRepo.UpdateJournalStatus(ctx, journal, enabled, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to update journal status",
			slog.String("journal_id", journalID),
			slog.Bool("enabled", enabled))
		return err
	}

	s.LogInfo(ctx, "Journal status updated successfully",
		slog.String("journal_id", journalID),
		slog.Bool("enabled", enabled))
	return nil
}

// AddUserToJournal adds a user to a journal with a specific role
func (s *journalService) AddUserToJournal(ctx context.Context, addingUserID, targetUserID, journalID string, role domain.UserJournalRole) error {
	if role == domain.RoleRemoved {
		return fmt.Errorf("%w: cannot assign the removed role", apperrors.ErrValidation)
	}

	// Self-registration as a reader is permitted; granting any other role, or
	// enrolling someone else, requires a manager.
	if addingUserID != targetUserID || role != domain.RoleReader {
		if err := s.AuthorizeUserAction(ctx, addingUserID, journalID, domain.RoleManager); err != nil {
			s.LogError(ctx, err, "User not authorized to add members to journal",
				slog.String("adding_user_id", addingUserID),
				slog.String("journal_id", journalID))
			return err
		}
	}

	membership := domain.UserJournal{
		UserID:    targetUserID,
		JournalID: journalID,
		Role:      role,
		JoinedAt:  time.Now(),
	}

	if err := s.journalRepo.AddUserToJournal(ctx, membership); err != nil {
		s.LogError(ctx, err, "Failed to add user to journal",
			slog.String("target_user_id", targetUserID),
			slog.String("journal_id", journalID))
		return err
	}

	s.LogInfo(ctx, "User added to journal successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("journal_id", journalID),
		slog.String("role", string(role)))
	return nil
}

// RemoveUserFromJournal removes a user from a journal
func (s *journalService) RemoveUserFromJournal(ctx context.Context, requestingUserID, targetUserID, journalID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		return err
	}

	if err := s.journalRepo.RemoveUserFromJournal(ctx, targetUserID, journalID); err != nil {
		s.LogError(ctx, err, "Failed to remove user from journal",
			slog.String("target_user_id", targetUserID),
			slog.String("journal_id", journalID))
		return err
	}

	s.LogInfo(ctx, "User removed from journal successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("journal_id", journalID),
		slog.String("removed_by", requestingUserID))
	return nil
}

// UpdateUserJournalRole updates a user's role in a journal
func (s *journalService) UpdateUserJournalRole(ctx context.Context, requestingUserID, targetUserID, journalID string, newRole domain.UserJournalRole) error {
	if newRole == domain.RoleRemoved {
		return fmt.Errorf("%w: cannot assign the removed role", apperrors.ErrValidation)
	}

	if err := s.AuthorizeUserAction(ctx, requestingUserID, journalID, domain.RoleManager); err != nil {
		return err
	}

	if err := s.journalRepo.UpdateUserJournalRole(ctx, targetUserID, journalID, newRole); err != nil {
		s.LogError(ctx, err, "Failed to update user journal role",
			slog.String("target_user_id", targetUserID),
			slog.String("journal_id", journalID),
			slog.String("new_role", string(newRole)))
		return err
	}

	s.LogInfo(ctx, "User journal role updated successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("journal_id", journalID),
		slog.String("new_role", string(newRole)))
	return nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within
// a specific journal.
// Returns apperrors.ErrNotFound if the journal doesn't exist or the user is not
// a member, so non-members cannot probe for journal existence.
// Returns apperrors.ErrForbidden if the user is a member but lacks the role.
// Returns nil if authorized.
func (s *journalService) AuthorizeUserAction(ctx context.Context, userID, journalID string, requiredRole domain.UserJournalRole) error {
	membership, err := s.journalRepo.FindUserJournalRole(ctx, userID, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "Authorization failed: user not a member of journal",
				slog.String("user_id", userID),
				slog.String("journal_id", journalID))
			return apperrors.ErrNotFound
		}
		s.LogError(ctx, err, "Failed to check user journal role",
			slog.String("user_id", userID),
			slog.String("journal_id", journalID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "Authorization failed: user lacks required role",
			slog.String("user_id", userID),
			slog.String("journal_id", journalID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// roleRank orders journal roles for hierarchy checks. REMOVED is deliberately
// absent so removed members never authorize.
var roleRank = map[domain.UserJournalRole]int{
	domain.RoleReader:    1,
	domain.RoleAssistant: 2,
	domain.RoleEditor:    3,
	domain.RoleManager:   4,
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.UserJournalRole) bool {
	userRank, ok := roleRank[userRole]
	if !ok {
		return false
	}
	return userRank >= roleRank[requiredRole]
}
