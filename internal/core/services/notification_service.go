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

// notificationService implements the NotificationSvcFacade interface
type notificationService struct {
	BaseService
	notificationRepo portsrepo.NotificationRepositoryFacade
	journalRepo      portsrepo.JournalRepositoryFacade
	userRepo         portsrepo.UserRepositoryFacade
}

// NewNotificationService creates a new notification service with the provided dependencies
func NewNotificationService(
	notificationRepo portsrepo.NotificationRepositoryFacade,
	journalRepo portsrepo.JournalRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
) portssvc.NotificationSvcFacade {
	return &notificationService{
		notificationRepo: notificationRepo,
		journalRepo:      journalRepo,
		userRepo:         userRepo,
	}
}

// Ensure notificationService implements the NotificationSvcFacade interface
var _ portssvc.NotificationSvcFacade = (*notificationService)(nil)

// NotifyIssuePublished fans one PUBLISHED_ISSUE notification out to every
// enabled user of the journal. A failed recipient is logged and skipped so the
// remaining recipients still get theirs; the first failure is reported once
// the loop is done.
func (s *notificationService) NotifyIssuePublished(ctx context.Context, journal *domain.Journal, issue *domain.Issue) error {
	members, err := s.journalRepo.ListUsersByJournalID(ctx, journal.JournalID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal members for issue notification",
			slog.String("journal_id", journal.JournalID),
			slog.String("issue_id", issue.IssueID))
		return fmt.Errorf("failed to list notification recipients: %w", err)
	}

	var firstErr error
	notified := 0
	for _, member := range members {
		user, err := s.userRepo.FindUserByID(ctx, member.UserID)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				s.LogError(ctx, err, "Failed to load notification recipient",
					slog.String("user_id", member.UserID))
				if firstErr == nil {
					firstErr = err
				}
			}
			continue
		}
		if user.IsDisabled || user.DeletedAt != nil {
			continue
		}

		if _, err := s.CreateNotification(ctx, user.UserID, journal.JournalID, domain.NotificationTypePublishedIssue, domain.AssocTypeIssue, issue.IssueID); err != nil {
			s.LogError(ctx, err, "Failed to notify user of published issue",
				slog.String("user_id", user.UserID),
				slog.String("issue_id", issue.IssueID))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		notified++
	}

	s.LogInfo(ctx, "Issue publication notifications sent",
		slog.String("issue_id", issue.IssueID),
		slog.String("journal_id", journal.JournalID),
		slog.Int("recipients", notified))
	return firstErr
}

// CreateNotification persists a single notification for a user
func (s *notificationService) CreateNotification(ctx context.Context, userID string, journalID string, nType domain.NotificationType, assocType domain.AssocType, assocID string) (*domain.Notification, error) {
	notification := domain.Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		JournalID:      journalID,
		Type:           nType,
		Level:          domain.NotificationLevelNormal,
		AssocType:      assocType,
		AssocID:        assocID,
		DateCreated:    time.Now().UTC(),
	}

	if err := s.notificationRepo.SaveNotification(ctx, notification); err != nil {
		return nil, err
	}

	return &notification, nil
}

// ListUserNotifications retrieves a page of the user's notifications
func (s *notificationService) ListUserNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) (*dto.ListNotificationsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	notifications, nextToken, err := s.notificationRepo.ListNotificationsByUserID(ctx, userID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list notifications",
			slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to retrieve notifications: %w", err)
	}

	resp := dto.ToListNotificationsResponse(notifications, nextToken)
	return &resp, nil
}

// MarkNotificationRead stamps a notification as read by its owner
func (s *notificationService) MarkNotificationRead(ctx context.Context, notificationID string, userID string) error {
	if err := s.notificationRepo.MarkNotificationRead(ctx, notificationID, userID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to mark notification read",
				slog.String("notification_id", notificationID),
				slog.String("user_id", userID))
		}
		return err
	}
	return nil
}

// CountUnread returns the user's unread notification count
func (s *notificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnreadByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count unread notifications",
			slog.String("user_id", userID))
		return 0, err
	}
	return count, nil
}
