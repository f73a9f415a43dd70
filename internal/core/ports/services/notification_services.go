package services

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	"github.com/openjms/journal_mgmt_app/internal/dto"
)

// NotificationSvcFacade defines notification creation and retrieval.
type NotificationSvcFacade interface {
	// NotifyIssuePublished fans out a PUBLISHED_ISSUE notification to every
	// enabled user of the journal. Failures for individual recipients are
	// logged and skipped; the first error is reported after the loop finishes.
	NotifyIssuePublished(ctx context.Context, journal *domain.Journal, issue *domain.Issue) error

	// CreateNotification persists a single notification for a user.
	CreateNotification(ctx context.Context, userID string, journalID string, nType domain.NotificationType, assocType domain.AssocType, assocID string) (*domain.Notification, error)

	// ListUserNotifications retrieves a page of the user's notifications.
	ListUserNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) (*dto.ListNotificationsResponse, error)

	// MarkNotificationRead stamps a notification as read by its owner.
	MarkNotificationRead(ctx context.Context, notificationID string, userID string) error

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, userID string) (int64, error)
}
