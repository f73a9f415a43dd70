package repositories

import (
	"context"

	"github.com/openjms/journal_mgmt_app/internal/core/domain"
)

// NotificationReader defines read operations for notification data
type NotificationReader interface {
	// ListNotificationsByUserID retrieves a paginated list of a user's
	// notifications, newest first. It returns the notifications, a token for
	// the next page, and an error.
	ListNotificationsByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Notification, *string, error)

	// CountUnreadByUserID returns the number of unread notifications of a user.
	CountUnreadByUserID(ctx context.Context, userID string) (int64, error)
}

// NotificationWriter defines write operations for notification data
type NotificationWriter interface {
	// SaveNotification persists a single notification.
	SaveNotification(ctx context.Context, notification domain.Notification) error

	// SaveNotifications persists a batch of notifications in one round trip.
	SaveNotifications(ctx context.Context, notifications []domain.Notification) error

	// MarkNotificationRead stamps a notification's DateRead. It is a no-op if
	// already read.
	MarkNotificationRead(ctx context.Context, notificationID string, userID string) error
}

// NotificationRepositoryFacade combines all notification-related repository interfaces
type NotificationRepositoryFacade interface {
	NotificationReader
	NotificationWriter
}
