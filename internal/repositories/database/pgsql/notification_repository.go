package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/openjms/journal_mgmt_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxNotificationRepository struct {
	BaseRepository
}

// newPgxNotificationRepository creates a new repository for notification data.
func newPgxNotificationRepository(pool *pgxpool.Pool) portsrepo.NotificationRepositoryFacade {
	return &PgxNotificationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxNotificationRepository implements portsrepo.NotificationRepositoryFacade
var _ portsrepo.NotificationRepositoryFacade = (*PgxNotificationRepository)(nil)

var FULL_NOTIFICATION_SELECT_QUERY = `
SELECT
	n.notification_id, n.user_id, n.journal_id, n.type, n.level,
	n.assoc_type, n.assoc_id, n.date_created, n.date_read
FROM notifications n
`

var insertNotificationQuery = `
	INSERT INTO notifications (
		notification_id, user_id, journal_id, type, level,
		assoc_type, assoc_id, date_created, date_read
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func (r *PgxNotificationRepository) SaveNotification(ctx context.Context, notification domain.Notification) error {
	_, err := r.Pool.Exec(ctx, insertNotificationQuery,
		notification.NotificationID,
		notification.UserID,
		notification.JournalID,
		notification.Type,
		notification.Level,
		notification.AssocType,
		notification.AssocID,
		notification.DateCreated,
		notification.DateRead,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("notification ID " + notification.NotificationID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("notification user or journal does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save notification "+notification.NotificationID, err)
	}
	return nil
}

// SaveNotifications persists a batch of notifications in a single round trip.
// The batch is transactional: either every notification lands or none do.
func (r *PgxNotificationRepository) SaveNotifications(ctx context.Context, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	for _, n := range notifications {
		batch.Queue(insertNotificationQuery,
			n.NotificationID,
			n.UserID,
			n.JournalID,
			n.Type,
			n.Level,
			n.AssocType,
			n.AssocID,
			n.DateCreated,
			n.DateRead,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil { // Close surfaces the first failed command
		return apperrors.NewAppError(500, "failed to execute notification batch", err)
	}

	return r.Commit(ctx, tx)
}

// ListNotificationsByUserID retrieves a user's notifications newest first,
// using token-based pagination over the creation date.
func (r *PgxNotificationRepository) ListNotificationsByUserID(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Notification, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	filter := `WHERE n.user_id = $1`
	args := []any{userID}

	if nextToken != nil && *nextToken != "" {
		lastCreated, decodeErr := pagination.DecodeTimeCursor(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreated)
		filter += ` AND n.date_created < $` + strconv.Itoa(len(args))
	}

	filter += ` ORDER BY n.date_created DESC`
	args = append(args, fetchLimit)
	filter += ` LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, FULL_NOTIFICATION_SELECT_QUERY+filter, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query notifications for user "+userID, err)
	}
	defer rows.Close()
	notifications, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Notification])
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to collect notification rows", err)
	}

	var nextTokenVal *string
	if len(notifications) > limit {
		last := notifications[limit-1]
		token := pagination.EncodeTimeCursor(last.DateCreated)
		nextTokenVal = &token
		notifications = notifications[:limit]
	}

	return notifications, nextTokenVal, nil
}

func (r *PgxNotificationRepository) CountUnreadByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND date_read IS NULL;
	`, userID).Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count unread notifications for user "+userID, err)
	}
	return count, nil
}

// MarkNotificationRead stamps the notification's read time. Reading an already
// read notification is a no-op, not an error.
func (r *PgxNotificationRepository) MarkNotificationRead(ctx context.Context, notificationID string, userID string) error {
	query := `
		UPDATE notifications
		SET date_read = NOW()
		WHERE notification_id = $1 AND user_id = $2 AND date_read IS NULL;
	`
	result, err := r.Pool.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark notification "+notificationID+" read", err)
	}
	if result.RowsAffected() == 0 {
		// Distinguish an unknown notification from one already read.
		var exists bool
		err := r.Pool.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM notifications WHERE notification_id = $1 AND user_id = $2);
		`, notificationID, userID).Scan(&exists)
		if err != nil {
			return apperrors.NewAppError(500, "failed to check notification "+notificationID, err)
		}
		if !exists {
			return apperrors.NewNotFoundError("notification " + notificationID + " not found")
		}
	}
	return nil
}
