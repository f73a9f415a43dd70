package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/openjms/journal_mgmt_app/internal/apperrors"
	"github.com/openjms/journal_mgmt_app/internal/core/domain"
	portsrepo "github.com/openjms/journal_mgmt_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSubscriptionRepository struct {
	BaseRepository
}

// newPgxSubscriptionRepository creates a new repository for subscription data.
func newPgxSubscriptionRepository(pool *pgxpool.Pool) portsrepo.SubscriptionRepositoryFacade {
	return &PgxSubscriptionRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxSubscriptionRepository implements portsrepo.SubscriptionRepositoryFacade
var _ portsrepo.SubscriptionRepositoryFacade = (*PgxSubscriptionRepository)(nil)

var FULL_SUBSCRIPTION_TYPE_SELECT_QUERY = `
SELECT
	st.subscription_type_id, st.journal_id, st.name, st.description, st.cost,
	st.currency_code, st.duration_months, st.institutional,
	st.created_at, st.created_by, st.last_updated_at, st.last_updated_by
FROM subscription_types st
`

func (r *PgxSubscriptionRepository) getSubscriptionTypes(ctx context.Context, filterQuery string, args ...any) ([]domain.SubscriptionType, error) {
	query := FULL_SUBSCRIPTION_TYPE_SELECT_QUERY + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query subscription types", err)
	}
	defer rows.Close()
	types, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.SubscriptionType])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.SubscriptionType{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect subscription type rows", err)
	}
	return types, nil
}

func (r *PgxSubscriptionRepository) FindSubscriptionTypeByID(ctx context.Context, subscriptionTypeID string) (*domain.SubscriptionType, error) {
	query := `WHERE st.subscription_type_id = $1`
	types, err := r.getSubscriptionTypes(ctx, query, subscriptionTypeID)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &types[0], nil
}

func (r *PgxSubscriptionRepository) ListSubscriptionTypesByJournalID(ctx context.Context, journalID string) ([]domain.SubscriptionType, error) {
	query := `WHERE st.journal_id = $1 ORDER BY st.cost, st.name;`
	return r.getSubscriptionTypes(ctx, query, journalID)
}

func (r *PgxSubscriptionRepository) SaveSubscriptionType(ctx context.Context, st domain.SubscriptionType) error {
	query := `
		INSERT INTO subscription_types (
			subscription_type_id, journal_id, name, description, cost,
			currency_code, duration_months, institutional,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		st.SubscriptionTypeID,
		st.JournalID,
		st.Name,
		st.Description,
		st.Cost,
		st.CurrencyCode,
		st.DurationMonths,
		st.Institutional,
		st.CreatedAt,
		st.CreatedBy,
		st.LastUpdatedAt,
		st.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("subscription type ID " + st.SubscriptionTypeID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("journal does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save subscription type "+st.SubscriptionTypeID, err)
	}
	return nil
}

func (r *PgxSubscriptionRepository) DeleteSubscriptionType(ctx context.Context, subscriptionTypeID string) error {
	query := `DELETE FROM subscription_types WHERE subscription_type_id = $1;`
	result, err := r.Pool.Exec(ctx, query, subscriptionTypeID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return apperrors.NewConflictError("subscription type " + subscriptionTypeID + " has active subscriptions")
		}
		return apperrors.NewAppError(500, "failed to delete subscription type "+subscriptionTypeID, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("subscription type " + subscriptionTypeID + " not found")
	}
	return nil
}

// HasActiveSubscription reports whether the user holds a subscription to the
// journal whose term covers the given time.
func (r *PgxSubscriptionRepository) HasActiveSubscription(ctx context.Context, userID, journalID string, at time.Time) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND journal_id = $2 AND date_start <= $3 AND date_end > $3
		);
	`, userID, journalID, at).Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check subscription for user "+userID, err)
	}
	return exists, nil
}

func (r *PgxSubscriptionRepository) ListSubscriptionsByUserID(ctx context.Context, userID string) ([]domain.Subscription, error) {
	query := `
		SELECT
			s.subscription_id, s.subscription_type_id, s.journal_id, s.user_id,
			s.date_start, s.date_end,
			s.created_at, s.created_by, s.last_updated_at, s.last_updated_by
		FROM subscriptions s
		WHERE s.user_id = $1
		ORDER BY s.date_end DESC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query subscriptions for user "+userID, err)
	}
	defer rows.Close()
	subs, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Subscription])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.Subscription{}, nil
		}
		return nil, apperrors.NewAppError(500, "failed to collect subscription rows", err)
	}
	return subs, nil
}

func (r *PgxSubscriptionRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			subscription_id, subscription_type_id, journal_id, user_id,
			date_start, date_end,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.Pool.Exec(ctx, query,
		sub.SubscriptionID,
		sub.SubscriptionTypeID,
		sub.JournalID,
		sub.UserID,
		sub.DateStart,
		sub.DateEnd,
		sub.CreatedAt,
		sub.CreatedBy,
		sub.LastUpdatedAt,
		sub.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return apperrors.NewConflictError("subscription ID " + sub.SubscriptionID + " already exists")
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				return apperrors.NewValidationFailedError("subscription type, journal or user does not exist", err)
			}
		}
		return apperrors.NewAppError(500, "failed to save subscription "+sub.SubscriptionID, err)
	}
	return nil
}
