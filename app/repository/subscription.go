package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
)

const subscriptionColumns = `
	id, account_id, plan_id, plan_name, status,
	starts_at, ends_at, renews_at, auto_renew, payment_method,
	last_transaction_id, created_at, updated_at
`

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts the account's subscription row. account_id carries a unique
// index, so a concurrent activation losing the insert race gets
// ErrSubscriptionAlreadyExists instead of a second row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			account_id, plan_id, plan_name, status,
			starts_at, ends_at, renews_at, auto_renew, payment_method,
			last_transaction_id, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.AccountID,
		sub.PlanID,
		sub.PlanName,
		sub.Status,
		sub.StartsAt,
		sub.EndsAt,
		sub.RenewsAt,
		sub.AutoRenew,
		sub.PaymentMethod,
		nullableUint64Value(sub.LastTransactionID),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrSubscriptionAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = uint64(id)
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, sub *entity.Subscription) error {
	query := `
		UPDATE subscriptions SET
			plan_id = ?,
			plan_name = ?,
			status = ?,
			starts_at = ?,
			ends_at = ?,
			renews_at = ?,
			auto_renew = ?,
			payment_method = ?,
			last_transaction_id = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.PlanID,
		sub.PlanName,
		sub.Status,
		sub.StartsAt,
		sub.EndsAt,
		sub.RenewsAt,
		sub.AutoRenew,
		sub.PaymentMethod,
		nullableUint64Value(sub.LastTransactionID),
		sub.UpdatedAt,
		sub.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`

	sub := &entity.Subscription{}
	if err := scanSubscription(r.db.QueryRowContext(ctx, query, id), sub); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return sub, nil
}

// FindByAccountID returns the account's most recently created subscription
// row; there is at most one authoritative row per account.
func (r *SubscriptionRepository) FindByAccountID(ctx context.Context, accountID uint64) (*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	sub := &entity.Subscription{}
	if err := scanSubscription(r.db.QueryRowContext(ctx, query, accountID), sub); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *SubscriptionRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int32) ([]*entity.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = ?
		  AND auto_renew = FALSE
		  AND ends_at <= ?
		ORDER BY ends_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.SubscriptionStatusActive, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Subscription, 0)
	for rows.Next() {
		item := &entity.Subscription{}
		if err := scanSubscription(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func scanSubscription(scan rowScanner, sub *entity.Subscription) error {
	var lastTransactionID sql.NullInt64

	err := scan.Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.PlanID,
		&sub.PlanName,
		&sub.Status,
		&sub.StartsAt,
		&sub.EndsAt,
		&sub.RenewsAt,
		&sub.AutoRenew,
		&sub.PaymentMethod,
		&lastTransactionID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return err
	}

	sub.LastTransactionID = uint64PtrFromNull(lastTransactionID)

	return nil
}
