package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			account_id, type, message, transaction_id, subscription_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		notification.AccountID,
		notification.Type,
		notification.Message,
		nullableUint64Value(notification.TransactionID),
		nullableUint64Value(notification.SubscriptionID),
		notification.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	notification.ID = uint64(id)

	return nil
}
