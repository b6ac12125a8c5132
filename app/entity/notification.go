package entity

import "time"

const (
	NotificationPaymentCreated        = "payment_created"
	NotificationPaymentStatusUpdated  = "payment_status_updated"
	NotificationSubscriptionCancelled = "subscription_cancelled"
)

type Notification struct {
	ID uint64

	AccountID uint64

	Type    string
	Message string

	TransactionID  *uint64
	SubscriptionID *uint64

	CreatedAt time.Time
}
