package entity

import "time"

const (
	SubscriptionStatusPending   int32 = 1
	SubscriptionStatusActive    int32 = 2
	SubscriptionStatusCancelled int32 = 3
	SubscriptionStatusExpired   int32 = 4
	SubscriptionStatusSuspended int32 = 5
)

// Subscription is the single authoritative subscription row per account.
// Activation after a confirmed payment updates the existing row in place;
// the row is never deleted.
type Subscription struct {
	ID uint64

	AccountID uint64
	PlanID    uint64
	PlanName  string

	Status int32

	StartsAt time.Time
	EndsAt   time.Time
	RenewsAt time.Time

	AutoRenew     bool
	PaymentMethod int32

	LastTransactionID *uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}
