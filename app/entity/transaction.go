package entity

import "time"

const (
	TransactionStatusPending   int32 = 1
	TransactionStatusPaid      int32 = 2
	TransactionStatusFailed    int32 = 3
	TransactionStatusCancelled int32 = 4
	TransactionStatusRefunded  int32 = 5
)

const (
	PaymentMethodInstantTransfer int32 = 1
	PaymentMethodCard            int32 = 2
	PaymentMethodVoucher         int32 = 3
)

// PaymentTransaction is one checkout attempt against the gateway. The row is
// created exactly once, in pending, and only the reconciliation paths mutate
// it afterwards. GatewayCode is unique and never changes once assigned.
type PaymentTransaction struct {
	ID uint64

	AccountID uint64
	PlanID    uint64
	PlanName  string

	AmountCents   int64
	PaymentMethod int32
	Status        int32

	GatewayCode   string
	GatewayStatus int32

	Reference string

	PixPayload     *string
	VoucherURL     *string
	CardBrand      *string
	CardLastDigits *string
	Installments   *int32

	PaidAt    *time.Time
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionStatusTerminal reports whether no further transition except
// paid->refunded is possible.
func TransactionStatusTerminal(status int32) bool {
	switch status {
	case TransactionStatusPaid,
		TransactionStatusFailed,
		TransactionStatusCancelled,
		TransactionStatusRefunded:
		return true
	default:
		return false
	}
}

// TransactionStatusCanTransition enforces the monotonic lifecycle:
// pending moves to exactly one of paid/failed/cancelled/refunded, and paid
// may only move to refunded.
func TransactionStatusCanTransition(from, to int32) bool {
	if from == to {
		return false
	}
	switch from {
	case TransactionStatusPending:
		return to == TransactionStatusPaid ||
			to == TransactionStatusFailed ||
			to == TransactionStatusCancelled ||
			to == TransactionStatusRefunded
	case TransactionStatusPaid:
		return to == TransactionStatusRefunded
	default:
		return false
	}
}
