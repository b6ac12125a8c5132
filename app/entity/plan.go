package entity

import "time"

// Plan is read-only from this service's perspective; rows are managed by the
// catalog tooling. Card checkouts may carry a different price than instant
// transfer and voucher checkouts.
type Plan struct {
	ID uint64

	Name         string
	DurationDays int32

	TransferPriceCents int64
	CardPriceCents     int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceCentsFor returns the plan price charged for the given payment method.
func (p *Plan) PriceCentsFor(paymentMethod int32) int64 {
	if paymentMethod == PaymentMethodCard {
		return p.CardPriceCents
	}
	return p.TransferPriceCents
}
