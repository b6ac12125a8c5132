package entity

import "time"

// Account is read-only here; the accounts service owns the records. The
// payer identity fields are what the gateway requires on every checkout.
type Account struct {
	ID uint64

	Name     string
	Email    string
	Document string
	Phone    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
