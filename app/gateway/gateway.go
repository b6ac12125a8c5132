package gateway

import "context"

// Gateway numeric status space. The table is fixed by the gateway contract
// and must match it exactly.
const (
	StatusPending    int32 = 1
	StatusInAnalysis int32 = 2
	StatusPaid       int32 = 3
	StatusAvailable  int32 = 4
	StatusInDispute  int32 = 5
	StatusRefunded   int32 = 6
	StatusCancelled  int32 = 7
)

func StatusText(code int32) string {
	switch code {
	case StatusPending:
		return "pending"
	case StatusInAnalysis:
		return "in_analysis"
	case StatusPaid:
		return "paid"
	case StatusAvailable:
		return "available"
	case StatusInDispute:
		return "in_dispute"
	case StatusRefunded:
		return "refunded"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type Payer struct {
	Name     string
	Email    string
	Document string
	Phone    string
}

type Item struct {
	ID          string
	Description string
	AmountCents int64
	Quantity    int32
}

type CardData struct {
	Token          string
	HolderName     string
	HolderDocument string
	Installments   int32
}

type CreateInput struct {
	Reference string
	Payer     Payer
	Items     []Item

	// Card is set only for card checkouts.
	Card *CardData
}

// BusinessError is a structured rejection from the gateway (declined card,
// invalid payer data). It is an expected outcome and travels as data.
type BusinessError struct {
	Code    string
	Message string
}

type CreateOutput struct {
	TransactionCode string
	Status          int32
	PaymentURL      string
	PixPayload      string

	Declined *BusinessError
}

// TransactionDetail is the ephemeral gateway-side view of a transaction,
// fetched at reconciliation time and projected into local fields; it is
// never persisted verbatim.
type TransactionDetail struct {
	Code          string
	Status        int32
	StatusText    string
	Reference     string
	PaymentMethod int32

	GrossAmountCents int64
	NetAmountCents   int64

	PixPayload *string
	VoucherURL *string
}

type Client interface {
	CreateInstantTransfer(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	CreateCard(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	CreateVoucher(ctx context.Context, input *CreateInput) (*CreateOutput, error)
	GetTransaction(ctx context.Context, code string) (*TransactionDetail, error)
	FetchNotification(ctx context.Context, notificationCode string) (*TransactionDetail, error)
	CancelTransaction(ctx context.Context, code string) error
}
