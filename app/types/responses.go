package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Transaction struct {
	ID             uint64 `json:"id"`
	AccountID      uint64 `json:"account_id"`
	PlanID         uint64 `json:"plan_id"`
	PlanName       string `json:"plan_name"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"payment_method"`
	Status         string `json:"status"`
	GatewayCode    string `json:"gateway_code"`
	GatewayStatus  int32  `json:"gateway_status"`
	Reference      string `json:"reference"`
	PixPayload     string `json:"pix_payload,omitempty"`
	VoucherURL     string `json:"voucher_url,omitempty"`
	CardBrand      string `json:"card_brand,omitempty"`
	CardLastDigits string `json:"card_last_digits,omitempty"`
	Installments   int32  `json:"installments,omitempty"`
	PaidAt         string `json:"paid_at,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type TransactionEnvelopeResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type CheckoutError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckoutResponse is the uniform creation result: business rejections from
// the gateway come back as data here, never as an HTTP 5xx.
type CheckoutResponse struct {
	Success     bool           `json:"success"`
	Transaction *Transaction   `json:"transaction,omitempty"`
	PaymentURL  string         `json:"payment_url,omitempty"`
	Error       *CheckoutError `json:"error,omitempty"`
}

type Subscription struct {
	ID                uint64 `json:"id"`
	AccountID         uint64 `json:"account_id"`
	PlanID            uint64 `json:"plan_id"`
	PlanName          string `json:"plan_name"`
	Status            string `json:"status"`
	StartsAt          string `json:"starts_at"`
	EndsAt            string `json:"ends_at"`
	RenewsAt          string `json:"renews_at"`
	AutoRenew         bool   `json:"auto_renew"`
	PaymentMethod     string `json:"payment_method,omitempty"`
	LastTransactionID uint64 `json:"last_transaction_id,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type SubscriptionEnvelopeResponse struct {
	Subscription *Subscription `json:"subscription"`
}
