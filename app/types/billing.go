package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
}

// CardInstrument carries the gateway token plus the display attributes the
// tokenizing caller already knows; the raw card number never reaches this
// service.
type CardInstrument struct {
	Token          string `json:"token"`
	HolderName     string `json:"holder_name"`
	HolderDocument string `json:"holder_document"`
	Brand          string `json:"brand"`
	LastDigits     string `json:"last_digits"`
	Installments   int32  `json:"installments"`
}

type CreatePaymentRequest struct {
	AccountID     uint64          `json:"account_id"`
	PlanID        uint64          `json:"plan_id"`
	PaymentMethod string          `json:"payment_method"`
	Customer      *Customer       `json:"customer"`
	Card          *CardInstrument `json:"card"`
}

func NewCreatePaymentRequestFromContext(ctx echo.Context) (*CreatePaymentRequest, error) {
	var body CreatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.PaymentMethod = strings.ToLower(strings.TrimSpace(body.PaymentMethod))
	if body.Customer != nil {
		body.Customer.Name = strings.TrimSpace(body.Customer.Name)
		body.Customer.Email = strings.TrimSpace(body.Customer.Email)
		body.Customer.Document = strings.TrimSpace(body.Customer.Document)
		body.Customer.Phone = strings.TrimSpace(body.Customer.Phone)
	}
	if body.Card != nil {
		body.Card.Token = strings.TrimSpace(body.Card.Token)
		body.Card.HolderName = strings.TrimSpace(body.Card.HolderName)
		body.Card.HolderDocument = strings.TrimSpace(body.Card.HolderDocument)
		body.Card.Brand = strings.ToLower(strings.TrimSpace(body.Card.Brand))
		body.Card.LastDigits = strings.TrimSpace(body.Card.LastDigits)
	}

	return &body, nil
}

func (r *CreatePaymentRequest) Validate() error {
	if r.AccountID == 0 {
		return errors.New("account_id is required")
	}
	if r.PlanID == 0 {
		return errors.New("plan_id is required")
	}
	if _, err := ParsePaymentMethod(r.PaymentMethod); err != nil {
		return errors.New("payment_method must be pix, card, or boleto")
	}
	if r.PaymentMethod == PaymentMethodCardName {
		if r.Card == nil {
			return errors.New("card is required for card payments")
		}
		if r.Card.Token == "" {
			return errors.New("card.token is required")
		}
		if r.Card.HolderName == "" {
			return errors.New("card.holder_name is required")
		}
		if r.Card.HolderDocument == "" {
			return errors.New("card.holder_document is required")
		}
		if r.Card.LastDigits != "" && len(r.Card.LastDigits) != 4 {
			return errors.New("card.last_digits must be exactly four digits")
		}
		// 0 means unset and is charged as a single installment.
		if r.Card.Installments < 0 || r.Card.Installments > 12 {
			return errors.New("card.installments must be between 0 and 12")
		}
	}
	return nil
}

type GetTransactionRequest struct {
	ID uint64
}

func NewGetTransactionRequestFromContext(ctx echo.Context) (*GetTransactionRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetTransactionRequest{ID: id}, nil
}

func (r *GetTransactionRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid transaction id")
	}
	return nil
}

type ListTransactionsRequest struct {
	AccountID uint64
	Limit     int32
	Offset    int32
}

func NewListTransactionsRequestFromContext(ctx echo.Context) (*ListTransactionsRequest, error) {
	req := &ListTransactionsRequest{Limit: 100}

	if raw := strings.TrimSpace(ctx.QueryParam("account_id")); raw != "" {
		accountID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.AccountID = accountID
	}
	if raw := strings.TrimSpace(ctx.QueryParam("limit")); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}
	if raw := strings.TrimSpace(ctx.QueryParam("offset")); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListTransactionsRequest) Validate() error {
	if r.AccountID == 0 {
		return errors.New("account_id is required")
	}
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	return nil
}

type CancelTransactionRequest struct {
	ID     uint64 `json:"-"`
	Reason string `json:"reason"`
}

func NewCancelTransactionRequestFromContext(ctx echo.Context) (*CancelTransactionRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body CancelTransactionRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *CancelTransactionRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid transaction id")
	}
	return nil
}

// GatewayNotificationRequest carries only the opaque pointer the gateway
// posts; the authoritative transaction state is always re-fetched.
type GatewayNotificationRequest struct {
	NotificationCode string
	NotificationType string
}

func NewGatewayNotificationRequestFromContext(ctx echo.Context) (*GatewayNotificationRequest, error) {
	code := strings.TrimSpace(ctx.FormValue("notificationCode"))
	notificationType := strings.TrimSpace(ctx.FormValue("notificationType"))
	if code == "" {
		code = strings.TrimSpace(ctx.QueryParam("notificationCode"))
	}
	if notificationType == "" {
		notificationType = strings.TrimSpace(ctx.QueryParam("notificationType"))
	}

	return &GatewayNotificationRequest{
		NotificationCode: code,
		NotificationType: notificationType,
	}, nil
}

func (r *GatewayNotificationRequest) Validate() error {
	if r.NotificationCode == "" {
		return errors.New("notificationCode is required")
	}
	return nil
}

type GetSubscriptionRequest struct {
	AccountID uint64
}

func NewGetSubscriptionRequestFromContext(ctx echo.Context) (*GetSubscriptionRequest, error) {
	accountID, err := strconv.ParseUint(ctx.Param("accountId"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetSubscriptionRequest{AccountID: accountID}, nil
}

func (r *GetSubscriptionRequest) Validate() error {
	if r.AccountID == 0 {
		return errors.New("invalid account id")
	}
	return nil
}

type CancelSubscriptionRequest struct {
	ID        uint64 `json:"-"`
	AccountID uint64 `json:"account_id"`
}

func NewCancelSubscriptionRequestFromContext(ctx echo.Context) (*CancelSubscriptionRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body CancelSubscriptionRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id

	return &body, nil
}

func (r *CancelSubscriptionRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid subscription id")
	}
	if r.AccountID == 0 {
		return errors.New("account_id is required")
	}
	return nil
}

const (
	PaymentMethodPixName    = "pix"
	PaymentMethodCardName   = "card"
	PaymentMethodBoletoName = "boleto"
)

func ParsePaymentMethod(name string) (int32, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PaymentMethodPixName:
		return entity.PaymentMethodInstantTransfer, nil
	case PaymentMethodCardName:
		return entity.PaymentMethodCard, nil
	case PaymentMethodBoletoName:
		return entity.PaymentMethodVoucher, nil
	default:
		return 0, errors.New("unknown payment method")
	}
}

func PaymentMethodName(method int32) string {
	switch method {
	case entity.PaymentMethodInstantTransfer:
		return PaymentMethodPixName
	case entity.PaymentMethodCard:
		return PaymentMethodCardName
	case entity.PaymentMethodVoucher:
		return PaymentMethodBoletoName
	default:
		return ""
	}
}

func TransactionStatusName(status int32) string {
	switch status {
	case entity.TransactionStatusPending:
		return "pending"
	case entity.TransactionStatusPaid:
		return "paid"
	case entity.TransactionStatusFailed:
		return "failed"
	case entity.TransactionStatusCancelled:
		return "cancelled"
	case entity.TransactionStatusRefunded:
		return "refunded"
	default:
		return ""
	}
}

func SubscriptionStatusName(status int32) string {
	switch status {
	case entity.SubscriptionStatusPending:
		return "pending"
	case entity.SubscriptionStatusActive:
		return "active"
	case entity.SubscriptionStatusCancelled:
		return "cancelled"
	case entity.SubscriptionStatusExpired:
		return "expired"
	case entity.SubscriptionStatusSuspended:
		return "suspended"
	default:
		return ""
	}
}
