package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/gateway"
	"github.com/vibast-solutions/ms-go-billing/app/types"
	"github.com/vibast-solutions/ms-go-billing/config"
)

const defaultBatchSize = int32(100)

type transactionRepository interface {
	Create(ctx context.Context, tx *entity.PaymentTransaction) error
	Update(ctx context.Context, tx *entity.PaymentTransaction) error
	UpdateStatusFrom(ctx context.Context, tx *entity.PaymentTransaction, expectedStatus int32) (bool, error)
	FindByID(ctx context.Context, id uint64) (*entity.PaymentTransaction, error)
	FindByGatewayCode(ctx context.Context, gatewayCode string) (*entity.PaymentTransaction, error)
	ListByAccount(ctx context.Context, accountID uint64, limit, offset int32) ([]*entity.PaymentTransaction, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int32) ([]*entity.PaymentTransaction, error)
	ListForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.PaymentTransaction, error)
}

type planRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Plan, error)
}

type accountRepository interface {
	FindByID(ctx context.Context, id uint64) (*entity.Account, error)
}

type transactionEventRepository interface {
	Create(ctx context.Context, event *entity.TransactionEvent) error
}

type notificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
}

type subscriptionActivator interface {
	Activate(ctx context.Context, accountID, planID, transactionID uint64, paymentMethod int32) (*entity.Subscription, error)
}

// CheckoutResult is the uniform creation outcome. Declined carries gateway
// business rejections; transport faults never reach this struct.
type CheckoutResult struct {
	Transaction *entity.PaymentTransaction
	PaymentURL  string
	Declined    *gateway.BusinessError
}

type PaymentService struct {
	txRepo           transactionRepository
	planRepo         planRepository
	accountRepo      accountRepository
	eventRepo        transactionEventRepository
	notificationRepo notificationRepository
	subscriptions    subscriptionActivator
	gateway          gateway.Client
	billingCfg       config.BillingConfig
	logger           logrus.FieldLogger
}

func NewPaymentService(
	txRepo transactionRepository,
	planRepo planRepository,
	accountRepo accountRepository,
	eventRepo transactionEventRepository,
	notificationRepo notificationRepository,
	subscriptions subscriptionActivator,
	gatewayClient gateway.Client,
	billingCfg config.BillingConfig,
) *PaymentService {
	return &PaymentService{
		txRepo:           txRepo,
		planRepo:         planRepo,
		accountRepo:      accountRepo,
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		subscriptions:    subscriptions,
		gateway:          gatewayClient,
		billingCfg:       billingCfg,
		logger:           factory.NewModuleLogger("payment-service"),
	}
}

func (s *PaymentService) CreateInstantTransferPayment(ctx context.Context, req *types.CreatePaymentRequest) (*CheckoutResult, error) {
	return s.createPayment(ctx, entity.PaymentMethodInstantTransfer, req)
}

func (s *PaymentService) CreateCardPayment(ctx context.Context, req *types.CreatePaymentRequest) (*CheckoutResult, error) {
	return s.createPayment(ctx, entity.PaymentMethodCard, req)
}

func (s *PaymentService) CreateVoucherPayment(ctx context.Context, req *types.CreatePaymentRequest) (*CheckoutResult, error) {
	return s.createPayment(ctx, entity.PaymentMethodVoucher, req)
}

func (s *PaymentService) createPayment(ctx context.Context, paymentMethod int32, req *types.CreatePaymentRequest) (*CheckoutResult, error) {
	if req == nil || req.AccountID == 0 || req.PlanID == 0 {
		return nil, ErrInvalidRequest
	}
	if paymentMethod == entity.PaymentMethodCard && req.Card == nil {
		return nil, ErrInvalidRequest
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("load plan %d: %w", req.PlanID, err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	account, err := s.accountRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", req.AccountID, err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	amountCents := plan.PriceCentsFor(paymentMethod)
	reference := fmt.Sprintf("plan%d-acc%d-%d", plan.ID, account.ID, time.Now().UnixNano())

	input := &gateway.CreateInput{
		Reference: reference,
		Payer:     buildPayer(account, req.Customer),
		Items: []gateway.Item{{
			ID:          strconv.FormatUint(plan.ID, 10),
			Description: "subscription " + plan.Name,
			AmountCents: amountCents,
			Quantity:    1,
		}},
	}

	var output *gateway.CreateOutput
	switch paymentMethod {
	case entity.PaymentMethodInstantTransfer:
		output, err = s.gateway.CreateInstantTransfer(ctx, input)
	case entity.PaymentMethodCard:
		installments := req.Card.Installments
		if installments <= 0 {
			installments = 1
		}
		input.Card = &gateway.CardData{
			Token:          req.Card.Token,
			HolderName:     req.Card.HolderName,
			HolderDocument: req.Card.HolderDocument,
			Installments:   installments,
		}
		output, err = s.gateway.CreateCard(ctx, input)
	case entity.PaymentMethodVoucher:
		output, err = s.gateway.CreateVoucher(ctx, input)
	default:
		return nil, ErrInvalidRequest
	}
	if err != nil {
		return nil, fmt.Errorf("gateway create payment: %w", err)
	}
	if output.Declined != nil {
		// Business rejection: nothing is persisted, there must be no local
		// row referencing a code the gateway never issued.
		return &CheckoutResult{Declined: output.Declined}, nil
	}

	// Persistence happens strictly after the gateway acknowledged the
	// transaction and assigned its code.
	now := time.Now().UTC()
	tx := &entity.PaymentTransaction{
		AccountID:     account.ID,
		PlanID:        plan.ID,
		PlanName:      plan.Name,
		AmountCents:   amountCents,
		PaymentMethod: paymentMethod,
		Status:        entity.TransactionStatusPending,
		GatewayCode:   output.TransactionCode,
		GatewayStatus: output.Status,
		Reference:     reference,
		ExpiresAt:     s.pendingExpiry(paymentMethod, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if output.PixPayload != "" {
		pix := output.PixPayload
		tx.PixPayload = &pix
	}
	if paymentMethod == entity.PaymentMethodVoucher && output.PaymentURL != "" {
		voucherURL := output.PaymentURL
		tx.VoucherURL = &voucherURL
	}
	if paymentMethod == entity.PaymentMethodCard {
		installments := input.Card.Installments
		tx.Installments = &installments
		if req.Card.Brand != "" {
			brand := req.Card.Brand
			tx.CardBrand = &brand
		}
		if req.Card.LastDigits != "" {
			lastDigits := req.Card.LastDigits
			tx.CardLastDigits = &lastDigits
		}
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist transaction %s: %w", tx.GatewayCode, err)
	}

	_ = s.eventRepo.Create(ctx, &entity.TransactionEvent{
		TransactionID: tx.ID,
		EventType:     "payment_created",
		NewStatus:     tx.Status,
		GatewayStatus: &tx.GatewayStatus,
		CreatedAt:     now,
	})
	s.notify(ctx, &entity.Notification{
		AccountID:     account.ID,
		Type:          entity.NotificationPaymentCreated,
		Message:       fmt.Sprintf("Payment for plan %s created, awaiting confirmation", plan.Name),
		TransactionID: &tx.ID,
		CreatedAt:     now,
	})

	return &CheckoutResult{Transaction: tx, PaymentURL: output.PaymentURL}, nil
}

func (s *PaymentService) GetTransaction(ctx context.Context, id uint64) (*entity.PaymentTransaction, error) {
	tx, err := s.txRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", id, err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *PaymentService) ListTransactions(ctx context.Context, req *types.ListTransactionsRequest) ([]*entity.PaymentTransaction, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	return s.txRepo.ListByAccount(ctx, req.AccountID, limit, req.Offset)
}

func (s *PaymentService) CancelTransaction(ctx context.Context, req *types.CancelTransactionRequest) (*entity.PaymentTransaction, error) {
	tx, err := s.txRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", req.ID, err)
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	if tx.Status != entity.TransactionStatusPending {
		return nil, fmt.Errorf("%w: only pending transactions can be cancelled", ErrInvalidStatus)
	}

	if err := s.gateway.CancelTransaction(ctx, tx.GatewayCode); err != nil {
		return nil, fmt.Errorf("gateway cancel %s: %w", tx.GatewayCode, err)
	}

	now := time.Now().UTC()
	oldStatus := tx.Status
	tx.Status = entity.TransactionStatusCancelled
	tx.UpdatedAt = now

	applied, err := s.txRepo.UpdateStatusFrom(ctx, tx, oldStatus)
	if err != nil {
		return nil, fmt.Errorf("persist cancellation %s: %w", tx.GatewayCode, err)
	}
	if applied {
		_ = s.eventRepo.Create(ctx, &entity.TransactionEvent{
			TransactionID: tx.ID,
			EventType:     "payment_cancelled",
			OldStatus:     &oldStatus,
			NewStatus:     tx.Status,
			CreatedAt:     now,
		})
	}

	return tx, nil
}

func (s *PaymentService) pendingExpiry(paymentMethod int32, now time.Time) *time.Time {
	var ttl time.Duration
	switch paymentMethod {
	case entity.PaymentMethodInstantTransfer:
		ttl = s.billingCfg.TransferPendingTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
	case entity.PaymentMethodVoucher:
		ttl = s.billingCfg.VoucherPendingTTL
		if ttl <= 0 {
			ttl = 72 * time.Hour
		}
	default:
		return nil
	}
	expiresAt := now.Add(ttl)
	return &expiresAt
}

func (s *PaymentService) notify(ctx context.Context, notification *entity.Notification) {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithField("account_id", notification.AccountID).Warn("Failed to persist notification")
	}
}

func (s *PaymentService) batchSize() int32 {
	if s.billingCfg.JobBatchSize > 0 {
		return s.billingCfg.JobBatchSize
	}
	return defaultBatchSize
}

func buildPayer(account *entity.Account, customer *types.Customer) gateway.Payer {
	payer := gateway.Payer{
		Name:     account.Name,
		Email:    account.Email,
		Document: account.Document,
	}
	if account.Phone != nil {
		payer.Phone = *account.Phone
	}
	if customer != nil {
		if customer.Name != "" {
			payer.Name = customer.Name
		}
		if customer.Email != "" {
			payer.Email = customer.Email
		}
		if customer.Document != "" {
			payer.Document = customer.Document
		}
		if customer.Phone != "" {
			payer.Phone = customer.Phone
		}
	}
	return payer
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
