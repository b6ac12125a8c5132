package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/gateway"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

// HandleGatewayNotification is the single entry point for every inbound
// gateway callback. The notification pointer carries no authoritative state;
// the transaction detail is always re-fetched before anything is acted on.
// The handler is idempotent under redelivery and out-of-order arrival.
func (s *PaymentService) HandleGatewayNotification(ctx context.Context, req *types.GatewayNotificationRequest) (*entity.PaymentTransaction, error) {
	detail, err := s.gateway.FetchNotification(ctx, req.NotificationCode)
	if err != nil {
		return nil, fmt.Errorf("fetch notification %s: %w", req.NotificationCode, err)
	}

	tx, err := s.txRepo.FindByGatewayCode(ctx, detail.Code)
	if err != nil {
		return nil, fmt.Errorf("load transaction by gateway code %s: %w", detail.Code, err)
	}
	if tx == nil {
		// The caller is the gateway itself; an unknown code is logged and
		// dropped rather than surfaced.
		s.logger.WithField("gateway_code", detail.Code).
			WithField("gateway_status", detail.Status).
			Info("Notification for unknown transaction code, ignoring")
		return nil, nil
	}

	return s.applyGatewayStatus(ctx, tx, detail)
}

// applyGatewayStatus projects a fetched gateway detail onto the stored
// transaction. Shared by the webhook path and the reconcile job so both map
// external status identically.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, tx *entity.PaymentTransaction, detail *gateway.TransactionDetail) (*entity.PaymentTransaction, error) {
	now := time.Now().UTC()
	newStatus := mapGatewayStatus(detail.Status)

	refreshDisplayPayload(tx, detail)

	if newStatus == 0 || !entity.TransactionStatusCanTransition(tx.Status, newStatus) {
		// No domain transition: record the latest external status and any
		// refreshed payload, nothing else. Late or repeated terminal
		// notifications land here and stay side-effect free.
		tx.GatewayStatus = detail.Status
		tx.UpdatedAt = now
		if err := s.txRepo.Update(ctx, tx); err != nil {
			return nil, fmt.Errorf("refresh transaction %s: %w", tx.GatewayCode, err)
		}
		return tx, nil
	}

	oldStatus := tx.Status
	tx.Status = newStatus
	tx.GatewayStatus = detail.Status
	tx.UpdatedAt = now
	if newStatus == entity.TransactionStatusPaid {
		paidAt := now
		tx.PaidAt = &paidAt
	}

	// Conditional on the prior status: under concurrent redelivery only one
	// writer wins the transition, so activation can never double-fire.
	applied, err := s.txRepo.UpdateStatusFrom(ctx, tx, oldStatus)
	if err != nil {
		return nil, fmt.Errorf("persist status update %s: %w", tx.GatewayCode, err)
	}
	if !applied {
		s.logger.WithField("gateway_code", tx.GatewayCode).
			WithField("status", tx.Status).
			Info("Concurrent status update already applied, skipping")
		return s.txRepo.FindByGatewayCode(ctx, tx.GatewayCode)
	}

	_ = s.eventRepo.Create(ctx, &entity.TransactionEvent{
		TransactionID: tx.ID,
		EventType:     "payment_status_updated",
		OldStatus:     &oldStatus,
		NewStatus:     tx.Status,
		GatewayStatus: &detail.Status,
		CreatedAt:     now,
	})

	if tx.Status == entity.TransactionStatusPaid {
		if _, err := s.subscriptions.Activate(ctx, tx.AccountID, tx.PlanID, tx.ID, tx.PaymentMethod); err != nil {
			return nil, fmt.Errorf("activate subscription for account %d: %w", tx.AccountID, err)
		}
		s.notify(ctx, &entity.Notification{
			AccountID:     tx.AccountID,
			Type:          entity.NotificationPaymentStatusUpdated,
			Message:       fmt.Sprintf("Payment for plan %s confirmed", tx.PlanName),
			TransactionID: &tx.ID,
			CreatedAt:     now,
		})
	}

	return tx, nil
}

// mapGatewayStatus translates the gateway's numeric status space onto the
// domain lifecycle. Codes without a mapping (1 pending, 2 in-analysis,
// 4 available) leave the domain status unchanged.
func mapGatewayStatus(gatewayStatus int32) int32 {
	switch gatewayStatus {
	case gateway.StatusPaid:
		return entity.TransactionStatusPaid
	case gateway.StatusCancelled:
		return entity.TransactionStatusCancelled
	case gateway.StatusRefunded:
		return entity.TransactionStatusRefunded
	case gateway.StatusInDispute:
		return entity.TransactionStatusFailed
	default:
		return 0
	}
}

func refreshDisplayPayload(tx *entity.PaymentTransaction, detail *gateway.TransactionDetail) {
	if detail.PixPayload != nil {
		tx.PixPayload = detail.PixPayload
	}
	if detail.VoucherURL != nil {
		tx.VoucherURL = detail.VoucherURL
	}
}
