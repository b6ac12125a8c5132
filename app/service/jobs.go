package service

import (
	"context"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

// RunReconcileBatch polls the gateway for pending transactions that have not
// moved in a while and applies the same status mapping as the webhook path.
// It covers notifications the gateway dropped or that we failed to process.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	staleAfter := s.billingCfg.ReconcileStaleAfter
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}

	items, err := s.txRepo.ListForReconcile(ctx, now.Add(-staleAfter), s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, tx := range items {
		if tx == nil || strings.TrimSpace(tx.GatewayCode) == "" {
			continue
		}

		detail, err := s.gateway.GetTransaction(ctx, tx.GatewayCode)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		if _, err := s.applyGatewayStatus(ctx, tx, detail); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

// RunExpirePendingBatch cancels pending transactions whose instrument expiry
// has passed (unpaid instant transfers after a day, unpaid vouchers after
// three days).
func (s *PaymentService) RunExpirePendingBatch(ctx context.Context) error {
	now := time.Now().UTC()
	items, err := s.txRepo.ListExpiredPending(ctx, now, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, tx := range items {
		if tx == nil || tx.Status != entity.TransactionStatusPending {
			continue
		}

		oldStatus := tx.Status
		tx.Status = entity.TransactionStatusCancelled
		tx.UpdatedAt = now

		applied, err := s.txRepo.UpdateStatusFrom(ctx, tx, oldStatus)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		if !applied {
			continue
		}

		_ = s.eventRepo.Create(ctx, &entity.TransactionEvent{
			TransactionID: tx.ID,
			EventType:     "payment_expired",
			OldStatus:     &oldStatus,
			NewStatus:     tx.Status,
			CreatedAt:     now,
		})
	}

	return firstErr
}
