package service

import (
	"context"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/gateway"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

func seedPendingTransaction(f *serviceFixture, gatewayCode string) *entity.PaymentTransaction {
	now := time.Now().UTC().Add(-time.Hour)
	tx := &entity.PaymentTransaction{
		ID:            f.txRepo.nextID,
		AccountID:     7,
		PlanID:        10,
		PlanName:      "premium",
		AmountCents:   4990,
		PaymentMethod: entity.PaymentMethodInstantTransfer,
		Status:        entity.TransactionStatusPending,
		GatewayCode:   gatewayCode,
		GatewayStatus: gateway.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.txRepo.transactions[tx.ID] = tx
	f.txRepo.nextID++
	return tx
}

func notificationRequest(code string) *types.GatewayNotificationRequest {
	return &types.GatewayNotificationRequest{NotificationCode: code, NotificationType: "transaction"}
}

func TestHandleNotificationPaidActivatesSubscriptionExactlyOnce(t *testing.T) {
	f := newPaymentServiceForTest()
	seedPendingTransaction(f, "ABC123")
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-1": {Code: "ABC123", Status: gateway.StatusPaid, StatusText: "paid"},
	}

	tx, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-1"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if tx.Status != entity.TransactionStatusPaid {
		t.Fatalf("expected paid status, got %d", tx.Status)
	}
	if tx.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}
	if f.activator.calls != 1 {
		t.Fatalf("expected one activation, got %d", f.activator.calls)
	}
	if f.activator.lastAccount != 7 || f.activator.lastPlan != 10 {
		t.Fatalf("activation carried wrong identifiers: account=%d plan=%d", f.activator.lastAccount, f.activator.lastPlan)
	}

	// Redelivery of the same notification must be a no-op.
	again, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-1"))
	if err != nil {
		t.Fatalf("redelivered notification failed: %v", err)
	}
	if again.Status != entity.TransactionStatusPaid {
		t.Fatalf("expected paid status after redelivery, got %d", again.Status)
	}
	if f.activator.calls != 1 {
		t.Fatalf("redelivery must not re-activate, got %d activations", f.activator.calls)
	}
}

func TestHandleNotificationUnknownCodeIsIgnored(t *testing.T) {
	f := newPaymentServiceForTest()
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-9": {Code: "ZZZ999", Status: gateway.StatusPaid},
	}

	tx, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-9"))
	if err != nil {
		t.Fatalf("unknown code must not error, got %v", err)
	}
	if tx != nil {
		t.Fatal("unknown code must not produce a transaction")
	}
	if len(f.txRepo.transactions) != 0 || len(f.eventRepo.events) != 0 {
		t.Fatal("unknown code must not write anything")
	}
}

func TestHandleNotificationCancelledAfterPaidKeepsPaid(t *testing.T) {
	f := newPaymentServiceForTest()
	tx := seedPendingTransaction(f, "ABC123")
	tx.Status = entity.TransactionStatusPaid
	tx.GatewayStatus = gateway.StatusPaid
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-2": {Code: "ABC123", Status: gateway.StatusCancelled},
	}

	updated, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-2"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if updated.Status != entity.TransactionStatusPaid {
		t.Fatalf("paid transaction must not regress to cancelled, got %d", updated.Status)
	}
	if updated.GatewayStatus != gateway.StatusCancelled {
		t.Fatalf("external status must still be recorded, got %d", updated.GatewayStatus)
	}
	if f.activator.calls != 0 {
		t.Fatal("no activation expected")
	}
}

func TestHandleNotificationRefundAfterPaid(t *testing.T) {
	f := newPaymentServiceForTest()
	tx := seedPendingTransaction(f, "ABC123")
	tx.Status = entity.TransactionStatusPaid
	tx.GatewayStatus = gateway.StatusPaid
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-3": {Code: "ABC123", Status: gateway.StatusRefunded},
	}

	updated, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-3"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if updated.Status != entity.TransactionStatusRefunded {
		t.Fatalf("expected refunded status, got %d", updated.Status)
	}
}

func TestHandleNotificationDisputeMarksFailed(t *testing.T) {
	f := newPaymentServiceForTest()
	seedPendingTransaction(f, "ABC123")
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-4": {Code: "ABC123", Status: gateway.StatusInDispute},
	}

	updated, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-4"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if updated.Status != entity.TransactionStatusFailed {
		t.Fatalf("expected failed status, got %d", updated.Status)
	}
	if f.activator.calls != 0 {
		t.Fatal("no activation expected for a dispute")
	}
}

func TestHandleNotificationIntermediateStatusOnlyRefreshes(t *testing.T) {
	f := newPaymentServiceForTest()
	seedPendingTransaction(f, "ABC123")
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-5": {Code: "ABC123", Status: gateway.StatusInAnalysis},
	}

	updated, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-5"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if updated.Status != entity.TransactionStatusPending {
		t.Fatalf("in-analysis must keep the transaction pending, got %d", updated.Status)
	}
	if updated.GatewayStatus != gateway.StatusInAnalysis {
		t.Fatalf("expected refreshed gateway status, got %d", updated.GatewayStatus)
	}
	if len(f.eventRepo.events) != 0 {
		t.Fatalf("no transition means no event, got %v", f.eventRepo.eventTypes())
	}
}

func TestHandleNotificationRefreshesDisplayPayload(t *testing.T) {
	f := newPaymentServiceForTest()
	seedPendingTransaction(f, "ABC123")
	payload := "00020126BR.GOV.BCB.PIX"
	f.gateway.notifications = map[string]*gateway.TransactionDetail{
		"NOTIF-6": {Code: "ABC123", Status: gateway.StatusPending, PixPayload: &payload},
	}

	updated, err := f.svc.HandleGatewayNotification(context.Background(), notificationRequest("NOTIF-6"))
	if err != nil {
		t.Fatalf("handle notification failed: %v", err)
	}
	if updated.PixPayload == nil || *updated.PixPayload != payload {
		t.Fatal("expected pix payload refreshed from gateway detail")
	}
}
