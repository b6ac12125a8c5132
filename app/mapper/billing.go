package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

func TransactionToResponse(item *entity.PaymentTransaction) *types.Transaction {
	if item == nil {
		return nil
	}

	resp := &types.Transaction{
		ID:             item.ID,
		AccountID:      item.AccountID,
		PlanID:         item.PlanID,
		PlanName:       item.PlanName,
		Amount:         types.FormatMajorAmount(item.AmountCents),
		PaymentMethod:  types.PaymentMethodName(item.PaymentMethod),
		Status:         types.TransactionStatusName(item.Status),
		GatewayCode:    item.GatewayCode,
		GatewayStatus:  item.GatewayStatus,
		Reference:      item.Reference,
		PixPayload:     derefString(item.PixPayload),
		VoucherURL:     derefString(item.VoucherURL),
		CardBrand:      derefString(item.CardBrand),
		CardLastDigits: derefString(item.CardLastDigits),
		Installments:   derefInt32(item.Installments),
		CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.PaidAt != nil {
		resp.PaidAt = item.PaidAt.UTC().Format(time.RFC3339)
	}
	if item.ExpiresAt != nil {
		resp.ExpiresAt = item.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return resp
}

func TransactionsToResponse(items []*entity.PaymentTransaction) []*types.Transaction {
	result := make([]*types.Transaction, 0, len(items))
	for _, item := range items {
		result = append(result, TransactionToResponse(item))
	}
	return result
}

func CheckoutResultToResponse(result *service.CheckoutResult) *types.CheckoutResponse {
	if result == nil {
		return nil
	}
	if result.Declined != nil {
		return &types.CheckoutResponse{
			Success: false,
			Error: &types.CheckoutError{
				Code:    result.Declined.Code,
				Message: result.Declined.Message,
			},
		}
	}
	return &types.CheckoutResponse{
		Success:     true,
		Transaction: TransactionToResponse(result.Transaction),
		PaymentURL:  result.PaymentURL,
	}
}

func SubscriptionToResponse(item *entity.Subscription) *types.Subscription {
	if item == nil {
		return nil
	}

	resp := &types.Subscription{
		ID:            item.ID,
		AccountID:     item.AccountID,
		PlanID:        item.PlanID,
		PlanName:      item.PlanName,
		Status:        types.SubscriptionStatusName(item.Status),
		StartsAt:      item.StartsAt.UTC().Format(time.RFC3339),
		EndsAt:        item.EndsAt.UTC().Format(time.RFC3339),
		RenewsAt:      item.RenewsAt.UTC().Format(time.RFC3339),
		AutoRenew:     item.AutoRenew,
		PaymentMethod: types.PaymentMethodName(item.PaymentMethod),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.LastTransactionID != nil {
		resp.LastTransactionID = *item.LastTransactionID
	}

	return resp
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt32(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}
