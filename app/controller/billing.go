package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/mapper"
	"github.com/vibast-solutions/ms-go-billing/app/service"
	"github.com/vibast-solutions/ms-go-billing/app/types"
)

type BillingController struct {
	paymentService      *service.PaymentService
	subscriptionService *service.SubscriptionService
	logger              logrus.FieldLogger
}

func NewBillingController(paymentService *service.PaymentService, subscriptionService *service.SubscriptionService) *BillingController {
	return &BillingController{
		paymentService:      paymentService,
		subscriptionService: subscriptionService,
		logger:              factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *BillingController) CreatePayment(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.createByMethod(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPlanNotFound):
			return c.writeError(ctx, http.StatusNotFound, "plan not found")
		case errors.Is(err, service.ErrAccountNotFound):
			return c.writeError(ctx, http.StatusNotFound, "account not found")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create payment failed")
			return c.writeError(ctx, http.StatusBadGateway, "payment gateway unavailable")
		}
	}

	status := http.StatusCreated
	if result.Declined != nil {
		status = http.StatusOK
	}
	return ctx.JSON(status, mapper.CheckoutResultToResponse(result))
}

func (c *BillingController) createByMethod(ctx echo.Context, req *types.CreatePaymentRequest) (*service.CheckoutResult, error) {
	requestCtx := ctx.Request().Context()
	switch req.PaymentMethod {
	case types.PaymentMethodPixName:
		return c.paymentService.CreateInstantTransferPayment(requestCtx, req)
	case types.PaymentMethodCardName:
		return c.paymentService.CreateCardPayment(requestCtx, req)
	case types.PaymentMethodBoletoName:
		return c.paymentService.CreateVoucherPayment(requestCtx, req)
	default:
		return nil, service.ErrInvalidRequest
	}
}

func (c *BillingController) GetTransaction(ctx echo.Context) error {
	req, err := types.NewGetTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetTransaction(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "transaction not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get transaction failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *BillingController) ListTransactions(ctx echo.Context) error {
	req, err := types.NewListTransactionsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.paymentService.ListTransactions(ctx.Request().Context(), req)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List transactions failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListTransactionsResponse{Transactions: mapper.TransactionsToResponse(items)})
}

func (c *BillingController) CancelTransaction(ctx echo.Context) error {
	req, err := types.NewCancelTransactionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.CancelTransaction(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			return c.writeError(ctx, http.StatusNotFound, "transaction not found")
		case errors.Is(err, service.ErrInvalidStatus):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Cancel transaction failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.TransactionEnvelopeResponse{Transaction: mapper.TransactionToResponse(item)})
}

func (c *BillingController) HandleGatewayNotification(ctx echo.Context) error {
	req, err := types.NewGatewayNotificationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	_, err = c.paymentService.HandleGatewayNotification(ctx.Request().Context(), req)
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Handle gateway notification failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Notification processed"})
}

func (c *BillingController) GetSubscription(ctx echo.Context) error {
	req, err := types.NewGetSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.GetActive(ctx.Request().Context(), req.AccountID)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "subscription not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get subscription failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToResponse(item)})
}

func (c *BillingController) CancelSubscription(ctx echo.Context) error {
	req, err := types.NewCancelSubscriptionRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.subscriptionService.Cancel(ctx.Request().Context(), req.AccountID, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return c.writeError(ctx, http.StatusNotFound, "subscription not found")
		case errors.Is(err, service.ErrPermissionDenied):
			return c.writeError(ctx, http.StatusForbidden, "subscription does not belong to this account")
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Cancel subscription failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.SubscriptionEnvelopeResponse{Subscription: mapper.SubscriptionToResponse(item)})
}

func (c *BillingController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
