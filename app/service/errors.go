package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrAccountNotFound      = errors.New("account not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidStatus        = errors.New("invalid status")
)
