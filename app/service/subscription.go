package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing/app/entity"
	"github.com/vibast-solutions/ms-go-billing/app/factory"
	"github.com/vibast-solutions/ms-go-billing/app/repository"
	"github.com/vibast-solutions/ms-go-billing/config"
)

// renewalGraceOffset is how long before the window end a renewal becomes due.
const renewalGraceOffset = 24 * time.Hour

type subscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	Update(ctx context.Context, sub *entity.Subscription) error
	FindByID(ctx context.Context, id uint64) (*entity.Subscription, error)
	FindByAccountID(ctx context.Context, accountID uint64) (*entity.Subscription, error)
	ListExpiredActive(ctx context.Context, now time.Time, limit int32) ([]*entity.Subscription, error)
}

type SubscriptionService struct {
	subRepo          subscriptionRepository
	planRepo         planRepository
	notificationRepo notificationRepository
	billingCfg       config.BillingConfig
	logger           logrus.FieldLogger
}

func NewSubscriptionService(
	subRepo subscriptionRepository,
	planRepo planRepository,
	notificationRepo notificationRepository,
	billingCfg config.BillingConfig,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:          subRepo,
		planRepo:         planRepo,
		notificationRepo: notificationRepo,
		billingCfg:       billingCfg,
		logger:           factory.NewModuleLogger("subscription-service"),
	}
}

// Activate grants or refreshes plan benefits after a confirmed payment. The
// account's existing subscription row is updated in place; a new row is
// created only on first activation, so each account keeps a single
// authoritative record.
func (s *SubscriptionService) Activate(ctx context.Context, accountID, planID, transactionID uint64, paymentMethod int32) (*entity.Subscription, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %d: %w", planID, err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	now := time.Now().UTC()
	startsAt := now
	endsAt := startsAt.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
	renewsAt := endsAt.Add(-renewalGraceOffset)

	sub, err := s.subRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load subscription for account %d: %w", accountID, err)
	}

	if sub == nil {
		sub = &entity.Subscription{
			AccountID:         accountID,
			PlanID:            plan.ID,
			PlanName:          plan.Name,
			Status:            entity.SubscriptionStatusActive,
			StartsAt:          startsAt,
			EndsAt:            endsAt,
			RenewsAt:          renewsAt,
			AutoRenew:         true,
			PaymentMethod:     paymentMethod,
			LastTransactionID: &transactionID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		err := s.subRepo.Create(ctx, sub)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, repository.ErrSubscriptionAlreadyExists) {
			return nil, fmt.Errorf("create subscription for account %d: %w", accountID, err)
		}

		// A concurrent confirmation for the same account inserted the row
		// between the read and the insert. Renew the winner's row in place
		// so the account keeps a single record.
		sub, err = s.subRepo.FindByAccountID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("load subscription for account %d: %w", accountID, err)
		}
		if sub == nil {
			return nil, fmt.Errorf("subscription for account %d missing after duplicate insert", accountID)
		}
	}

	sub.PlanID = plan.ID
	sub.PlanName = plan.Name
	sub.Status = entity.SubscriptionStatusActive
	sub.StartsAt = startsAt
	sub.EndsAt = endsAt
	sub.RenewsAt = renewsAt
	sub.AutoRenew = true
	sub.PaymentMethod = paymentMethod
	sub.LastTransactionID = &transactionID
	sub.UpdatedAt = now

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("renew subscription %d: %w", sub.ID, err)
	}

	return sub, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, accountID, subscriptionID uint64) (*entity.Subscription, error) {
	sub, err := s.subRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("load subscription %d: %w", subscriptionID, err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	if sub.AccountID != accountID {
		return nil, ErrPermissionDenied
	}

	now := time.Now().UTC()
	sub.Status = entity.SubscriptionStatusCancelled
	sub.AutoRenew = false
	sub.UpdatedAt = now

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("cancel subscription %d: %w", sub.ID, err)
	}

	notification := &entity.Notification{
		AccountID:      sub.AccountID,
		Type:           entity.NotificationSubscriptionCancelled,
		Message:        fmt.Sprintf("Subscription to plan %s cancelled", sub.PlanName),
		SubscriptionID: &sub.ID,
		CreatedAt:      now,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithField("subscription_id", sub.ID).Warn("Failed to persist cancellation notification")
	}

	return sub, nil
}

// GetActive returns the account's most recently created subscription. This
// is "most recent by creation", not "currently valid by window"; the expiry
// sweep is what retires lapsed rows.
func (s *SubscriptionService) GetActive(ctx context.Context, accountID uint64) (*entity.Subscription, error) {
	sub, err := s.subRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load subscription for account %d: %w", accountID, err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// RunExpireSubscriptionsBatch retires active subscriptions whose window has
// lapsed without auto-renew.
func (s *SubscriptionService) RunExpireSubscriptionsBatch(ctx context.Context) error {
	now := time.Now().UTC()
	batch := s.billingCfg.JobBatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	items, err := s.subRepo.ListExpiredActive(ctx, now, batch)
	if err != nil {
		return err
	}

	var firstErr error
	for _, sub := range items {
		if sub == nil {
			continue
		}
		sub.Status = entity.SubscriptionStatusExpired
		sub.UpdatedAt = now
		if err := s.subRepo.Update(ctx, sub); err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		s.logger.WithField("subscription_id", sub.ID).
			WithField("account_id", sub.AccountID).
			Info("Subscription expired")
	}

	return firstErr
}
