package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

// PlanRepository is read-only; plan rows are owned by the catalog tooling.
type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint64) (*entity.Plan, error) {
	query := `
		SELECT id, name, duration_days, transfer_price_cents, card_price_cents, created_at, updated_at
		FROM plans
		WHERE id = ?
	`

	plan := &entity.Plan{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.DurationDays,
		&plan.TransferPriceCents,
		&plan.CardPriceCents,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return plan, nil
}
