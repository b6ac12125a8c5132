package repository

import (
	"context"
	"database/sql"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

// AccountRepository is read-only; account rows are owned by the accounts
// service, this core only needs the payer identity.
type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint64) (*entity.Account, error) {
	query := `
		SELECT id, name, email, document, phone, created_at, updated_at
		FROM accounts
		WHERE id = ?
	`

	account := &entity.Account{}
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Document,
		&phone,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	account.Phone = stringPtrFromNull(phone)

	return account, nil
}
