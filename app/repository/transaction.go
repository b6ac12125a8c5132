package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-billing/app/entity"
)

var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrTransactionAlreadyExists = errors.New("transaction already exists")
)

const transactionColumns = `
	id, account_id, plan_id, plan_name, amount_cents, payment_method, status,
	gateway_code, gateway_status, reference,
	pix_payload, voucher_url, card_brand, card_last_digits, installments,
	paid_at, expires_at, created_at, updated_at
`

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (
			account_id, plan_id, plan_name, amount_cents, payment_method, status,
			gateway_code, gateway_status, reference,
			pix_payload, voucher_url, card_brand, card_last_digits, installments,
			paid_at, expires_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.AccountID,
		tx.PlanID,
		tx.PlanName,
		tx.AmountCents,
		tx.PaymentMethod,
		tx.Status,
		tx.GatewayCode,
		tx.GatewayStatus,
		tx.Reference,
		nullableStringValue(tx.PixPayload),
		nullableStringValue(tx.VoucherURL),
		nullableStringValue(tx.CardBrand),
		nullableStringValue(tx.CardLastDigits),
		nullableInt32Value(tx.Installments),
		nullableTimeValue(tx.PaidAt),
		nullableTimeValue(tx.ExpiresAt),
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrTransactionAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	tx.ID = uint64(id)
	return nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *entity.PaymentTransaction) error {
	query := `
		UPDATE payment_transactions SET
			status = ?,
			gateway_status = ?,
			pix_payload = ?,
			voucher_url = ?,
			paid_at = ?,
			expires_at = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.Status,
		tx.GatewayStatus,
		nullableStringValue(tx.PixPayload),
		nullableStringValue(tx.VoucherURL),
		nullableTimeValue(tx.PaidAt),
		nullableTimeValue(tx.ExpiresAt),
		tx.UpdatedAt,
		tx.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// UpdateStatusFrom performs a conditional status transition keyed on the
// expected prior status. It returns false without error when another writer
// got there first, which is what makes concurrent webhook redelivery safe.
func (r *TransactionRepository) UpdateStatusFrom(ctx context.Context, tx *entity.PaymentTransaction, expectedStatus int32) (bool, error) {
	query := `
		UPDATE payment_transactions SET
			status = ?,
			gateway_status = ?,
			pix_payload = ?,
			voucher_url = ?,
			paid_at = ?,
			updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		tx.Status,
		tx.GatewayStatus,
		nullableStringValue(tx.PixPayload),
		nullableStringValue(tx.VoucherURL),
		nullableTimeValue(tx.PaidAt),
		tx.UpdatedAt,
		tx.ID,
		expectedStatus,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uint64) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE id = ?`

	tx := &entity.PaymentTransaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, id), tx); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return tx, nil
}

func (r *TransactionRepository) FindByGatewayCode(ctx context.Context, gatewayCode string) (*entity.PaymentTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE gateway_code = ? LIMIT 1`

	tx := &entity.PaymentTransaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, gatewayCode), tx); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return tx, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uint64, limit, offset int32) ([]*entity.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE account_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	return r.queryTransactions(ctx, query, accountID, limit, offset)
}

func (r *TransactionRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int32) ([]*entity.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE status = ?
		  AND expires_at IS NOT NULL
		  AND expires_at <= ?
		ORDER BY expires_at ASC
		LIMIT ?
	`

	return r.queryTransactions(ctx, query, entity.TransactionStatusPending, now, limit)
}

func (r *TransactionRepository) ListForReconcile(ctx context.Context, before time.Time, limit int32) ([]*entity.PaymentTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM payment_transactions
		WHERE status = ?
		  AND updated_at <= ?
		ORDER BY updated_at ASC
		LIMIT ?
	`

	return r.queryTransactions(ctx, query, entity.TransactionStatusPending, before, limit)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]*entity.PaymentTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.PaymentTransaction, 0)
	for rows.Next() {
		item := &entity.PaymentTransaction{}
		if err := scanTransaction(rows, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(scan rowScanner, tx *entity.PaymentTransaction) error {
	var pixPayload sql.NullString
	var voucherURL sql.NullString
	var cardBrand sql.NullString
	var cardLastDigits sql.NullString
	var installments sql.NullInt32
	var paidAt sql.NullTime
	var expiresAt sql.NullTime

	err := scan.Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.PlanID,
		&tx.PlanName,
		&tx.AmountCents,
		&tx.PaymentMethod,
		&tx.Status,
		&tx.GatewayCode,
		&tx.GatewayStatus,
		&tx.Reference,
		&pixPayload,
		&voucherURL,
		&cardBrand,
		&cardLastDigits,
		&installments,
		&paidAt,
		&expiresAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return err
	}

	tx.PixPayload = stringPtrFromNull(pixPayload)
	tx.VoucherURL = stringPtrFromNull(voucherURL)
	tx.CardBrand = stringPtrFromNull(cardBrand)
	tx.CardLastDigits = stringPtrFromNull(cardLastDigits)
	tx.Installments = int32PtrFromNull(installments)
	tx.PaidAt = timePtrFromNull(paidAt)
	tx.ExpiresAt = timePtrFromNull(expiresAt)

	return nil
}
