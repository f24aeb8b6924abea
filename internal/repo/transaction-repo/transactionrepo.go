package transactionrepo

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const transactionColumns = `id, donation_id, transaction_reference, payment_gateway, gateway_transaction_id, amount, currency, fee_amount, status, status_message, processed_at, request_payload, response_payload, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.ID, &t.DonationID, &t.Reference, &t.Gateway, &t.GatewayTransactionID,
		&t.Amount, &t.Currency, &t.FeeAmount, &t.Status, &t.StatusMessage,
		&t.ProcessedAt, &t.RequestPayload, &t.ResponsePayload,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE id = $1
    `
	transaction, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find transaction", zap.Error(err))
		return nil, err
	}
	return transaction, nil
}

func (r *Repository) FindByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE transaction_reference = $1
    `
	transaction, err := scanTransaction(r.db.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find transaction by reference", zap.Error(err))
		return nil, err
	}
	return transaction, nil
}

func (r *Repository) Save(ctx context.Context, transaction *domain.Transaction) error {
	query := `
        INSERT INTO transactions (id, donation_id, transaction_reference, payment_gateway, amount, currency, fee_amount, status, request_payload)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		err := r.db.QueryRow(ctx, query,
			transaction.ID, transaction.DonationID, transaction.Reference, transaction.Gateway,
			transaction.Amount, transaction.Currency, transaction.FeeAmount,
			transaction.Status, transaction.RequestPayload,
		).Scan(&transaction.CreatedAt, &transaction.UpdatedAt)
		if err != nil {
			zap.L().Error("can't save transaction", zap.Error(err))
			return err
		}
		return nil
	})
}

// Settle records the gateway outcome for a transaction. Runs inside
// the caller's transaction when one is bound to the context.
func (r *Repository) Settle(ctx context.Context, transaction *domain.Transaction) error {
	query := `
        UPDATE transactions
        SET status = $1, status_message = $2, gateway_transaction_id = $3, fee_amount = $4, processed_at = $5, response_payload = $6, updated_at = now()
        WHERE id = $7
    `
	_, err := r.db.Exec(ctx, query,
		transaction.Status, transaction.StatusMessage, transaction.GatewayTransactionID,
		transaction.FeeAmount, transaction.ProcessedAt, transaction.ResponsePayload,
		transaction.ID,
	)
	if err != nil {
		zap.L().Error("can't settle transaction", zap.Error(err))
		return err
	}
	return nil
}

// FindForProcessing returns transactions still waiting on a gateway
// outcome, oldest first, bounded by limit.
func (r *Repository) FindForProcessing(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := `
        SELECT ` + transactionColumns + `
        FROM transactions
        WHERE status IN ($1, $2)
        ORDER BY created_at
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, domain.TransactionStatusPending, domain.TransactionStatusProcessing, limit)
	if err != nil {
		zap.L().Error("can't load transactions for processing", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, nil
}

func (r *Repository) List(ctx context.Context, donationID string, limit, offset int) ([]domain.Transaction, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if donationID != "" {
		args = append(args, donationID)
		where += " AND donation_id = $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		zap.L().Error("can't count transactions", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := "SELECT " + transactionColumns + " FROM transactions " + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list transactions", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			zap.L().Error("can't scan transaction row", zap.Error(err))
			return nil, 0, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, total, nil
}
