package receiptrepo

import (
	"context"
	"errors"

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

const receiptColumns = `id, donation_id, receipt_number, issued_date, email_sent_at, created_at, updated_at`

func (r *Repository) FindByDonationID(ctx context.Context, donationID string) (*domain.DonationReceipt, error) {
	query := `
        SELECT ` + receiptColumns + `
        FROM donation_receipts
        WHERE donation_id = $1
    `
	var receipt domain.DonationReceipt
	err := r.db.QueryRow(ctx, query, donationID).Scan(
		&receipt.ID, &receipt.DonationID, &receipt.ReceiptNumber,
		&receipt.IssuedDate, &receipt.EmailSentAt, &receipt.CreatedAt, &receipt.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find receipt", zap.Error(err))
		return nil, err
	}
	return &receipt, nil
}

// Save inserts a receipt. The donation_id unique constraint keeps a
// donation from ever holding two receipts. Runs inside the caller's
// transaction when one is bound to the context.
func (r *Repository) Save(ctx context.Context, receipt *domain.DonationReceipt) error {
	query := `
        INSERT INTO donation_receipts (id, donation_id, receipt_number, issued_date)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		receipt.ID, receipt.DonationID, receipt.ReceiptNumber, receipt.IssuedDate,
	).Scan(&receipt.CreatedAt, &receipt.UpdatedAt)
	if err != nil {
		zap.L().Error("can't save receipt", zap.Error(err))
		return err
	}
	return nil
}
