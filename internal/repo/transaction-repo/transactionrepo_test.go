package transactionrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/pg"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)

	ctrl := gomock.NewController(t)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn pg.TransactionalFn) error {
			return fn(ctx)
		},
	).AnyTimes()

	repo := New(mockDB, txManager)
	defer mockDB.Close()

	return repo, mockDB
}

func transactionRow(tr *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "donation_id", "transaction_reference", "payment_gateway", "gateway_transaction_id",
		"amount", "currency", "fee_amount", "status", "status_message",
		"processed_at", "request_payload", "response_payload", "created_at", "updated_at",
	}).AddRow(
		tr.ID, tr.DonationID, tr.Reference, tr.Gateway, tr.GatewayTransactionID,
		tr.Amount, tr.Currency, tr.FeeAmount, tr.Status, tr.StatusMessage,
		tr.ProcessedAt, tr.RequestPayload, tr.ResponsePayload, tr.CreatedAt, tr.UpdatedAt,
	)
}

func sampleTransaction() *domain.Transaction {
	return &domain.Transaction{
		ID:         "t-1",
		DonationID: "d-1",
		Reference:  "TXN-abc",
		Gateway:    "stripe",
		Amount:     1000,
		Currency:   "USD",
		Status:     domain.TransactionStatusPending,
		CreatedAt:  time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Transaction found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs("t-1").
			WillReturnRows(transactionRow(sampleTransaction()))

		result, err := repo.FindByID(context.Background(), "t-1")
		assert.NoError(t, err)
		assert.Equal(t, sampleTransaction(), result)
	})

	t.Run("Transaction not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.FindByID(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs("t-1").
			WillReturnError(errors.New("database error"))

		_, err := repo.FindByID(context.Background(), "t-1")
		assert.Error(t, err)
	})
}

func TestRepository_FindByReference(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Transaction found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs("TXN-abc").
			WillReturnRows(transactionRow(sampleTransaction()))

		result, err := repo.FindByReference(context.Background(), "TXN-abc")
		assert.NoError(t, err)
		assert.Equal(t, "t-1", result.ID)
	})

	t.Run("Transaction not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs("TXN-missing").
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.FindByReference(context.Background(), "TXN-missing")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestRepository_Save(t *testing.T) {
	repo, mock := NewMock(t)

	tr := sampleTransaction()

	t.Run("Save transaction successfully", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now())
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions (id, donation_id, transaction_reference, payment_gateway, amount, currency, fee_amount, status, request_payload)")).
			WithArgs(tr.ID, tr.DonationID, tr.Reference, tr.Gateway, tr.Amount, tr.Currency, tr.FeeAmount, tr.Status, tr.RequestPayload).
			WillReturnRows(rows)

		err := repo.Save(context.Background(), tr)
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
			WithArgs(tr.ID, tr.DonationID, tr.Reference, tr.Gateway, tr.Amount, tr.Currency, tr.FeeAmount, tr.Status, tr.RequestPayload).
			WillReturnError(errors.New("database error"))

		err := repo.Save(context.Background(), tr)
		assert.Error(t, err)
	})
}

func TestRepository_Settle(t *testing.T) {
	repo, mock := NewMock(t)

	processedAt := time.Now()
	gatewayID := "pi_123"
	message := "payment confirmed"
	payload := map[string]any{"status": "completed"}

	tr := sampleTransaction()
	tr.Status = domain.TransactionStatusCompleted
	tr.StatusMessage = &message
	tr.GatewayTransactionID = &gatewayID
	tr.FeeAmount = 30
	tr.ProcessedAt = &processedAt
	tr.ResponsePayload = payload

	t.Run("Settle transaction successfully", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
			WithArgs(tr.Status, tr.StatusMessage, tr.GatewayTransactionID, tr.FeeAmount, tr.ProcessedAt, tr.ResponsePayload, tr.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Settle(context.Background(), tr)
		assert.NoError(t, err)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions")).
			WithArgs(tr.Status, tr.StatusMessage, tr.GatewayTransactionID, tr.FeeAmount, tr.ProcessedAt, tr.ResponsePayload, tr.ID).
			WillReturnError(errors.New("database error"))

		err := repo.Settle(context.Background(), tr)
		assert.Error(t, err)
	})
}

func TestRepository_FindForProcessing(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Pending transactions returned oldest first", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs(domain.TransactionStatusPending, domain.TransactionStatusProcessing, 1000).
			WillReturnRows(transactionRow(sampleTransaction()))

		transactions, err := repo.FindForProcessing(context.Background(), 1000)
		assert.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.Equal(t, "t-1", transactions[0].ID)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT "+transactionColumns)).
			WithArgs(domain.TransactionStatusPending, domain.TransactionStatusProcessing, 1000).
			WillReturnError(errors.New("database error"))

		_, err := repo.FindForProcessing(context.Background(), 1000)
		assert.Error(t, err)
	})
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)

	t.Run("Listing scoped to a donation", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions")).
			WithArgs("d-1").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery("SELECT .* FROM transactions .* ORDER BY created_at DESC").
			WithArgs("d-1", 15, 0).
			WillReturnRows(transactionRow(sampleTransaction()))

		transactions, total, err := repo.List(context.Background(), "d-1", 15, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, transactions, 1)
	})

	t.Run("Count error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM transactions")).
			WillReturnError(errors.New("database error"))

		_, _, err := repo.List(context.Background(), "", 15, 0)
		assert.Error(t, err)
	})
}
