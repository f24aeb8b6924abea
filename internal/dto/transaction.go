package dto

import (
	"time"

	"github.com/givehub/givehub/internal/domain"
)

type StoreTransactionRequestDTO struct {
	Gateway        string         `json:"payment_gateway" validate:"required"`
	Amount         int64          `json:"amount" validate:"required,min=1"`
	Currency       *string        `json:"currency,omitempty" example:"USD"`
	RequestPayload map[string]any `json:"request_payload,omitempty"`
}

type TransactionResponseDTO struct {
	ID                   string               `json:"id"`
	DonationID           string               `json:"donation_id"`
	TransactionReference string               `json:"transaction_reference"`
	PaymentGateway       string               `json:"payment_gateway"`
	GatewayTransactionID *string              `json:"gateway_transaction_id"`
	Amount               int64                `json:"amount"`
	Currency             string               `json:"currency"`
	FeeAmount            int64                `json:"fee_amount"`
	Status               int                  `json:"status"`
	StatusLabel          string               `json:"status_label" example:"completed"`
	StatusMessage        *string              `json:"status_message"`
	ProcessedAt          *string              `json:"processed_at"`
	RequestPayload       map[string]any       `json:"request_payload"`
	ResponsePayload      map[string]any       `json:"response_payload"`
	Donation             *DonationResponseDTO `json:"donation,omitempty"`
	CreatedAt            string               `json:"created_at"`
	UpdatedAt            string               `json:"updated_at"`
}

type ReceiptResponseDTO struct {
	ID            string  `json:"id"`
	DonationID    string  `json:"donation_id"`
	ReceiptNumber string  `json:"receipt_number"`
	IssuedDate    string  `json:"issued_date" example:"2025-09-01"`
	EmailSentAt   *string `json:"email_sent_at"`
	CreatedAt     string  `json:"created_at"`
}

func NewTransactionResponse(t *domain.Transaction, donation *DonationResponseDTO) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:                   t.ID,
		DonationID:           t.DonationID,
		TransactionReference: t.Reference,
		PaymentGateway:       t.Gateway,
		GatewayTransactionID: t.GatewayTransactionID,
		Amount:               t.Amount,
		Currency:             t.Currency,
		FeeAmount:            t.FeeAmount,
		Status:               t.Status,
		StatusLabel:          domain.TransactionStatusLabel(t.Status),
		StatusMessage:        t.StatusMessage,
		ProcessedAt:          formatTimePtr(t.ProcessedAt),
		RequestPayload:       t.RequestPayload,
		ResponsePayload:      t.ResponsePayload,
		Donation:             donation,
		CreatedAt:            t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            t.UpdatedAt.Format(time.RFC3339),
	}
}

func NewReceiptResponse(r *domain.DonationReceipt) ReceiptResponseDTO {
	return ReceiptResponseDTO{
		ID:            r.ID,
		DonationID:    r.DonationID,
		ReceiptNumber: r.ReceiptNumber,
		IssuedDate:    r.IssuedDate.Format(dateLayout),
		EmailSentAt:   formatTimePtr(r.EmailSentAt),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
