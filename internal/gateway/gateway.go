package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/givehub/givehub/internal/config"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/metrics"
	"github.com/givehub/givehub/internal/pg"
	"github.com/givehub/givehub/pkg/clients"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

var processingTransactions sync.Map

// Response is the payment gateway's status payload for a transaction.
type Response struct {
	Reference            string         `json:"transaction_reference"`
	Status               string         `json:"status"`
	GatewayTransactionID string         `json:"gateway_transaction_id,omitempty"`
	Amount               int64          `json:"amount"`
	FeeAmount            int64          `json:"fee_amount,omitempty"`
	Message              string         `json:"message,omitempty"`
	Payload              map[string]any `json:"payload,omitempty"`
}

type TransactionRepo interface {
	FindForProcessing(ctx context.Context, limit int) ([]domain.Transaction, error)
	Settle(ctx context.Context, transaction *domain.Transaction) error
}

type DonationRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
	MarkStatus(ctx context.Context, id string, status int) error
}

type CampaignRepo interface {
	AddToCurrentAmount(ctx context.Context, id string, amount int64) error
}

type Receipts interface {
	Issue(ctx context.Context, donationID string) (*domain.DonationReceipt, error)
}

type Service struct {
	url             string
	transactionRepo TransactionRepo
	donationRepo    DonationRepo
	campaignRepo    CampaignRepo
	receipts        Receipts
	txManager       pg.TXManager
	client          clients.HTTPClientI
	limit           int
	workerPool      WorkerPoolI
	updateInterval  time.Duration
}

func New(cfg *config.Config, transactionRepo TransactionRepo, donationRepo DonationRepo, campaignRepo CampaignRepo, receipts Receipts, txManager pg.TXManager, client clients.HTTPClientI) *Service {
	return &Service{
		url:             cfg.GatewayAddress,
		transactionRepo: transactionRepo,
		donationRepo:    donationRepo,
		campaignRepo:    campaignRepo,
		receipts:        receipts,
		txManager:       txManager,
		client:          client,
		limit:           1000,
		workerPool:      NewWorkerPool(10),
		updateInterval:  time.Second * 5,
	}
}

func (s *Service) Start(ctx context.Context) {
	zap.L().Info("Payment gateway poller started")
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping gateway poller")
			return
		case <-ticker.C:
			s.processTransactions(ctx)
		}
	}
}

func (s *Service) processTransactions(ctx context.Context) {
	metrics.GatewayPolls.Inc()
	transactions, err := s.transactionRepo.FindForProcessing(ctx, s.limit)
	if err != nil {
		zap.L().Error("Failed to fetch transactions for processing", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, transaction := range transactions {
		transaction := transaction

		if _, loaded := processingTransactions.LoadOrStore(transaction.Reference, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer processingTransactions.Delete(transaction.Reference)
				return s.handleTransaction(ctx, transaction)
			})
			if err != nil {
				processingTransactions.Delete(transaction.Reference)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error processing transactions", zap.Error(err))
	}
}

func (s *Service) handleTransaction(ctx context.Context, transaction domain.Transaction) error {
	url := s.url + "/api/payments/" + transaction.Reference
	var err error
	var statusCode int
	var respBody []byte
	var respHeaders http.Header

	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			statusCode, respBody, respHeaders, err = s.client.Get(url, nil)
			if err != nil {
				metrics.GatewayErrors.Inc()
				if attempt < maxRetries {
					time.Sleep(retryInterval * time.Duration(attempt))
					continue
				}
				return fmt.Errorf("failed to poll transaction %s after %d retries: %w", transaction.Reference, maxRetries, err)
			}

			switch statusCode {
			case http.StatusTooManyRequests:
				return s.handleRateLimit(transaction, respHeaders, attempt)
			case http.StatusNoContent:
				zap.L().Warn("Transaction not known to gateway yet, retrying",
					zap.String("reference", transaction.Reference), zap.Int("attempt", attempt))
				if attempt < maxRetries {
					time.Sleep(retryInterval * time.Duration(attempt))
					continue
				}
				return fmt.Errorf("transaction %s not found at gateway after %d retries", transaction.Reference, maxRetries)

			case http.StatusOK:
				return s.processOutcome(ctx, transaction, respBody)

			default:
				metrics.GatewayErrors.Inc()
				zap.L().Error("Unexpected status code", zap.Int("status", statusCode), zap.String("reference", transaction.Reference))
				return errors.New("unexpected status code")
			}
		}
	}
	return nil
}

var gatewayStatuses = map[string]int{
	"pending":    domain.TransactionStatusPending,
	"processing": domain.TransactionStatusProcessing,
	"completed":  domain.TransactionStatusCompleted,
	"failed":     domain.TransactionStatusFailed,
	"cancelled":  domain.TransactionStatusCancelled,
}

func (s *Service) processOutcome(ctx context.Context, transaction domain.Transaction, respBody []byte) error {
	var response Response
	if err := json.Unmarshal(respBody, &response); err != nil {
		return fmt.Errorf("failed to parse response body: %w", err)
	}

	if response.Reference != transaction.Reference {
		return fmt.Errorf("reference mismatch: expected %s, got %s", transaction.Reference, response.Reference)
	}

	status, ok := gatewayStatuses[response.Status]
	if !ok {
		zap.L().Warn("Unrecognized status received",
			zap.String("reference", transaction.Reference), zap.String("status", response.Status))
		return nil
	}

	// A settled amount that disagrees with what we charged is treated
	// as a failed payment, never silently accepted.
	if status == domain.TransactionStatusCompleted && response.Amount != transaction.Amount {
		zap.L().Error("Gateway amount mismatch",
			zap.String("reference", transaction.Reference),
			zap.Int64("expected", transaction.Amount),
			zap.Int64("got", response.Amount))
		status = domain.TransactionStatusFailed
		mismatch := "settled amount does not match the transaction amount"
		response.Message = mismatch
	}

	switch status {
	case domain.TransactionStatusPending, domain.TransactionStatusProcessing:
		if status == transaction.Status {
			return nil
		}
		transaction.Status = status
		return s.transactionRepo.Settle(ctx, &transaction)
	case domain.TransactionStatusCompleted:
		return s.settle(ctx, transaction, response, status, domain.DonationStatusCompleted)
	default:
		return s.settle(ctx, transaction, response, status, domain.DonationStatusFailed)
	}
}

// settle records the final gateway outcome and, on success, completes
// the donation, bumps the campaign total and issues the receipt — all
// in one database transaction.
func (s *Service) settle(ctx context.Context, transaction domain.Transaction, response Response, transactionStatus, donationStatus int) error {
	now := time.Now()
	transaction.Status = transactionStatus
	transaction.ProcessedAt = &now
	transaction.FeeAmount = response.FeeAmount
	transaction.ResponsePayload = response.Payload
	if response.GatewayTransactionID != "" {
		transaction.GatewayTransactionID = &response.GatewayTransactionID
	}
	if response.Message != "" {
		transaction.StatusMessage = &response.Message
	}

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if err := s.transactionRepo.Settle(ctx, &transaction); err != nil {
			return fmt.Errorf("failed to settle transaction %s: %w", transaction.Reference, err)
		}

		donation, err := s.donationRepo.FindByID(ctx, transaction.DonationID)
		if err != nil {
			return err
		}
		if donation == nil {
			return fmt.Errorf("donation %s not found for transaction %s", transaction.DonationID, transaction.Reference)
		}
		if donation.Status != domain.DonationStatusPending {
			return nil
		}

		if err := s.donationRepo.MarkStatus(ctx, donation.ID, donationStatus); err != nil {
			return err
		}
		if donationStatus != domain.DonationStatusCompleted {
			return nil
		}
		if err := s.campaignRepo.AddToCurrentAmount(ctx, donation.CampaignID, donation.Amount); err != nil {
			return err
		}
		if _, err := s.receipts.Issue(ctx, donation.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.DonationsSettled.WithLabelValues(domain.DonationStatusLabel(donationStatus)).Inc()
	zap.L().Info("Transaction settled",
		zap.String("reference", transaction.Reference),
		zap.String("status", domain.TransactionStatusLabel(transactionStatus)))
	return nil
}

func (s *Service) handleRateLimit(transaction domain.Transaction, respHeaders http.Header, attempt int) error {
	retryAfterHeader := respHeaders.Get("Retry-After")
	retryAfter := retryInterval * time.Duration(attempt)

	if retryAfterHeader != "" {
		if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	zap.L().Warn(
		"Rate limit detected, retrying",
		zap.String("reference", transaction.Reference),
		zap.Int("attempt", attempt),
		zap.Duration("retryAfter", retryAfter),
	)
	time.Sleep(retryAfter)
	return nil
}
