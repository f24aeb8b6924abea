package receiptservice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/policy"
)

type Repo interface {
	FindByDonationID(ctx context.Context, donationID string) (*domain.DonationReceipt, error)
	Save(ctx context.Context, receipt *domain.DonationReceipt) error
}

type DonationRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
}

type Service struct {
	receiptRepo  Repo
	donationRepo DonationRepo
}

func New(receiptRepo Repo, donationRepo DonationRepo) *Service {
	return &Service{
		receiptRepo:  receiptRepo,
		donationRepo: donationRepo,
	}
}

// GetByDonation returns the receipt for a completed donation the
// actor may see.
func (s *Service) GetByDonation(ctx context.Context, actor *domain.User, donationID string) (*domain.DonationReceipt, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation")
	}
	if !policy.CanViewDonation(actor, donation) {
		return nil, apperrors.Forbidden("view receipt")
	}
	receipt, err := s.receiptRepo.FindByDonationID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find receipt: ", zap.Error(err))
		return nil, err
	}
	if receipt == nil {
		return nil, apperrors.NotFound("receipt")
	}
	return receipt, nil
}

// Issue creates the receipt for a donation that just completed. It is
// idempotent: an existing receipt is returned as is.
func (s *Service) Issue(ctx context.Context, donationID string) (*domain.DonationReceipt, error) {
	existing, err := s.receiptRepo.FindByDonationID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find receipt: ", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	receipt := &domain.DonationReceipt{
		ID:            uuid.NewString(),
		DonationID:    donationID,
		ReceiptNumber: fmt.Sprintf("RCPT-%s-%s", now.Format("20060102"), uuid.NewString()[:8]),
		IssuedDate:    now,
	}
	if err := s.receiptRepo.Save(ctx, receipt); err != nil {
		zap.L().Error("can't save receipt: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("receipt issued",
		zap.String("donationID", donationID),
		zap.String("receiptNumber", receipt.ReceiptNumber))
	return receipt, nil
}
