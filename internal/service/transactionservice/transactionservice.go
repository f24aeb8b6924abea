package transactionservice

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/policy"
	"github.com/givehub/givehub/pkg/validate"
)

type Repo interface {
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	Save(ctx context.Context, transaction *domain.Transaction) error
	Settle(ctx context.Context, transaction *domain.Transaction) error
	FindForProcessing(ctx context.Context, limit int) ([]domain.Transaction, error)
	List(ctx context.Context, donationID string, limit, offset int) ([]domain.Transaction, int64, error)
}

type DonationRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
}

type CampaignRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	transactionRepo Repo
	donationRepo    DonationRepo
	campaignRepo    CampaignRepo
	userRepo        UserRepo
}

func New(transactionRepo Repo, donationRepo DonationRepo, campaignRepo CampaignRepo, userRepo UserRepo) *Service {
	return &Service{
		transactionRepo: transactionRepo,
		donationRepo:    donationRepo,
		campaignRepo:    campaignRepo,
		userRepo:        userRepo,
	}
}

// Details bundles a transaction with the donation it pays for and
// that donation's related records.
type Details struct {
	Transaction *domain.Transaction
	Donation    *domain.Donation
	Campaign    *domain.Campaign
	Donor       *domain.User
}

func (s *Service) details(ctx context.Context, transaction *domain.Transaction) (*Details, error) {
	donation, err := s.donationRepo.FindByID(ctx, transaction.DonationID)
	if err != nil {
		zap.L().Error("can't load transaction donation: ", zap.Error(err))
		return nil, err
	}
	d := &Details{Transaction: transaction, Donation: donation}
	if donation != nil {
		if d.Campaign, err = s.campaignRepo.FindByID(ctx, donation.CampaignID); err != nil {
			zap.L().Error("can't load donation campaign: ", zap.Error(err))
			return nil, err
		}
		if d.Donor, err = s.userRepo.FindByID(ctx, donation.DonorID); err != nil {
			zap.L().Error("can't load donor: ", zap.Error(err))
			return nil, err
		}
	}
	return d, nil
}

// List returns the flat transaction listing, restricted to users who
// can see donations beyond their own.
func (s *Service) List(ctx context.Context, actor *domain.User, page, perPage int) ([]Details, int64, error) {
	if !policy.CanManageDonations(actor) && !actor.HasPermission(domain.PermViewDonations) {
		return nil, 0, apperrors.Forbidden("view transactions")
	}
	transactions, total, err := s.transactionRepo.List(ctx, "", perPage, (page-1)*perPage)
	if err != nil {
		zap.L().Error("can't list transactions: ", zap.Error(err))
		return nil, 0, err
	}
	return s.collectDetails(ctx, transactions, total)
}

// ListByDonation returns a donation's transactions. The donation must
// be visible to the actor.
func (s *Service) ListByDonation(ctx context.Context, actor *domain.User, donationID string, page, perPage int) ([]Details, int64, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, 0, err
	}
	if donation == nil {
		return nil, 0, apperrors.NotFound("donation")
	}
	if !policy.CanViewDonation(actor, donation) {
		return nil, 0, apperrors.Forbidden("view donation")
	}
	transactions, total, err := s.transactionRepo.List(ctx, donationID, perPage, (page-1)*perPage)
	if err != nil {
		zap.L().Error("can't list transactions: ", zap.Error(err))
		return nil, 0, err
	}
	return s.collectDetails(ctx, transactions, total)
}

func (s *Service) collectDetails(ctx context.Context, transactions []domain.Transaction, total int64) ([]Details, int64, error) {
	details := make([]Details, 0, len(transactions))
	for i := range transactions {
		d, err := s.details(ctx, &transactions[i])
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *d)
	}
	return details, total, nil
}

// Create opens a payment attempt for a pending donation owned by the
// actor. The transaction reference is generated server side.
func (s *Service) Create(ctx context.Context, actor *domain.User, donationID string, req dto.StoreTransactionRequestDTO) (*Details, error) {
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation")
	}
	if donation.DonorID != actor.ID && !policy.CanManageDonations(actor) {
		return nil, apperrors.Forbidden("pay for donation")
	}
	if donation.Status != domain.DonationStatusPending {
		return nil, apperrors.NewValidationError("donation", "The donation is not awaiting payment.")
	}

	errs := validate.New()
	errs.Required("payment_gateway", req.Gateway)
	errs.MinInt("amount", req.Amount, 1)
	if req.Amount != donation.Amount {
		errs.Add("amount", "The amount does not match the donation.")
	}
	currency := donation.Currency
	if req.Currency != nil {
		errs.Currency("currency", *req.Currency)
		currency = *req.Currency
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}

	transaction := &domain.Transaction{
		ID:             uuid.NewString(),
		DonationID:     donationID,
		Reference:      "TXN-" + uuid.NewString(),
		Gateway:        req.Gateway,
		Amount:         req.Amount,
		Currency:       currency,
		Status:         domain.TransactionStatusPending,
		RequestPayload: req.RequestPayload,
	}
	if err := s.transactionRepo.Save(ctx, transaction); err != nil {
		zap.L().Error("can't save transaction: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("transaction created",
		zap.String("transactionID", transaction.ID),
		zap.String("donationID", donationID),
		zap.String("gateway", req.Gateway))
	return s.details(ctx, transaction)
}

func (s *Service) Get(ctx context.Context, actor *domain.User, id string) (*Details, error) {
	transaction, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find transaction: ", zap.Error(err))
		return nil, err
	}
	if transaction == nil {
		return nil, apperrors.NotFound("transaction")
	}
	donation, err := s.donationRepo.FindByID(ctx, transaction.DonationID)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil || !policy.CanViewDonation(actor, donation) {
		return nil, apperrors.Forbidden("view transaction")
	}
	return s.details(ctx, transaction)
}
