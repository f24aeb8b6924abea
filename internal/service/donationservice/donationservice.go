package donationservice

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/policy"
	donationrepo "github.com/givehub/givehub/internal/repo/donation-repo"
	"github.com/givehub/givehub/pkg/validate"
)

type Repo interface {
	FindByID(ctx context.Context, id string) (*domain.Donation, error)
	Save(ctx context.Context, donation *domain.Donation) error
	Update(ctx context.Context, donation *domain.Donation) error
	MarkStatus(ctx context.Context, id string, status int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter donationrepo.ListFilter) ([]domain.Donation, int64, error)
	DailyStatistics(ctx context.Context, campaignID string) ([]domain.DailyStat, error)
	Summary(ctx context.Context, campaignID string) (*domain.DonationSummary, error)
}

type CampaignRepo interface {
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type Service struct {
	donationRepo Repo
	campaignRepo CampaignRepo
	userRepo     UserRepo
}

func New(donationRepo Repo, campaignRepo CampaignRepo, userRepo UserRepo) *Service {
	return &Service{
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
	}
}

// Details bundles a donation with the campaign it targets and, when
// disclosure rules allow, the donor.
type Details struct {
	Donation *domain.Donation
	Campaign *domain.Campaign
	Donor    *domain.User
}

const defaultCurrency = "USD"

func (s *Service) details(ctx context.Context, donation *domain.Donation) (*Details, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, donation.CampaignID)
	if err != nil {
		zap.L().Error("can't load donation campaign: ", zap.Error(err))
		return nil, err
	}
	donor, err := s.userRepo.FindByID(ctx, donation.DonorID)
	if err != nil {
		zap.L().Error("can't load donor: ", zap.Error(err))
		return nil, err
	}
	return &Details{Donation: donation, Campaign: campaign, Donor: donor}, nil
}

func (s *Service) collectDetails(ctx context.Context, donations []domain.Donation) ([]Details, error) {
	details := make([]Details, 0, len(donations))
	for i := range donations {
		d, err := s.details(ctx, &donations[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// List returns the flat donation listing. The flat resource is for
// donation managers; everyone else is refused outright and reaches
// their own donations through the campaign routes.
func (s *Service) List(ctx context.Context, actor *domain.User, status *int, page, perPage int) ([]Details, int64, error) {
	if !policy.CanManageDonations(actor) && !actor.HasPermission(domain.PermViewDonations) {
		return nil, 0, apperrors.Forbidden("view all donations")
	}
	filter := donationrepo.ListFilter{
		Status: status,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	donations, total, err := s.donationRepo.List(ctx, filter)
	if err != nil {
		zap.L().Error("can't list donations: ", zap.Error(err))
		return nil, 0, err
	}
	details, err := s.collectDetails(ctx, donations)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// ListByCampaign returns a campaign's donations. The campaign must be
// visible to the actor; without a donation management permission only
// the actor's own donations are returned.
func (s *Service) ListByCampaign(ctx context.Context, actor *domain.User, campaignID string, page, perPage int) ([]Details, int64, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, 0, err
	}
	if campaign == nil {
		return nil, 0, apperrors.NotFound("campaign")
	}
	if !policy.CanViewCampaign(actor, campaign) {
		return nil, 0, apperrors.Forbidden("view campaign")
	}
	filter := donationrepo.ListFilter{
		CampaignID: campaignID,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}
	if !policy.CanManageDonations(actor) && !actor.HasPermission(domain.PermViewDonations) {
		filter.VisibleTo = actor.ID
	}
	donations, total, err := s.donationRepo.List(ctx, filter)
	if err != nil {
		zap.L().Error("can't list donations: ", zap.Error(err))
		return nil, 0, err
	}
	details, err := s.collectDetails(ctx, donations)
	if err != nil {
		return nil, 0, err
	}
	return details, total, nil
}

// buildDonation validates the shared create fields and assembles a
// pending donation. Extra field errors may already sit in errs.
func buildDonation(errs validate.Errors, donorID, campaignID string, req dto.StoreDonationRequestDTO) (*domain.Donation, error) {
	errs.MinInt("amount", req.Amount, 1)
	currency := defaultCurrency
	if req.Currency != nil {
		errs.Currency("currency", *req.Currency)
		currency = *req.Currency
	}
	visibility := domain.VisibilityPublic
	if req.Visibility != nil {
		errs.OneOf("visibility", *req.Visibility, domain.VisibilityPublic, domain.VisibilityAnonymous)
		visibility = *req.Visibility
	}
	if req.Message != nil {
		errs.MaxLen("message", *req.Message, 1000)
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}
	return &domain.Donation{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     req.Amount,
		Currency:   currency,
		Status:     domain.DonationStatusPending,
		Anonymous:  req.Anonymous,
		Message:    req.Message,
		Visibility: visibility,
	}, nil
}

// Donate records a donation against an approved campaign. The
// donation always starts pending regardless of the request.
func (s *Service) Donate(ctx context.Context, actor *domain.User, campaignID string, req dto.StoreDonationRequestDTO) (*Details, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	if !policy.CanDonate(campaign) {
		return nil, apperrors.Forbidden("donate to campaign")
	}

	donation, err := buildDonation(validate.New(), actor.ID, campaignID, req)
	if err != nil {
		return nil, err
	}
	if err := s.donationRepo.Save(ctx, donation); err != nil {
		zap.L().Error("can't save donation: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("donation created",
		zap.String("donationID", donation.ID),
		zap.String("campaignID", campaignID))
	return s.details(ctx, donation)
}

// Create is the flat, manager-only create. The body names the target
// campaign; the actor is recorded as the donor. No approved-campaign
// requirement here, managers may backfill records on any campaign.
func (s *Service) Create(ctx context.Context, actor *domain.User, req dto.StoreDonationRecordRequestDTO) (*Details, error) {
	if !policy.CanManageDonations(actor) {
		return nil, apperrors.Forbidden("create donations")
	}

	errs := validate.New()
	errs.Required("campaign_id", req.CampaignID)
	donation, err := buildDonation(errs, actor.ID, req.CampaignID, req.StoreDonationRequestDTO)
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.FindByID(ctx, req.CampaignID)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}

	if err := s.donationRepo.Save(ctx, donation); err != nil {
		zap.L().Error("can't save donation: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("donation recorded",
		zap.String("donationID", donation.ID),
		zap.String("campaignID", req.CampaignID),
		zap.String("recordedBy", actor.ID))
	return s.details(ctx, donation)
}

// GetByCampaign resolves a donation through its campaign. A donation
// attached to a different campaign reads as missing; visibility does
// not open another donor's record here.
func (s *Service) GetByCampaign(ctx context.Context, actor *domain.User, campaignID, donationID string) (*Details, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	donation, err := s.donationRepo.FindByID(ctx, donationID)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil || donation.CampaignID != campaign.ID {
		return nil, apperrors.NotFound("donation")
	}
	if !policy.CanViewCampaignDonation(actor, donation) {
		return nil, apperrors.Forbidden("view donation")
	}
	donor, err := s.userRepo.FindByID(ctx, donation.DonorID)
	if err != nil {
		zap.L().Error("can't load donor: ", zap.Error(err))
		return nil, err
	}
	return &Details{Donation: donation, Campaign: campaign, Donor: donor}, nil
}

func (s *Service) Get(ctx context.Context, actor *domain.User, id string) (*Details, error) {
	donation, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation")
	}
	if !policy.CanViewDonation(actor, donation) {
		return nil, apperrors.Forbidden("view donation")
	}
	return s.details(ctx, donation)
}

func (s *Service) Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateDonationRequestDTO) (*Details, error) {
	donation, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return nil, err
	}
	if donation == nil {
		return nil, apperrors.NotFound("donation")
	}
	if !policy.CanModifyDonation(actor, donation) {
		return nil, apperrors.Forbidden("update donation")
	}

	errs := validate.New()
	if req.Anonymous != nil {
		donation.Anonymous = *req.Anonymous
	}
	if req.Message != nil {
		errs.MaxLen("message", *req.Message, 1000)
		donation.Message = req.Message
	}
	if req.Visibility != nil {
		errs.OneOf("visibility", *req.Visibility, domain.VisibilityPublic, domain.VisibilityAnonymous)
		donation.Visibility = *req.Visibility
	}
	if req.Status != nil {
		// Status transitions belong to payment processing; only
		// donation managers may force one.
		if !policy.CanManageDonations(actor) {
			return nil, apperrors.NewValidationError("status", "The selected status is invalid.")
		}
		if !domain.ValidDonationStatus(*req.Status) {
			errs.Add("status", "The selected status is invalid.")
		} else {
			donation.Status = *req.Status
		}
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}

	if err := s.donationRepo.Update(ctx, donation); err != nil {
		zap.L().Error("can't update donation: ", zap.Error(err))
		return nil, err
	}
	return s.details(ctx, donation)
}

func (s *Service) Delete(ctx context.Context, actor *domain.User, id string) error {
	donation, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find donation: ", zap.Error(err))
		return err
	}
	if donation == nil {
		return apperrors.NotFound("donation")
	}
	if !policy.CanDeleteDonation(actor) {
		return apperrors.Forbidden("delete donation")
	}
	if err := s.donationRepo.Delete(ctx, id); err != nil {
		zap.L().Error("can't delete donation: ", zap.Error(err))
		return err
	}
	zap.L().Info("donation deleted", zap.String("donationID", id))
	return nil
}
