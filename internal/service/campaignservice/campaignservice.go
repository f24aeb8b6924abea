package campaignservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/policy"
	campaignrepo "github.com/givehub/givehub/internal/repo/campaign-repo"
	"github.com/givehub/givehub/pkg/validate"
)

type Repo interface {
	FindByID(ctx context.Context, id string) (*domain.Campaign, error)
	Save(ctx context.Context, campaign *domain.Campaign) error
	Update(ctx context.Context, campaign *domain.Campaign) error
	SoftDelete(ctx context.Context, id string) error
	AddToCurrentAmount(ctx context.Context, id string, amount int64) error
	List(ctx context.Context, filter campaignrepo.ListFilter) ([]domain.Campaign, int64, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

type StatsRepo interface {
	DailyStatistics(ctx context.Context, campaignID string) ([]domain.DailyStat, error)
	Summary(ctx context.Context, campaignID string) (*domain.DonationSummary, error)
}

type Service struct {
	campaignRepo Repo
	userRepo     UserRepo
	statsRepo    StatsRepo
}

func New(campaignRepo Repo, userRepo UserRepo, statsRepo StatsRepo) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		statsRepo:    statsRepo,
	}
}

// Details bundles a campaign with the users its response embeds.
type Details struct {
	Campaign *domain.Campaign
	Creator  *domain.User
	Approver *domain.User
	Rejector *domain.User
}

const dateLayout = "2006-01-02"

func parseDate(field, value string, errs validate.Errors) time.Time {
	if value == "" {
		errs.Add(field, "The "+field+" field is required.")
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		errs.Add(field, "The "+field+" is not a valid date.")
		return time.Time{}
	}
	return t
}

func (s *Service) loadUser(ctx context.Context, id *string) *domain.User {
	if id == nil {
		return nil
	}
	user, err := s.userRepo.FindByID(ctx, *id)
	if err != nil {
		zap.L().Warn("can't load related user", zap.Error(err))
		return nil
	}
	return user
}

func (s *Service) details(ctx context.Context, campaign *domain.Campaign) (*Details, error) {
	creator, err := s.userRepo.FindByID(ctx, campaign.CreatorID)
	if err != nil {
		zap.L().Error("can't load campaign creator: ", zap.Error(err))
		return nil, err
	}
	return &Details{
		Campaign: campaign,
		Creator:  creator,
		Approver: s.loadUser(ctx, campaign.ApprovedBy),
		Rejector: s.loadUser(ctx, campaign.RejectedBy),
	}, nil
}

func (s *Service) List(ctx context.Context, actor *domain.User, status *int, search string, page, perPage int) ([]Details, int64, error) {
	filter := campaignrepo.ListFilter{
		Status: status,
		Search: search,
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if !policy.CanModerateCampaigns(actor) {
		filter.VisibleTo = actor.ID
	}
	campaigns, total, err := s.campaignRepo.List(ctx, filter)
	if err != nil {
		zap.L().Error("can't list campaigns: ", zap.Error(err))
		return nil, 0, err
	}
	details := make([]Details, 0, len(campaigns))
	for i := range campaigns {
		d, err := s.details(ctx, &campaigns[i])
		if err != nil {
			return nil, 0, err
		}
		details = append(details, *d)
	}
	return details, total, nil
}

func (s *Service) Create(ctx context.Context, actor *domain.User, req dto.StoreCampaignRequestDTO) (*Details, error) {
	errs := validate.New()
	errs.Required("title", req.Title)
	errs.MaxLen("title", req.Title, 255)
	errs.Required("description", req.Description)
	errs.MinInt("goal_amount", req.GoalAmount, 1)
	startDate := parseDate("start_date", req.StartDate, errs)
	endDate := parseDate("end_date", req.EndDate, errs)
	if !startDate.IsZero() && !endDate.IsZero() {
		errs.DateOrder("end_date", startDate, endDate)
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}

	status := domain.CampaignStatusDraft
	if req.Status != nil {
		// Only moderators choose an initial status, and never an
		// approved or rejected one.
		if !policy.CanModerateCampaigns(actor) {
			return nil, apperrors.NewValidationError("status", "The selected status is invalid.")
		}
		if *req.Status != domain.CampaignStatusDraft && *req.Status != domain.CampaignStatusPending {
			return nil, apperrors.NewValidationError("status", "The selected status is invalid.")
		}
		status = *req.Status
	}

	campaign := &domain.Campaign{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      status,
		CreatorID:   actor.ID,
	}
	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		zap.L().Error("can't save campaign: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("campaign created", zap.String("campaignID", campaign.ID))
	return s.details(ctx, campaign)
}

func (s *Service) Get(ctx context.Context, actor *domain.User, id string) (*Details, error) {
	campaign, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, campaign)
}

func (s *Service) findVisible(ctx context.Context, actor *domain.User, id string) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	if !policy.CanViewCampaign(actor, campaign) {
		return nil, apperrors.Forbidden("view campaign")
	}
	return campaign, nil
}

func (s *Service) Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateCampaignRequestDTO) (*Details, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	if !policy.CanModifyCampaign(actor, campaign) {
		return nil, apperrors.Forbidden("update campaign")
	}

	errs := validate.New()
	if req.Title != nil {
		errs.Required("title", *req.Title)
		errs.MaxLen("title", *req.Title, 255)
		campaign.Title = *req.Title
	}
	if req.Description != nil {
		errs.Required("description", *req.Description)
		campaign.Description = *req.Description
	}
	if req.GoalAmount != nil {
		errs.MinInt("goal_amount", *req.GoalAmount, 1)
		campaign.GoalAmount = *req.GoalAmount
	}
	if req.CurrentAmount != nil {
		if !policy.CanModerateCampaigns(actor) {
			return nil, apperrors.Forbidden("adjust raised amount")
		}
		errs.MinInt("current_amount", *req.CurrentAmount, 0)
		campaign.CurrentAmount = *req.CurrentAmount
	}
	if req.StartDate != nil {
		campaign.StartDate = parseDate("start_date", *req.StartDate, errs)
	}
	if req.EndDate != nil {
		campaign.EndDate = parseDate("end_date", *req.EndDate, errs)
	}
	if !campaign.StartDate.IsZero() && !campaign.EndDate.IsZero() {
		errs.DateOrder("end_date", campaign.StartDate, campaign.EndDate)
	}
	if req.Status != nil {
		if !policy.CanModerateCampaigns(actor) {
			return nil, apperrors.NewValidationError("status", "The selected status is invalid.")
		}
		if !domain.ValidCampaignStatus(*req.Status) {
			errs.Add("status", "The selected status is invalid.")
		} else {
			campaign.Status = *req.Status
		}
	}
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		zap.L().Error("can't update campaign: ", zap.Error(err))
		return nil, err
	}
	return s.details(ctx, campaign)
}

func (s *Service) Delete(ctx context.Context, actor *domain.User, id string) error {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return err
	}
	if campaign == nil {
		return apperrors.NotFound("campaign")
	}
	if !policy.CanDeleteCampaign(actor, campaign) {
		return apperrors.Forbidden("delete campaign")
	}
	if err := s.campaignRepo.SoftDelete(ctx, id); err != nil {
		zap.L().Error("can't delete campaign: ", zap.Error(err))
		return err
	}
	zap.L().Info("campaign deleted", zap.String("campaignID", id))
	return nil
}

// Approve moves a campaign into the approved state and clears any
// earlier rejection. Approving an approved campaign is a no-op.
func (s *Service) Approve(ctx context.Context, actor *domain.User, id string) (*Details, error) {
	if !policy.CanModerateCampaigns(actor) {
		return nil, apperrors.Forbidden("approve campaign")
	}
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	if campaign.Status != domain.CampaignStatusApproved {
		now := time.Now()
		campaign.Status = domain.CampaignStatusApproved
		campaign.ApprovedAt = &now
		campaign.ApprovedBy = &actor.ID
		campaign.RejectedAt = nil
		campaign.RejectedBy = nil
		campaign.RejectedReason = nil
		if err := s.campaignRepo.Update(ctx, campaign); err != nil {
			zap.L().Error("can't approve campaign: ", zap.Error(err))
			return nil, err
		}
		zap.L().Info("campaign approved", zap.String("campaignID", id), zap.String("approvedBy", actor.ID))
	}
	return s.details(ctx, campaign)
}

// Reject moves a campaign into the rejected state with a reason and
// clears any earlier approval.
func (s *Service) Reject(ctx context.Context, actor *domain.User, id, reason string) (*Details, error) {
	if !policy.CanModerateCampaigns(actor) {
		return nil, apperrors.Forbidden("reject campaign")
	}
	errs := validate.New()
	errs.Required("reason", reason)
	errs.MaxLen("reason", reason, 1000)
	if !errs.Empty() {
		return nil, &apperrors.ValidationError{Fields: errs}
	}
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	now := time.Now()
	campaign.Status = domain.CampaignStatusRejected
	campaign.RejectedAt = &now
	campaign.RejectedBy = &actor.ID
	campaign.RejectedReason = &reason
	campaign.ApprovedAt = nil
	campaign.ApprovedBy = nil
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		zap.L().Error("can't reject campaign: ", zap.Error(err))
		return nil, err
	}
	zap.L().Info("campaign rejected", zap.String("campaignID", id), zap.String("rejectedBy", actor.ID))
	return s.details(ctx, campaign)
}

// Statistics builds the daily donation chart and derived metrics for
// a campaign. Moderator-only; creators without a campaign management
// permission do not see statistics even for their own campaigns. Days
// with no completed donations are absent from the chart.
func (s *Service) Statistics(ctx context.Context, actor *domain.User, id string) (*dto.CampaignStatisticsResponseDTO, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		zap.L().Error("can't find campaign: ", zap.Error(err))
		return nil, err
	}
	if campaign == nil {
		return nil, apperrors.NotFound("campaign")
	}
	if !policy.CanModerateCampaigns(actor) {
		return nil, apperrors.Forbidden("view campaign statistics")
	}
	daily, err := s.statsRepo.DailyStatistics(ctx, id)
	if err != nil {
		zap.L().Error("can't load daily statistics: ", zap.Error(err))
		return nil, err
	}
	summary, err := s.statsRepo.Summary(ctx, id)
	if err != nil {
		zap.L().Error("can't load donation summary: ", zap.Error(err))
		return nil, err
	}

	labels := make([]string, 0, len(daily))
	quantities := make([]int64, 0, len(daily))
	amounts := make([]int64, 0, len(daily))
	for _, d := range daily {
		labels = append(labels, d.Date)
		quantities = append(quantities, d.Quantity)
		amounts = append(amounts, d.Amount)
	}

	if summary.CompletedDonations > 0 {
		summary.AverageDonation = float64(summary.TotalAmount) / float64(summary.CompletedDonations)
	}
	completion := 0.0
	if campaign.GoalAmount > 0 {
		completion = float64(campaign.CurrentAmount) / float64(campaign.GoalAmount) * 100
	}

	return &dto.CampaignStatisticsResponseDTO{
		Statistics: dto.ChartDTO{
			Labels: labels,
			Datasets: []dto.DatasetDTO{
				{Label: "Daily Quantity", Data: quantities},
				{Label: "Daily Amount", Data: amounts},
			},
		},
		TotalDonations:       summary.TotalDonations,
		TotalAmount:          summary.TotalAmount,
		UniqueDonors:         summary.UniqueDonors,
		AverageDonation:      summary.AverageDonation,
		CompletionPercentage: completion,
	}, nil
}
