package dto

import (
	"time"

	"github.com/givehub/givehub/internal/domain"
)

const dateLayout = "2006-01-02"

type StoreCampaignRequestDTO struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	GoalAmount  int64  `json:"goal_amount" validate:"required,min=1" example:"500000"`
	StartDate   string `json:"start_date" example:"2025-09-01"`
	EndDate     string `json:"end_date" example:"2025-12-31"`
	Status      *int   `json:"status,omitempty"`
}

type UpdateCampaignRequestDTO struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	GoalAmount    *int64  `json:"goal_amount,omitempty"`
	CurrentAmount *int64  `json:"current_amount,omitempty"`
	StartDate     *string `json:"start_date,omitempty"`
	EndDate       *string `json:"end_date,omitempty"`
	Status        *int    `json:"status,omitempty"`
}

type RejectCampaignRequestDTO struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type CampaignResponseDTO struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	GoalAmount     int64           `json:"goal_amount"`
	CurrentAmount  int64           `json:"current_amount"`
	StartDate      string          `json:"start_date" example:"2025-09-01"`
	EndDate        string          `json:"end_date" example:"2025-12-31"`
	Status         int             `json:"status"`
	StatusLabel    string          `json:"status_label" example:"approved"`
	CreatorID      string          `json:"creator_id"`
	ApprovedAt     *string         `json:"approved_at"`
	ApprovedBy     *string         `json:"approved_by"`
	RejectedBy     *string         `json:"rejected_by"`
	RejectedAt     *string         `json:"rejected_at"`
	RejectedReason *string         `json:"rejected_reason"`
	Creator        *UserSummaryDTO `json:"creator,omitempty"`
	Approver       *UserSummaryDTO `json:"approver,omitempty"`
	Rejector       *UserSummaryDTO `json:"rejector,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	DeletedAt      *string         `json:"deleted_at,omitempty"`
}

// CampaignSummaryDTO is the reduced campaign nested in donations.
type CampaignSummaryDTO struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	GoalAmount    int64  `json:"goal_amount"`
	CurrentAmount int64  `json:"current_amount"`
}

type DatasetDTO struct {
	Label string  `json:"label"`
	Data  []int64 `json:"data"`
}

type ChartDTO struct {
	Labels   []string     `json:"labels"`
	Datasets []DatasetDTO `json:"datasets"`
}

type CampaignStatisticsResponseDTO struct {
	TotalDonations       int64    `json:"total_donations"`
	TotalAmount          int64    `json:"total_amount"`
	UniqueDonors         int64    `json:"unique_donors"`
	AverageDonation      float64  `json:"average_donation"`
	CompletionPercentage float64  `json:"completion_percentage"`
	Statistics           ChartDTO `json:"statistics"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func NewCampaignResponse(c *domain.Campaign, creator, approver, rejector *domain.User) CampaignResponseDTO {
	return CampaignResponseDTO{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		GoalAmount:     c.GoalAmount,
		CurrentAmount:  c.CurrentAmount,
		StartDate:      c.StartDate.Format(dateLayout),
		EndDate:        c.EndDate.Format(dateLayout),
		Status:         c.Status,
		StatusLabel:    domain.CampaignStatusLabel(c.Status),
		CreatorID:      c.CreatorID,
		ApprovedAt:     formatTimePtr(c.ApprovedAt),
		ApprovedBy:     c.ApprovedBy,
		RejectedBy:     c.RejectedBy,
		RejectedAt:     formatTimePtr(c.RejectedAt),
		RejectedReason: c.RejectedReason,
		Creator:        NewUserSummary(creator),
		Approver:       NewUserSummary(approver),
		Rejector:       NewUserSummary(rejector),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
		DeletedAt:      formatTimePtr(c.DeletedAt),
	}
}

func NewCampaignSummary(c *domain.Campaign) *CampaignSummaryDTO {
	if c == nil {
		return nil
	}
	return &CampaignSummaryDTO{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		GoalAmount:    c.GoalAmount,
		CurrentAmount: c.CurrentAmount,
	}
}
