package dto

import (
	"time"

	"github.com/givehub/givehub/internal/domain"
)

type StoreDonationRequestDTO struct {
	Amount     int64   `json:"amount" validate:"required,min=1" example:"2500"`
	Currency   *string `json:"currency,omitempty" example:"USD"`
	Anonymous  bool    `json:"anonymous"`
	Message    *string `json:"message,omitempty"`
	Visibility *int    `json:"visibility,omitempty"`
}

// StoreDonationRecordRequestDTO is the flat, manager-only create
// body. Unlike a campaign donation it names the target campaign.
type StoreDonationRecordRequestDTO struct {
	CampaignID string `json:"campaign_id" validate:"required" example:"9b2e..."`
	StoreDonationRequestDTO
}

type UpdateDonationRequestDTO struct {
	Anonymous  *bool   `json:"anonymous,omitempty"`
	Message    *string `json:"message,omitempty"`
	Visibility *int    `json:"visibility,omitempty"`
	Status     *int    `json:"status,omitempty"`
}

// DonorSummaryDTO never carries the donor's email; listings are
// consumed by other donors.
type DonorSummaryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DonationResponseDTO struct {
	ID              string              `json:"id"`
	CampaignID      string              `json:"campaign_id"`
	DonorID         string              `json:"donor_id"`
	Amount          int64               `json:"amount"`
	Currency        string              `json:"currency"`
	Anonymous       bool                `json:"anonymous"`
	Message         *string             `json:"message"`
	Visibility      int                 `json:"visibility"`
	VisibilityLabel string              `json:"visibility_label" example:"public"`
	Status          int                 `json:"status"`
	StatusLabel     string              `json:"status_label" example:"pending"`
	Campaign        *CampaignSummaryDTO `json:"campaign,omitempty"`
	Donor           *DonorSummaryDTO    `json:"donor,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

// NewDonationResponse shapes a donation. The donor block is included
// only for public, non-anonymous donations.
func NewDonationResponse(d *domain.Donation, campaign *domain.Campaign, donor *domain.User) DonationResponseDTO {
	resp := DonationResponseDTO{
		ID:              d.ID,
		CampaignID:      d.CampaignID,
		DonorID:         d.DonorID,
		Amount:          d.Amount,
		Currency:        d.Currency,
		Anonymous:       d.Anonymous,
		Message:         d.Message,
		Visibility:      d.Visibility,
		VisibilityLabel: domain.VisibilityLabel(d.Visibility),
		Status:          d.Status,
		StatusLabel:     domain.DonationStatusLabel(d.Status),
		Campaign:        NewCampaignSummary(campaign),
		CreatedAt:       d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       d.UpdatedAt.Format(time.RFC3339),
	}
	if donor != nil && !d.Anonymous && d.Visibility == domain.VisibilityPublic {
		resp.Donor = &DonorSummaryDTO{ID: donor.ID, Name: donor.Name}
	}
	return resp
}
