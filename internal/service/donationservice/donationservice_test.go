package donationservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	donationrepo "github.com/givehub/givehub/internal/repo/donation-repo"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockCampaignRepo, *MockUserRepo) {
	ctrl := gomock.NewController(t)
	donationRepo := NewMockRepo(ctrl)
	campaignRepo := NewMockCampaignRepo(ctrl)
	userRepo := NewMockUserRepo(ctrl)

	service := New(donationRepo, campaignRepo, userRepo)
	defer ctrl.Finish()
	return service, donationRepo, campaignRepo, userRepo
}

func manager() *domain.User {
	return &domain.User{ID: "mgr-1", Permissions: []string{domain.PermManageDonations}}
}

func donor() *domain.User {
	return &domain.User{ID: "donor-1", Name: "Donor"}
}

func approvedCampaign() *domain.Campaign {
	return &domain.Campaign{ID: "c-1", Status: domain.CampaignStatusApproved, CreatorID: "creator-1"}
}

func pendingDonation() *domain.Donation {
	return &domain.Donation{
		ID:         "d-1",
		CampaignID: "c-1",
		DonorID:    "donor-1",
		Amount:     1000,
		Currency:   "USD",
		Status:     domain.DonationStatusPending,
		Visibility: domain.VisibilityPublic,
	}
}

func TestList(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	t.Run("Manager sees everything", func(t *testing.T) {
		donationRepo.EXPECT().List(context.Background(), donationrepo.ListFilter{Limit: 15}).
			Return([]domain.Donation{*pendingDonation()}, int64(1), nil)
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)

		_, total, err := service.List(context.Background(), manager(), nil, 1, 15)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("Viewer permission is enough", func(t *testing.T) {
		donationRepo.EXPECT().List(context.Background(), donationrepo.ListFilter{Limit: 15}).
			Return([]domain.Donation{}, int64(0), nil)

		viewer := &domain.User{ID: "aud-1", Permissions: []string{domain.PermViewDonations}}
		_, _, err := service.List(context.Background(), viewer, nil, 1, 15)
		assert.NoError(t, err)
	})

	t.Run("Regular user is refused", func(t *testing.T) {
		_, _, err := service.List(context.Background(), donor(), nil, 1, 15)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Repository error", func(t *testing.T) {
		donationRepo.EXPECT().List(context.Background(), gomock.Any()).Return(nil, int64(0), errors.New("database error"))

		_, _, err := service.List(context.Background(), manager(), nil, 1, 15)
		assert.EqualError(t, err, "database error")
	})
}

func TestListByCampaign(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	t.Run("Manager sees all campaign donations", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		donationRepo.EXPECT().List(context.Background(), donationrepo.ListFilter{CampaignID: "c-1", Limit: 15}).
			Return([]domain.Donation{*pendingDonation()}, int64(1), nil)
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)

		details, total, err := service.ListByCampaign(context.Background(), manager(), "c-1", 1, 15)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, details, 1)
	})

	t.Run("Regular user only sees own donations", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		donationRepo.EXPECT().
			List(context.Background(), gomock.Any()).
			DoAndReturn(func(_ context.Context, filter donationrepo.ListFilter) ([]domain.Donation, int64, error) {
				assert.Equal(t, "stranger-1", filter.VisibleTo)
				assert.Equal(t, "c-1", filter.CampaignID)
				return nil, 0, nil
			})

		_, _, err := service.ListByCampaign(context.Background(), &domain.User{ID: "stranger-1"}, "c-1", 1, 15)
		assert.NoError(t, err)
	})

	t.Run("Hidden campaign", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "c-2").Return(&domain.Campaign{
			ID: "c-2", Status: domain.CampaignStatusDraft, CreatorID: "creator-1",
		}, nil)

		_, _, err := service.ListByCampaign(context.Background(), donor(), "c-2", 1, 15)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Campaign not found", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)

		_, _, err := service.ListByCampaign(context.Background(), donor(), "missing", 1, 15)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDonate(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	badCurrency := "DOLLARS"
	badVisibility := 9
	anonymous := domain.VisibilityAnonymous

	tests := []struct {
		name          string
		campaignID    string
		req           dto.StoreDonationRequestDTO
		prepareMock   func()
		check         func(t *testing.T, d *Details)
		expectedError error
	}{
		{
			name:       "Donation starts pending with default currency",
			campaignID: "c-1",
			req:        dto.StoreDonationRequestDTO{Amount: 1000},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				donationRepo.EXPECT().Save(context.Background(), gomock.Any()).Return(nil)
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)
			},
			check: func(t *testing.T, d *Details) {
				assert.Equal(t, domain.DonationStatusPending, d.Donation.Status)
				assert.Equal(t, "USD", d.Donation.Currency)
				assert.Equal(t, domain.VisibilityPublic, d.Donation.Visibility)
				assert.Equal(t, "donor-1", d.Donation.DonorID)
			},
		},
		{
			name:       "Anonymous visibility kept",
			campaignID: "c-1",
			req:        dto.StoreDonationRequestDTO{Amount: 500, Visibility: &anonymous},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				donationRepo.EXPECT().Save(context.Background(), gomock.Any()).Return(nil)
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)
			},
			check: func(t *testing.T, d *Details) {
				assert.Equal(t, domain.VisibilityAnonymous, d.Donation.Visibility)
			},
		},
		{
			name:       "Campaign not approved",
			campaignID: "c-2",
			req:        dto.StoreDonationRequestDTO{Amount: 1000},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-2").Return(&domain.Campaign{
					ID: "c-2", Status: domain.CampaignStatusPending,
				}, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:       "Campaign not found",
			campaignID: "missing",
			req:        dto.StoreDonationRequestDTO{Amount: 1000},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name:       "Zero amount",
			campaignID: "c-1",
			req:        dto.StoreDonationRequestDTO{},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
			},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name:       "Malformed currency",
			campaignID: "c-1",
			req:        dto.StoreDonationRequestDTO{Amount: 1000, Currency: &badCurrency},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
			},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name:       "Unknown visibility",
			campaignID: "c-1",
			req:        dto.StoreDonationRequestDTO{Amount: 1000, Visibility: &badVisibility},
			prepareMock: func() {
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
			},
			expectedError: &apperrors.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			details, err := service.Donate(context.Background(), donor(), tt.campaignID, tt.req)
			switch expected := tt.expectedError.(type) {
			case nil:
				assert.NoError(t, err)
				tt.check(t, details)
			case *apperrors.ValidationError:
				var vErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &vErr)
			default:
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	t.Run("Manager records a donation on any campaign", func(t *testing.T) {
		draft := &domain.Campaign{ID: "c-3", Status: domain.CampaignStatusDraft, CreatorID: "creator-1"}
		campaignRepo.EXPECT().FindByID(context.Background(), "c-3").Return(draft, nil)
		donationRepo.EXPECT().Save(context.Background(), gomock.Any()).DoAndReturn(func(_ context.Context, d *domain.Donation) error {
			assert.Equal(t, "c-3", d.CampaignID)
			assert.Equal(t, "mgr-1", d.DonorID)
			assert.Equal(t, domain.DonationStatusPending, d.Status)
			return nil
		})
		campaignRepo.EXPECT().FindByID(context.Background(), "c-3").Return(draft, nil)
		userRepo.EXPECT().FindByID(context.Background(), "mgr-1").Return(manager(), nil)

		details, err := service.Create(context.Background(), manager(), dto.StoreDonationRecordRequestDTO{
			CampaignID:              "c-3",
			StoreDonationRequestDTO: dto.StoreDonationRequestDTO{Amount: 750},
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(750), details.Donation.Amount)
	})

	t.Run("Regular user may not use the flat create", func(t *testing.T) {
		_, err := service.Create(context.Background(), donor(), dto.StoreDonationRecordRequestDTO{
			CampaignID:              "c-1",
			StoreDonationRequestDTO: dto.StoreDonationRequestDTO{Amount: 750},
		})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Campaign id is required", func(t *testing.T) {
		_, err := service.Create(context.Background(), manager(), dto.StoreDonationRecordRequestDTO{
			StoreDonationRequestDTO: dto.StoreDonationRequestDTO{Amount: 750},
		})
		var vErr *apperrors.ValidationError
		assert.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Fields, "campaign_id")
	})

	t.Run("Campaign not found", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)

		_, err := service.Create(context.Background(), manager(), dto.StoreDonationRecordRequestDTO{
			CampaignID:              "missing",
			StoreDonationRequestDTO: dto.StoreDonationRequestDTO{Amount: 750},
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestGetByCampaign(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	t.Run("Donor reads own donation through the campaign", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)
		userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)

		details, err := service.GetByCampaign(context.Background(), donor(), "c-1", "d-1")
		assert.NoError(t, err)
		assert.Equal(t, "d-1", details.Donation.ID)
	})

	t.Run("Donation of another campaign reads as missing", func(t *testing.T) {
		other := &domain.Campaign{ID: "c-2", Status: domain.CampaignStatusApproved, CreatorID: "creator-2"}
		campaignRepo.EXPECT().FindByID(context.Background(), "c-2").Return(other, nil)
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)

		_, err := service.GetByCampaign(context.Background(), manager(), "c-2", "d-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Stranger may not read another donor's donation", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)

		_, err := service.GetByCampaign(context.Background(), &domain.User{ID: "stranger-1"}, "c-1", "d-1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Campaign not found", func(t *testing.T) {
		campaignRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)

		_, err := service.GetByCampaign(context.Background(), donor(), "missing", "d-1")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestGet(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	t.Run("Donor sees own donation", func(t *testing.T) {
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)

		details, err := service.Get(context.Background(), donor(), "d-1")
		assert.NoError(t, err)
		assert.Equal(t, "d-1", details.Donation.ID)
	})

	t.Run("Stranger may see a public donation", func(t *testing.T) {
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)
		campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
		userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)

		_, err := service.Get(context.Background(), &domain.User{ID: "someone"}, "d-1")
		assert.NoError(t, err)
	})

	t.Run("Stranger may not see an anonymous donation", func(t *testing.T) {
		d := pendingDonation()
		d.Visibility = domain.VisibilityAnonymous
		donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)

		_, err := service.Get(context.Background(), &domain.User{ID: "someone"}, "d-1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Donation not found", func(t *testing.T) {
		donationRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)

		_, err := service.Get(context.Background(), donor(), "missing")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	service, donationRepo, campaignRepo, userRepo := NewMock(t)

	anonymous := true
	completed := domain.DonationStatusCompleted
	badStatus := 42

	tests := []struct {
		name          string
		actor         *domain.User
		req           dto.UpdateDonationRequestDTO
		donation      *domain.Donation
		prepareMock   func(d *domain.Donation)
		check         func(t *testing.T, d *Details)
		expectedError error
	}{
		{
			name:     "Donor toggles anonymity while pending",
			actor:    donor(),
			req:      dto.UpdateDonationRequestDTO{Anonymous: &anonymous},
			donation: pendingDonation(),
			prepareMock: func(d *domain.Donation) {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)
				donationRepo.EXPECT().Update(context.Background(), gomock.Any()).Return(nil)
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)
			},
			check: func(t *testing.T, d *Details) {
				assert.True(t, d.Donation.Anonymous)
			},
		},
		{
			name:  "Donor may not edit a completed donation",
			actor: donor(),
			req:   dto.UpdateDonationRequestDTO{Anonymous: &anonymous},
			donation: func() *domain.Donation {
				d := pendingDonation()
				d.Status = domain.DonationStatusCompleted
				return d
			}(),
			prepareMock: func(d *domain.Donation) {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:     "Donor may not force a status",
			actor:    donor(),
			req:      dto.UpdateDonationRequestDTO{Status: &completed},
			donation: pendingDonation(),
			prepareMock: func(d *domain.Donation) {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)
			},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name:     "Manager forces a status",
			actor:    manager(),
			req:      dto.UpdateDonationRequestDTO{Status: &completed},
			donation: pendingDonation(),
			prepareMock: func(d *domain.Donation) {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)
				donationRepo.EXPECT().Update(context.Background(), gomock.Any()).Return(nil)
				campaignRepo.EXPECT().FindByID(context.Background(), "c-1").Return(approvedCampaign(), nil)
				userRepo.EXPECT().FindByID(context.Background(), "donor-1").Return(donor(), nil)
			},
			check: func(t *testing.T, d *Details) {
				assert.Equal(t, domain.DonationStatusCompleted, d.Donation.Status)
			},
		},
		{
			name:     "Unknown status rejected",
			actor:    manager(),
			req:      dto.UpdateDonationRequestDTO{Status: &badStatus},
			donation: pendingDonation(),
			prepareMock: func(d *domain.Donation) {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(d, nil)
			},
			expectedError: &apperrors.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock(tt.donation)

			details, err := service.Update(context.Background(), tt.actor, "d-1", tt.req)
			switch expected := tt.expectedError.(type) {
			case nil:
				assert.NoError(t, err)
				tt.check(t, details)
			case *apperrors.ValidationError:
				var vErr *apperrors.ValidationError
				assert.ErrorAs(t, err, &vErr)
			default:
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	service, donationRepo, _, _ := NewMock(t)

	tests := []struct {
		name          string
		actor         *domain.User
		id            string
		prepareMock   func()
		expectedError error
	}{
		{
			name:  "Manager deletes a donation",
			actor: manager(),
			id:    "d-1",
			prepareMock: func() {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)
				donationRepo.EXPECT().Delete(context.Background(), "d-1").Return(nil)
			},
		},
		{
			name:  "Donor may not delete own donation",
			actor: donor(),
			id:    "d-1",
			prepareMock: func() {
				donationRepo.EXPECT().FindByID(context.Background(), "d-1").Return(pendingDonation(), nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:  "Donation not found",
			actor: manager(),
			id:    "missing",
			prepareMock: func() {
				donationRepo.EXPECT().FindByID(context.Background(), "missing").Return(nil, nil)
			},
			expectedError: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			err := service.Delete(context.Background(), tt.actor, tt.id)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
