package donations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/service/donationservice"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

func NewMock(t *testing.T) (*DonationHandler, *MockService, *MockReceiptService, *MockActorProvider) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	service := NewMockService(ctrl)
	receipts := NewMockReceiptService(ctrl)
	actors := NewMockActorProvider(ctrl)
	handler := New(service, receipts, actors)
	return handler, service, receipts, actors
}

func authCtx(userID string) context.Context {
	return context.WithValue(context.Background(), pkgauth.UserIDKey, userID)
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

func sampleActor() *domain.User {
	return &domain.User{ID: "donor-1", Name: "Jane", Email: "jane@example.com"}
}

func sampleDetails() *donationservice.Details {
	return &donationservice.Details{
		Donation: &domain.Donation{
			ID:         "d-1",
			CampaignID: "c-1",
			DonorID:    "donor-1",
			Amount:     500,
			Currency:   "USD",
			Visibility: domain.VisibilityPublic,
			Status:     domain.DonationStatusPending,
		},
		Campaign: &domain.Campaign{ID: "c-1", Title: "Clean Water", Status: domain.CampaignStatusApproved},
		Donor:    sampleActor(),
	}
}

func TestListHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		target         string
		ctx            context.Context
		prepareMock    func()
		expectedStatus int
	}{
		{
			name:   "Success",
			target: "/api/donations?status=2&page=3&per_page=10",
			ctx:    authCtx("donor-1"),
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				status := 2
				service.EXPECT().
					List(gomock.Any(), sampleActor(), &status, 3, 10).
					Return([]donationservice.Details{*sampleDetails()}, int64(21), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "BadStatusFilter",
			target: "/api/donations?status=pending",
			ctx:    authCtx("donor-1"),
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unauthenticated",
			target:         "/api/donations",
			ctx:            context.Background(),
			prepareMock:    func() {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil).WithContext(tt.ctx)
			rr := httptest.NewRecorder()
			handler.List(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.Paginated[dto.DonationResponseDTO]
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Len(t, resp.Data, 1)
				assert.Equal(t, "d-1", resp.Data[0].ID)
				assert.Equal(t, int64(21), resp.Meta.Total)
			}
		})
	}
}

func TestListByCampaignHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					ListByCampaign(gomock.Any(), sampleActor(), "c-1", 1, dto.DefaultPerPage).
					Return([]donationservice.Details{*sampleDetails()}, int64(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "CampaignHidden",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					ListByCampaign(gomock.Any(), sampleActor(), "c-1", 1, dto.DefaultPerPage).
					Return(nil, int64(0), apperrors.Forbidden("campaign is not visible"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "CampaignNotFound",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					ListByCampaign(gomock.Any(), sampleActor(), "c-1", 1, dto.DefaultPerPage).
					Return(nil, int64(0), apperrors.NotFound("campaign not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "c-1")
			req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c-1/donations", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.ListByCampaign(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestDonateHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"amount":500,"currency":"USD","message":"Good luck"}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Donate(gomock.Any(), sampleActor(), "c-1", gomock.Any()).
					Return(sampleDetails(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "CampaignNotApproved",
			body: `{"amount":500}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Donate(gomock.Any(), sampleActor(), "c-1", gomock.Any()).
					Return(nil, apperrors.Forbidden("campaign is not accepting donations"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "ValidationFailed",
			body: `{"amount":0}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Donate(gomock.Any(), sampleActor(), "c-1", gomock.Any()).
					Return(nil, &apperrors.ValidationError{Fields: map[string][]string{"amount": {"The amount must be at least 1."}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "InvalidBody",
			body: `amount=500`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "c-1")
			req := httptest.NewRequest(http.MethodPost, "/api/campaigns/c-1/donations", bytes.NewBufferString(tt.body)).
				WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Donate(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp dto.DonationResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, int64(500), resp.Amount)
				assert.Equal(t, "c-1", resp.CampaignID)
			}
		})
	}
}

func TestCreateHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"campaign_id":"c-1","amount":500}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Create(gomock.Any(), sampleActor(), dto.StoreDonationRecordRequestDTO{
						CampaignID:              "c-1",
						StoreDonationRequestDTO: dto.StoreDonationRequestDTO{Amount: 500},
					}).
					Return(sampleDetails(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Forbidden",
			body: `{"campaign_id":"c-1","amount":500}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Create(gomock.Any(), sampleActor(), gomock.Any()).
					Return(nil, apperrors.Forbidden("missing permission"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "MissingCampaign",
			body: `{"amount":500}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Create(gomock.Any(), sampleActor(), gomock.Any()).
					Return(nil, &apperrors.ValidationError{Fields: map[string][]string{"campaign_id": {"is required"}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "InvalidBody",
			body: `{`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/donations", bytes.NewBufferString(tt.body)).
				WithContext(authCtx("donor-1"))
			rr := httptest.NewRecorder()
			handler.Create(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusCreated {
				var resp dto.DonationResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "c-1", resp.CampaignID)
			}
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().Get(gomock.Any(), sampleActor(), "d-1").Return(sampleDetails(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "AnonymousHidden",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Get(gomock.Any(), sampleActor(), "d-1").
					Return(nil, apperrors.Forbidden("donation is not visible"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "NotFound",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Get(gomock.Any(), sampleActor(), "d-1").
					Return(nil, apperrors.NotFound("donation not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "d-1")
			req := httptest.NewRequest(http.MethodGet, "/api/donations/d-1", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Get(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestGetByCampaignHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					GetByCampaign(gomock.Any(), sampleActor(), "c-1", "d-1").
					Return(sampleDetails(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "NotAttachedToCampaign",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					GetByCampaign(gomock.Any(), sampleActor(), "c-1", "d-1").
					Return(nil, apperrors.NotFound("donation"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "NotOwnDonation",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					GetByCampaign(gomock.Any(), sampleActor(), "c-1", "d-1").
					Return(nil, apperrors.Forbidden("view donation"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "c-1")
			rctx.URLParams.Add("donationID", "d-1")
			ctx := context.WithValue(authCtx("donor-1"), chi.RouteCtxKey, rctx)
			req := httptest.NewRequest(http.MethodGet, "/api/campaigns/c-1/donations/d-1", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.GetByCampaign(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.DonationResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "d-1", resp.ID)
			}
		})
	}
}

func TestUpdateHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"anonymous":true}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Update(gomock.Any(), sampleActor(), "d-1", gomock.Any()).
					Return(sampleDetails(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "StatusChangeForbidden",
			body: `{"status":3}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Update(gomock.Any(), sampleActor(), "d-1", gomock.Any()).
					Return(nil, &apperrors.ValidationError{Fields: map[string][]string{"status": {"You are not allowed to change the status."}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "InvalidBody",
			body: `{`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "d-1")
			req := httptest.NewRequest(http.MethodPut, "/api/donations/d-1", bytes.NewBufferString(tt.body)).
				WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Update(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	handler, service, _, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().Delete(gomock.Any(), sampleActor(), "d-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "Forbidden",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				service.EXPECT().
					Delete(gomock.Any(), sampleActor(), "d-1").
					Return(apperrors.Forbidden("missing permission"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "d-1")
			req := httptest.NewRequest(http.MethodDelete, "/api/donations/d-1", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Delete(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestReceiptHandler(t *testing.T) {
	handler, _, receipts, actors := NewMock(t)

	issued := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	receipt := &domain.DonationReceipt{
		ID:            "r-1",
		DonationID:    "d-1",
		ReceiptNumber: "RCPT-20260201-0a1b2c3d",
		IssuedDate:    issued,
		CreatedAt:     issued,
		UpdatedAt:     issued,
	}

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				receipts.EXPECT().GetByDonation(gomock.Any(), sampleActor(), "d-1").Return(receipt, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "NotIssuedYet",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "donor-1").Return(sampleActor(), nil)
				receipts.EXPECT().
					GetByDonation(gomock.Any(), sampleActor(), "d-1").
					Return(nil, apperrors.NotFound("receipt not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("donor-1"), "id", "d-1")
			req := httptest.NewRequest(http.MethodGet, "/api/donations/d-1/receipt", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Receipt(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.ReceiptResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "RCPT-20260201-0a1b2c3d", resp.ReceiptNumber)
			}
			if tt.expectedStatus == http.StatusNotFound {
				var resp utils.Response
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "Resource not found.", resp.Message)
			}
		})
	}
}
