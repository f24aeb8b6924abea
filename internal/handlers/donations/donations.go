package donations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/service/donationservice"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

type Service interface {
	List(ctx context.Context, actor *domain.User, status *int, page, perPage int) ([]donationservice.Details, int64, error)
	ListByCampaign(ctx context.Context, actor *domain.User, campaignID string, page, perPage int) ([]donationservice.Details, int64, error)
	Donate(ctx context.Context, actor *domain.User, campaignID string, req dto.StoreDonationRequestDTO) (*donationservice.Details, error)
	Create(ctx context.Context, actor *domain.User, req dto.StoreDonationRecordRequestDTO) (*donationservice.Details, error)
	Get(ctx context.Context, actor *domain.User, id string) (*donationservice.Details, error)
	GetByCampaign(ctx context.Context, actor *domain.User, campaignID, donationID string) (*donationservice.Details, error)
	Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateDonationRequestDTO) (*donationservice.Details, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
}

type ReceiptService interface {
	GetByDonation(ctx context.Context, actor *domain.User, donationID string) (*domain.DonationReceipt, error)
}

type ActorProvider interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type DonationHandler struct {
	donationService Service
	receiptService  ReceiptService
	actors          ActorProvider
}

func New(donationService Service, receiptService ReceiptService, actors ActorProvider) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		receiptService:  receiptService,
		actors:          actors,
	}
}

func (h *DonationHandler) actor(ctx context.Context) (*domain.User, error) {
	userID, ok := ctx.Value(pkgauth.UserIDKey).(string)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return h.actors.CurrentUser(ctx, userID)
}

func respondError(w http.ResponseWriter, err error) {
	var vErr *apperrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.RespondWithValidationErrors(w, vErr.Fields)
	case errors.Is(err, apperrors.ErrUnauthorized):
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, apperrors.ErrForbidden):
		utils.RespondWithError(w, http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, apperrors.ErrNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Resource not found.")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func toResponse(d *donationservice.Details) dto.DonationResponseDTO {
	return dto.NewDonationResponse(d.Donation, d.Campaign, d.Donor)
}

func (h *DonationHandler) respondPage(w http.ResponseWriter, details []donationservice.Details, page, perPage int, total int64) {
	data := make([]dto.DonationResponseDTO, 0, len(details))
	for i := range details {
		data = append(data, toResponse(&details[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.Paginated[dto.DonationResponseDTO]{
		Data: data,
		Meta: dto.NewMeta(page, perPage, total),
	})
}

// List godoc
//
//	@Summary		List donations
//	@Description	Paginated donation listing; requires a donations permission
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status		query		int	false	"Filter by status"
//	@Param			page		query		int	false	"Page number"
//	@Param			per_page	query		int	false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.DonationResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Router			/api/donations [get]
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var status *int
	if v := r.URL.Query().Get("status"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &n
	}
	page, perPage := utils.ParsePagination(r, dto.DefaultPerPage)
	details, total, err := h.donationService.List(r.Context(), actor, status, page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	h.respondPage(w, details, page, perPage, total)
}

// ListByCampaign godoc
//
//	@Summary		List campaign donations
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Campaign ID"
//	@Param			page		query		int		false	"Page number"
//	@Param			per_page	query		int		false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.DonationResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id}/donations [get]
func (h *DonationHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	page, perPage := utils.ParsePagination(r, dto.DefaultPerPage)
	details, total, err := h.donationService.ListByCampaign(r.Context(), actor, chi.URLParam(r, "id"), page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	h.respondPage(w, details, page, perPage, total)
}

// Donate godoc
//
//	@Summary		Donate to campaign
//	@Description	Record a donation against an approved campaign; the donation starts pending
//	@Tags			Donations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Campaign ID"
//	@Param			request	body		dto.StoreDonationRequestDTO	true	"Donation body"
//	@Success		201	{object}	dto.DonationResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/campaigns/{id}/donations [post]
func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.StoreDonationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.donationService.Donate(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponse(details))
}

// Create godoc
//
//	@Summary		Record donation
//	@Description	Manager-only flat create; the body names the target campaign
//	@Tags			Donations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.StoreDonationRecordRequestDTO	true	"Donation body"
//	@Success		201	{object}	dto.DonationResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/donations [post]
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.StoreDonationRecordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.donationService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponse(details))
}

// Get godoc
//
//	@Summary		Show donation
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Donation ID"
//	@Success		200	{object}	dto.DonationResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/donations/{id} [get]
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := h.donationService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// GetByCampaign godoc
//
//	@Summary		Show campaign donation
//	@Description	Resolve a donation through its campaign; donations of other campaigns read as missing
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Campaign ID"
//	@Param			donationID	path		string	true	"Donation ID"
//	@Success		200	{object}	dto.DonationResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id}/donations/{donationID} [get]
func (h *DonationHandler) GetByCampaign(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := h.donationService.GetByCampaign(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "donationID"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Update godoc
//
//	@Summary		Update donation
//	@Description	Donors may edit their own pending donations; status changes need a donations permission
//	@Tags			Donations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Donation ID"
//	@Param			request	body		dto.UpdateDonationRequestDTO	true	"Fields to change"
//	@Success		200	{object}	dto.DonationResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/donations/{id} [put]
func (h *DonationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.UpdateDonationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.donationService.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Delete godoc
//
//	@Summary		Delete donation
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Donation ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/donations/{id} [delete]
func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.donationService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Receipt godoc
//
//	@Summary		Donation receipt
//	@Description	Return the receipt issued for a completed donation
//	@Tags			Donations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Donation ID"
//	@Success		200	{object}	dto.ReceiptResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/donations/{id}/receipt [get]
func (h *DonationHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	receipt, err := h.receiptService.GetByDonation(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReceiptResponse(receipt))
}
