package campaigns

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
	"github.com/givehub/givehub/internal/service/campaignservice"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

type Service interface {
	List(ctx context.Context, actor *domain.User, status *int, search string, page, perPage int) ([]campaignservice.Details, int64, error)
	Create(ctx context.Context, actor *domain.User, req dto.StoreCampaignRequestDTO) (*campaignservice.Details, error)
	Get(ctx context.Context, actor *domain.User, id string) (*campaignservice.Details, error)
	Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateCampaignRequestDTO) (*campaignservice.Details, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	Approve(ctx context.Context, actor *domain.User, id string) (*campaignservice.Details, error)
	Reject(ctx context.Context, actor *domain.User, id, reason string) (*campaignservice.Details, error)
	Statistics(ctx context.Context, actor *domain.User, id string) (*dto.CampaignStatisticsResponseDTO, error)
}

type ActorProvider interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type CampaignHandler struct {
	campaignService Service
	actors          ActorProvider
}

func New(campaignService Service, actors ActorProvider) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		actors:          actors,
	}
}

func (h *CampaignHandler) actor(ctx context.Context) (*domain.User, error) {
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

func toResponse(d *campaignservice.Details) dto.CampaignResponseDTO {
	return dto.NewCampaignResponse(d.Campaign, d.Creator, d.Approver, d.Rejector)
}

// List godoc
//
//	@Summary		List campaigns
//	@Description	Paginated campaign listing; non-moderators see approved campaigns and their own
//	@Tags			Campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			status		query		int		false	"Filter by status"
//	@Param			search		query		string	false	"Search in title and description"
//	@Param			page		query		int		false	"Page number"
//	@Param			per_page	query		int		false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.CampaignResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/campaigns [get]
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
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
	details, total, err := h.campaignService.List(r.Context(), actor, status, r.URL.Query().Get("search"), page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	data := make([]dto.CampaignResponseDTO, 0, len(details))
	for i := range details {
		data = append(data, toResponse(&details[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.Paginated[dto.CampaignResponseDTO]{
		Data: data,
		Meta: dto.NewMeta(page, perPage, total),
	})
}

// Create godoc
//
//	@Summary		Create campaign
//	@Description	Create a campaign owned by the authenticated user
//	@Tags			Campaigns
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.StoreCampaignRequestDTO	true	"Campaign body"
//	@Success		201	{object}	dto.CampaignResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/campaigns [post]
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.StoreCampaignRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.campaignService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponse(details))
}

// Get godoc
//
//	@Summary		Show campaign
//	@Tags			Campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id} [get]
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := h.campaignService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Update godoc
//
//	@Summary		Update campaign
//	@Description	Update campaign fields; creators lose access once the campaign is approved
//	@Tags			Campaigns
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Campaign ID"
//	@Param			request	body		dto.UpdateCampaignRequestDTO	true	"Fields to change"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/campaigns/{id} [put]
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.UpdateCampaignRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.campaignService.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Delete godoc
//
//	@Summary		Delete campaign
//	@Tags			Campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Campaign ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id} [delete]
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.campaignService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve godoc
//
//	@Summary		Approve campaign
//	@Description	Move a campaign into the approved state
//	@Tags			Campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id}/approve [post]
func (h *CampaignHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := h.campaignService.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Reject godoc
//
//	@Summary		Reject campaign
//	@Description	Move a campaign into the rejected state with a reason
//	@Tags			Campaigns
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Campaign ID"
//	@Param			request	body		dto.RejectCampaignRequestDTO	true	"Rejection reason"
//	@Success		200	{object}	dto.CampaignResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/campaigns/{id}/reject [post]
func (h *CampaignHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.RejectCampaignRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.campaignService.Reject(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}

// Statistics godoc
//
//	@Summary		Campaign statistics
//	@Description	Daily donation chart plus aggregate metrics; requires a campaigns permission
//	@Tags			Campaigns
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Campaign ID"
//	@Success		200	{object}	dto.CampaignStatisticsResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/campaigns/{id}/statistics [get]
func (h *CampaignHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	stats, err := h.campaignService.Statistics(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}
