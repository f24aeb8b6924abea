package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	"github.com/givehub/givehub/internal/service/transactionservice"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

type Service interface {
	List(ctx context.Context, actor *domain.User, page, perPage int) ([]transactionservice.Details, int64, error)
	ListByDonation(ctx context.Context, actor *domain.User, donationID string, page, perPage int) ([]transactionservice.Details, int64, error)
	Create(ctx context.Context, actor *domain.User, donationID string, req dto.StoreTransactionRequestDTO) (*transactionservice.Details, error)
	Get(ctx context.Context, actor *domain.User, id string) (*transactionservice.Details, error)
}

type ActorProvider interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type TransactionHandler struct {
	transactionService Service
	actors             ActorProvider
}

func New(transactionService Service, actors ActorProvider) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		actors:             actors,
	}
}

func (h *TransactionHandler) actor(ctx context.Context) (*domain.User, error) {
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

func toResponse(d *transactionservice.Details) dto.TransactionResponseDTO {
	var donation *dto.DonationResponseDTO
	if d.Donation != nil {
		resp := dto.NewDonationResponse(d.Donation, d.Campaign, d.Donor)
		donation = &resp
	}
	return dto.NewTransactionResponse(d.Transaction, donation)
}

func (h *TransactionHandler) respondPage(w http.ResponseWriter, details []transactionservice.Details, page, perPage int, total int64) {
	data := make([]dto.TransactionResponseDTO, 0, len(details))
	for i := range details {
		data = append(data, toResponse(&details[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.Paginated[dto.TransactionResponseDTO]{
		Data: data,
		Meta: dto.NewMeta(page, perPage, total),
	})
}

// List godoc
//
//	@Summary		List transactions
//	@Description	Paginated payment transaction listing for users with a donations permission
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page		query		int	false	"Page number"
//	@Param			per_page	query		int	false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.TransactionResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Router			/api/transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	page, perPage := utils.ParsePagination(r, dto.DefaultPerPage)
	details, total, err := h.transactionService.List(r.Context(), actor, page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	h.respondPage(w, details, page, perPage, total)
}

// ListByDonation godoc
//
//	@Summary		List donation transactions
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Donation ID"
//	@Param			page		query		int		false	"Page number"
//	@Param			per_page	query		int		false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.TransactionResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/donations/{id}/transactions [get]
func (h *TransactionHandler) ListByDonation(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	page, perPage := utils.ParsePagination(r, dto.DefaultPerPage)
	details, total, err := h.transactionService.ListByDonation(r.Context(), actor, chi.URLParam(r, "id"), page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	h.respondPage(w, details, page, perPage, total)
}

// Create godoc
//
//	@Summary		Open payment transaction
//	@Description	Open a payment attempt for a pending donation; the reference is generated server side
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Donation ID"
//	@Param			request	body		dto.StoreTransactionRequestDTO	true	"Transaction body"
//	@Success		201	{object}	dto.TransactionResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/donations/{id}/transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.StoreTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	details, err := h.transactionService.Create(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, toResponse(details))
}

// Get godoc
//
//	@Summary		Show transaction
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Transaction ID"
//	@Success		200	{object}	dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/transactions/{id} [get]
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	details, err := h.transactionService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toResponse(details))
}
