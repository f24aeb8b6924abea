package users

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
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

type Service interface {
	List(ctx context.Context, actor *domain.User, search string, isAdmin *bool, page, perPage int) ([]domain.User, int64, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error)
	Create(ctx context.Context, actor *domain.User, req dto.StoreUserRequestDTO) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id string, req dto.UpdateUserRequestDTO) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	ListPermissions(ctx context.Context, actor *domain.User) ([]domain.Permission, error)
	GetUserPermissions(ctx context.Context, actor *domain.User, userID string) (*domain.User, error)
	AssignPermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error)
	SyncPermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error)
	RemovePermissions(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error)
}

type ActorProvider interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type UserHandler struct {
	userService Service
	actors      ActorProvider
}

func New(userService Service, actors ActorProvider) *UserHandler {
	return &UserHandler{
		userService: userService,
		actors:      actors,
	}
}

func (h *UserHandler) actor(ctx context.Context) (*domain.User, error) {
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

func permissionsResponse(u *domain.User) dto.UserPermissionsResponseDTO {
	permissions := u.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return dto.UserPermissionsResponseDTO{
		UserID:      u.ID,
		UserName:    u.Name,
		Permissions: permissions,
	}
}

// List godoc
//
//	@Summary		List users
//	@Description	Paginated user listing for administrators
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string	false	"Search in name and email"
//	@Param			is_admin	query		bool	false	"Filter by admin flag"
//	@Param			page		query		int		false	"Page number"
//	@Param			per_page	query		int		false	"Page size"
//	@Success		200	{object}	dto.Paginated[dto.UserResponseDTO]
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Router			/api/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var isAdmin *bool
	if v := r.URL.Query().Get("is_admin"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid is_admin filter")
			return
		}
		isAdmin = &b
	}
	page, perPage := utils.ParsePagination(r, dto.DefaultPerPage)
	users, total, err := h.userService.List(r.Context(), actor, r.URL.Query().Get("search"), isAdmin, page, perPage)
	if err != nil {
		respondError(w, err)
		return
	}
	data := make([]dto.UserResponseDTO, 0, len(users))
	for i := range users {
		data = append(data, dto.NewUserResponse(&users[i]))
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.Paginated[dto.UserResponseDTO]{
		Data: data,
		Meta: dto.NewMeta(page, perPage, total),
	})
}

// Create godoc
//
//	@Summary		Create user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dto.StoreUserRequestDTO	true	"User body"
//	@Success		201	{object}	dto.UserResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.StoreUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.userService.Create(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewUserResponse(user))
}

// Get godoc
//
//	@Summary		Show user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.userService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// Update godoc
//
//	@Summary		Update user
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		dto.UpdateUserRequestDTO	true	"Fields to change"
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.UpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.userService.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(user))
}

// Delete godoc
//
//	@Summary		Delete user
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.userService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPermissions godoc
//
//	@Summary		List permissions
//	@Description	All grantable permission names
//	@Tags			Permissions
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	dto.PermissionDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Router			/api/permissions [get]
func (h *UserHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	permissions, err := h.userService.ListPermissions(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	data := make([]dto.PermissionDTO, 0, len(permissions))
	for _, p := range permissions {
		data = append(data, dto.PermissionDTO{ID: p.ID, Name: p.Name, GuardName: p.GuardName})
	}
	utils.RespondWithJSON(w, http.StatusOK, data)
}

// GetUserPermissions godoc
//
//	@Summary		Show user permissions
//	@Tags			Permissions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	dto.UserPermissionsResponseDTO
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Router			/api/users/{id}/permissions [get]
func (h *UserHandler) GetUserPermissions(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.userService.GetUserPermissions(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, permissionsResponse(user))
}

func (h *UserHandler) changePermissions(w http.ResponseWriter, r *http.Request,
	change func(ctx context.Context, actor *domain.User, userID string, names []string) (*domain.User, error),
) {
	actor, err := h.actor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	var req dto.PermissionsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := change(r.Context(), actor, chi.URLParam(r, "id"), req.Permissions)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, permissionsResponse(user))
}

// AssignPermissions godoc
//
//	@Summary		Grant permissions
//	@Description	Add permissions to a user, keeping existing grants
//	@Tags			Permissions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		dto.PermissionsRequestDTO	true	"Permission names"
//	@Success		200	{object}	dto.UserPermissionsResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/users/{id}/permissions [post]
func (h *UserHandler) AssignPermissions(w http.ResponseWriter, r *http.Request) {
	h.changePermissions(w, r, h.userService.AssignPermissions)
}

// SyncPermissions godoc
//
//	@Summary		Replace permissions
//	@Description	Replace a user's permissions with the given set
//	@Tags			Permissions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		dto.PermissionsRequestDTO	true	"Permission names"
//	@Success		200	{object}	dto.UserPermissionsResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/users/{id}/permissions [put]
func (h *UserHandler) SyncPermissions(w http.ResponseWriter, r *http.Request) {
	h.changePermissions(w, r, h.userService.SyncPermissions)
}

// RemovePermissions godoc
//
//	@Summary		Revoke permissions
//	@Tags			Permissions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		dto.PermissionsRequestDTO	true	"Permission names"
//	@Success		200	{object}	dto.UserPermissionsResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request body"
//	@Failure		401	{object}	utils.Response	"Unauthorized"
//	@Failure		403	{object}	utils.Response	"Forbidden"
//	@Failure		404	{object}	utils.Response	"Not found"
//	@Failure		422	{object}	utils.ValidationResponse	"Validation failed"
//	@Router			/api/users/{id}/permissions [delete]
func (h *UserHandler) RemovePermissions(w http.ResponseWriter, r *http.Request) {
	h.changePermissions(w, r, h.userService.RemovePermissions)
}
