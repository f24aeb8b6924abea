package dto

import (
	"time"

	"github.com/givehub/givehub/internal/domain"
)

// UserSummaryDTO is the reduced nested representation of a user.
type UserSummaryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponseDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	IsAdmin     bool     `json:"is_admin"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at" example:"2025-09-01T16:09:57Z"`
}

type StoreUserRequestDTO struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateUserRequestDTO struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

type PermissionsRequestDTO struct {
	Permissions []string `json:"permissions" validate:"required"`
}

type UserPermissionsResponseDTO struct {
	UserID      string   `json:"user_id"`
	UserName    string   `json:"user_name"`
	Permissions []string `json:"permissions"`
}

type PermissionDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GuardName string `json:"guard_name"`
}

func NewUserSummary(u *domain.User) *UserSummaryDTO {
	if u == nil {
		return nil
	}
	return &UserSummaryDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func NewUserResponse(u *domain.User) UserResponseDTO {
	permissions := u.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return UserResponseDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsAdmin:     u.IsAdmin,
		Permissions: permissions,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
