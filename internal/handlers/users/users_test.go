package users

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/dto"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

func NewMock(t *testing.T) (*UserHandler, *MockService, *MockActorProvider) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	service := NewMockService(ctrl)
	actors := NewMockActorProvider(ctrl)
	handler := New(service, actors)
	return handler, service, actors
}

func authCtx(userID string) context.Context {
	return context.WithValue(context.Background(), pkgauth.UserIDKey, userID)
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

func admin() *domain.User {
	return &domain.User{ID: "admin-1", Name: "Admin", Email: "admin@example.com", IsAdmin: true}
}

func member() *domain.User {
	return &domain.User{ID: "u-1", Name: "Jane", Email: "jane@example.com"}
}

func TestListHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		target         string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name:   "Success",
			target: "/api/users?search=jane&is_admin=false",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				isAdmin := false
				service.EXPECT().
					List(gomock.Any(), admin(), "jane", &isAdmin, 1, dto.DefaultPerPage).
					Return([]domain.User{*member()}, int64(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "BadAdminFilter",
			target: "/api/users?is_admin=maybe",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Forbidden",
			target: "/api/users",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					List(gomock.Any(), admin(), "", nil, 1, dto.DefaultPerPage).
					Return(nil, int64(0), apperrors.Forbidden("missing permission"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil).WithContext(authCtx("admin-1"))
			rr := httptest.NewRecorder()
			handler.List(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.Paginated[dto.UserResponseDTO]
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Len(t, resp.Data, 1)
				assert.Equal(t, "jane@example.com", resp.Data[0].Email)
			}
		})
	}
}

func TestCreateHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"name":"Jane","email":"jane@example.com","password":"password123"}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					Create(gomock.Any(), admin(), gomock.Any()).
					Return(member(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "EmailTaken",
			body: `{"name":"Jane","email":"jane@example.com","password":"password123"}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					Create(gomock.Any(), admin(), gomock.Any()).
					Return(nil, &apperrors.ValidationError{Fields: map[string][]string{"email": {"The email has already been taken."}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "InvalidBody",
			body: `name=Jane`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body)).
				WithContext(authCtx("admin-1"))
			rr := httptest.NewRecorder()
			handler.Create(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestGetHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().Get(gomock.Any(), admin(), "u-1").Return(member(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "NotFound",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					Get(gomock.Any(), admin(), "u-1").
					Return(nil, apperrors.NotFound("user not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
			req := httptest.NewRequest(http.MethodGet, "/api/users/u-1", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Get(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestUpdateHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		body           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"name":"Janet"}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				updated := member()
				updated.Name = "Janet"
				service.EXPECT().
					Update(gomock.Any(), admin(), "u-1", gomock.Any()).
					Return(updated, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Forbidden",
			body: `{"name":"Janet"}`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					Update(gomock.Any(), admin(), "u-1", gomock.Any()).
					Return(nil, apperrors.Forbidden("missing permission"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "InvalidBody",
			body: `{`,
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
			req := httptest.NewRequest(http.MethodPut, "/api/users/u-1", bytes.NewBufferString(tt.body)).
				WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Update(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.UserResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "Janet", resp.Name)
			}
		})
	}
}

func TestDeleteHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().Delete(gomock.Any(), admin(), "u-1").Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "SelfDelete",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					Delete(gomock.Any(), admin(), "u-1").
					Return(&apperrors.ValidationError{Fields: map[string][]string{"user": {"You cannot delete your own account."}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
			req := httptest.NewRequest(http.MethodDelete, "/api/users/u-1", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.Delete(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestListPermissionsHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().ListPermissions(gomock.Any(), admin()).Return([]domain.Permission{
					{ID: "perm-1", Name: domain.PermManageUsers, GuardName: "api"},
					{ID: "perm-2", Name: domain.PermManageCampaigns, GuardName: "api"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Forbidden",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					ListPermissions(gomock.Any(), admin()).
					Return(nil, apperrors.Forbidden("missing permission"))
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest(http.MethodGet, "/api/permissions", nil).WithContext(authCtx("admin-1"))
			rr := httptest.NewRecorder()
			handler.ListPermissions(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp []dto.PermissionDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Len(t, resp, 2)
				assert.Equal(t, domain.PermManageUsers, resp[0].Name)
			}
		})
	}
}

func TestGetUserPermissionsHandler(t *testing.T) {
	handler, service, actors := NewMock(t)

	granted := member()
	granted.Permissions = []string{domain.PermViewDonations}

	tests := []struct {
		name           string
		prepareMock    func()
		expectedStatus int
	}{
		{
			name: "Success",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().GetUserPermissions(gomock.Any(), admin(), "u-1").Return(granted, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "NoGrants",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().GetUserPermissions(gomock.Any(), admin(), "u-1").Return(member(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "NotFound",
			prepareMock: func() {
				actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
				service.EXPECT().
					GetUserPermissions(gomock.Any(), admin(), "u-1").
					Return(nil, apperrors.NotFound("user not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
			req := httptest.NewRequest(http.MethodGet, "/api/users/u-1/permissions", nil).WithContext(ctx)
			rr := httptest.NewRecorder()
			handler.GetUserPermissions(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp dto.UserPermissionsResponseDTO
				assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "u-1", resp.UserID)
				assert.NotNil(t, resp.Permissions)
			}
		})
	}
}

func TestChangePermissionsHandlers(t *testing.T) {
	handler, service, actors := NewMock(t)

	granted := member()
	granted.Permissions = []string{domain.PermViewDonations}
	body := `{"permissions":["view donations"]}`

	t.Run("Assign", func(t *testing.T) {
		actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
		service.EXPECT().
			AssignPermissions(gomock.Any(), admin(), "u-1", []string{"view donations"}).
			Return(granted, nil)

		ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
		req := httptest.NewRequest(http.MethodPost, "/api/users/u-1/permissions", bytes.NewBufferString(body)).
			WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.AssignPermissions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp dto.UserPermissionsResponseDTO
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, []string{domain.PermViewDonations}, resp.Permissions)
	})

	t.Run("Sync", func(t *testing.T) {
		actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
		service.EXPECT().
			SyncPermissions(gomock.Any(), admin(), "u-1", []string{"view donations"}).
			Return(granted, nil)

		ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
		req := httptest.NewRequest(http.MethodPut, "/api/users/u-1/permissions", bytes.NewBufferString(body)).
			WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.SyncPermissions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Remove", func(t *testing.T) {
		actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
		service.EXPECT().
			RemovePermissions(gomock.Any(), admin(), "u-1", []string{"view donations"}).
			Return(member(), nil)

		ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
		req := httptest.NewRequest(http.MethodDelete, "/api/users/u-1/permissions", bytes.NewBufferString(body)).
			WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.RemovePermissions(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("UnknownPermission", func(t *testing.T) {
		actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)
		service.EXPECT().
			AssignPermissions(gomock.Any(), admin(), "u-1", []string{"rule the world"}).
			Return(nil, &apperrors.ValidationError{Fields: map[string][]string{"permissions": {"The permission rule the world does not exist."}}})

		ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
		req := httptest.NewRequest(http.MethodPost, "/api/users/u-1/permissions", bytes.NewBufferString(`{"permissions":["rule the world"]}`)).
			WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.AssignPermissions(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp utils.ValidationResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Contains(t, resp.Errors, "permissions")
	})

	t.Run("InvalidBody", func(t *testing.T) {
		actors.EXPECT().CurrentUser(gomock.Any(), "admin-1").Return(admin(), nil)

		ctx := withURLParam(authCtx("admin-1"), "id", "u-1")
		req := httptest.NewRequest(http.MethodPost, "/api/users/u-1/permissions", bytes.NewBufferString(`perm`)).
			WithContext(ctx)
		rr := httptest.NewRecorder()
		handler.AssignPermissions(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
