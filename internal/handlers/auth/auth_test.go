package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/givehub/givehub/internal/apperrors"
	"github.com/givehub/givehub/internal/domain"
	pkgauth "github.com/givehub/givehub/pkg/auth"
	"github.com/givehub/givehub/pkg/utils"
)

func NewMock(t *testing.T) (*AuthHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	defer ctrl.Finish()
	return handler, service
}

func TestRegisterHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name          string
		body          string
		prepareMock   func()
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful registration",
			body: `{"name":"New User","email":"new@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "New User", "new@example.com", "password123").Return(&domain.User{
					ID:    "u-1",
					Name:  "New User",
					Email: "new@example.com",
				}, nil)
				service.EXPECT().GenerateToken("u-1").Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "Email already taken",
			body: `{"name":"New User","email":"taken@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "New User", "taken@example.com", "password123").
					Return(nil, apperrors.NewValidationError("email", "The email has already been taken."))
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid json`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
		{
			name: "Error generating token",
			body: `{"name":"New User","email":"new@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Register(context.Background(), "New User", "new@example.com", "password123").Return(&domain.User{
					ID: "u-1",
				}, nil)
				service.EXPECT().GenerateToken("u-1").Return("", errors.New("token generation error"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Error generating token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("POST", "/api/register", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Register(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)

			if tt.expectedCode == http.StatusCreated {
				assert.Equal(t, "Bearer some-jwt-token", rr.Header().Get("Authorization"))
			}
			if tt.expectedError != "" {
				var resp utils.Response
				err := json.NewDecoder(rr.Body).Decode(&resp)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Successful login",
			body: `{"email":"test@example.com","password":"password123"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "test@example.com", "password123").Return(&domain.User{
					ID:    "u-1",
					Email: "test@example.com",
				}, nil)
				service.EXPECT().GenerateToken("u-1").Return("some-jwt-token", nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Invalid credentials",
			body: `{"email":"test@example.com","password":"wrong"}`,
			prepareMock: func() {
				service.EXPECT().Authenticate(context.Background(), "test@example.com", "wrong").
					Return(nil, apperrors.NewValidationError("email", "The provided credentials are incorrect."))
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Invalid request body",
			body:         `{invalid json`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("POST", "/api/login", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()

			handler.Login(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestMeHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		ctx          context.Context
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Authenticated user",
			ctx:  context.WithValue(context.Background(), pkgauth.UserIDKey, "u-1"),
			prepareMock: func() {
				service.EXPECT().CurrentUser(gomock.Any(), "u-1").Return(&domain.User{
					ID:          "u-1",
					Email:       "test@example.com",
					Permissions: []string{domain.PermViewDonations},
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Missing user id in context",
			ctx:          context.Background(),
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name: "User no longer exists",
			ctx:  context.WithValue(context.Background(), pkgauth.UserIDKey, "u-2"),
			prepareMock: func() {
				service.EXPECT().CurrentUser(gomock.Any(), "u-2").Return(nil, apperrors.ErrUnauthorized)
			},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			req := httptest.NewRequest("GET", "/api/me", nil).WithContext(tt.ctx)
			rr := httptest.NewRecorder()

			handler.Me(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
