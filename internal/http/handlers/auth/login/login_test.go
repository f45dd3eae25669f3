package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-portal/internal/lib/errcode"
	"github.com/magabrotheeeer/gym-portal/internal/models"
	services "github.com/magabrotheeeer/gym-portal/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, login, password string) (*services.LoginResult, error) {
	args := m.Called(ctx, login, password)
	resp, _ := args.Get(0).(*services.LoginResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		mockResp       *services.LoginResult
		mockErr        error
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantCode       string
		wantStatus     string
	}{
		{
			name:        "valid login",
			requestBody: Request{Login: "coach", Password: "password123"},
			mockResp: &services.LoginResult{
				UserID:     2,
				Login:      "coach",
				Role:       models.RoleGymTrainer,
				Token:      "tok",
				RedirectTo: "/dashboard",
			},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":       "tok",
				"role":        "gym_trainer",
				"login":       "coach",
				"redirect_to": "/dashboard",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Login: "coach"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "unknown user",
			requestBody:    Request{Login: "nobody", Password: "password123"},
			mockErr:        errcode.Of(errcode.InvalidCredentials),
			wantStatusCode: http.StatusUnauthorized,
			wantCode:       "invalid_username",
			wantStatus:     "Error",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Login: "coach", Password: "password123"},
			mockErr:        errcode.Of(errcode.IncorrectPassword),
			wantStatusCode: http.StatusUnauthorized,
			wantCode:       "incorrect_password",
			wantStatus:     "Error",
		},
		{
			name:           "service error",
			requestBody:    Request{Login: "coach", Password: "password123"},
			mockErr:        errors.New("db error"),
			wantStatusCode: http.StatusInternalServerError,
			wantCode:       "unknown",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			handler := New(newNoopLogger(), authMock, time.Hour)

			if tt.mockResp != nil || tt.mockErr != nil {
				r := tt.requestBody.(Request)
				authMock.On("Login", mock.Anything, r.Login, r.Password).Return(tt.mockResp, tt.mockErr).Once()
			}

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-request-id"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp struct {
				Status string           `json:"status"`
				Error  string           `json:"error"`
				Errors []map[string]any `json:"errors"`
				Data   map[string]any   `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			if tt.wantData != nil {
				assert.Equal(t, tt.wantData, resp.Data)
				cookies := rec.Result().Cookies()
				require.Len(t, cookies, 1)
				assert.Equal(t, middlewarectx.TokenCookie, cookies[0].Name)
				assert.Equal(t, "tok", cookies[0].Value)
			}
			if tt.wantError != "" {
				assert.Contains(t, resp.Error, tt.wantError)
			}
			if tt.wantCode != "" {
				require.Len(t, resp.Errors, 1)
				assert.Equal(t, tt.wantCode, resp.Errors[0]["code"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
