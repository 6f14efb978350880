package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// MockKeyVerifier реализует интерфейс middlewarectx.KeyVerifier
type MockKeyVerifier struct {
	mock.Mock
}

func (m *MockKeyVerifier) Verify(ctx context.Context, presented string) (*models.APIKey, error) {
	args := m.Called(ctx, presented)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func TestAPIKeyMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	userID := "user-1"

	tests := []struct {
		name           string
		headers        map[string]string
		masterKey      string
		setupMock      func(*MockKeyVerifier)
		expectedStatus int
		expectedUserID string
	}{
		{
			name:    "валидный ключ в X-Api-Key",
			headers: map[string]string{"X-Api-Key": "sk_valid"},
			setupMock: func(m *MockKeyVerifier) {
				m.On("Verify", mock.Anything, "sk_valid").
					Return(&models.APIKey{ID: "key-1", UserID: &userID, IsActive: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedUserID: "user-1",
		},
		{
			name:    "валидный ключ в Authorization",
			headers: map[string]string{"Authorization": "ApiKey sk_valid"},
			setupMock: func(m *MockKeyVerifier) {
				m.On("Verify", mock.Anything, "sk_valid").
					Return(&models.APIKey{ID: "key-1", UserID: &userID, IsActive: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedUserID: "user-1",
		},
		{
			name:           "мастер-ключ проходит без обращения к хранилищу",
			headers:        map[string]string{"X-Api-Key": "master-secret"},
			masterKey:      "master-secret",
			setupMock:      func(_ *MockKeyVerifier) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "без ключа",
			headers:        map[string]string{},
			setupMock:      func(_ *MockKeyVerifier) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:    "неизвестный ключ",
			headers: map[string]string{"X-Api-Key": "sk_unknown"},
			setupMock: func(m *MockKeyVerifier) {
				m.On("Verify", mock.Anything, "sk_unknown").
					Return(nil, apperr.NewUnauthorized("invalid api key"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Bearer-схема не поддерживается",
			headers:        map[string]string{"Authorization": "Bearer sk_valid"},
			setupMock:      func(_ *MockKeyVerifier) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockKeyVerifier)
			tt.setupMock(verifier)

			var gotUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = r.Context().Value(UserID).(string)
				w.WriteHeader(http.StatusOK)
			})

			mw := APIKeyMiddleware(verifier, tt.masterKey, logger)

			req := httptest.NewRequest(http.MethodGet, "/subscriptions/active", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			mw(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedUserID != "" {
				assert.Equal(t, tt.expectedUserID, gotUserID)
			}

			verifier.AssertExpectations(t)
		})
	}
}

func TestRequireMaster(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	userID := "user-1"

	tests := []struct {
		name           string
		apiKey         string
		setupMock      func(*MockKeyVerifier)
		expectedStatus int
		handlerCalled  bool
	}{
		{
			name:           "мастер-ключ проходит к административному обработчику",
			apiKey:         "master-secret",
			setupMock:      func(_ *MockKeyVerifier) {},
			expectedStatus: http.StatusOK,
			handlerCalled:  true,
		},
		{
			name:   "пользовательский ключ не выпускает новые ключи",
			apiKey: "sk_regular_user_key",
			setupMock: func(m *MockKeyVerifier) {
				m.On("Verify", mock.Anything, "sk_regular_user_key").
					Return(&models.APIKey{ID: "key-1", UserID: &userID, IsActive: true}, nil)
			},
			expectedStatus: http.StatusForbidden,
			handlerCalled:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockKeyVerifier)
			tt.setupMock(verifier)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			auth := APIKeyMiddleware(verifier, "master-secret", logger)
			admin := RequireMaster(logger)

			req := httptest.NewRequest(http.MethodPost, "/apikeys", nil)
			req.Header.Set("X-Api-Key", tt.apiKey)

			w := httptest.NewRecorder()
			auth(admin(next)).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.handlerCalled, handlerCalled)
			if !tt.handlerCalled {
				assert.Contains(t, w.Body.String(), "master key required")
			}

			verifier.AssertExpectations(t)
		})
	}
}
