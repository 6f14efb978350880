package apikeyrotate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// MockService реализует интерфейс apikeyrotate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Rotate(ctx context.Context, id string) (*models.APIKey, string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.APIKey), args.String(1), args.Error(2)
}

func TestRotateAPIKeyHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		keyID          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "успешная ротация возвращает новый открытый ключ",
			keyID: "key-old",
			setupMock: func(m *MockService) {
				m.On("Rotate", mock.Anything, "key-old").
					Return(&models.APIKey{ID: "key-new", Label: "billing-service"},
						"sk_fresh_plaintext", nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"api_key":"sk_fresh_plaintext"`,
		},
		{
			name:           "пустой идентификатор",
			keyID:          "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `missing api key id`,
		},
		{
			name:  "ключ не найден",
			keyID: "key-missing",
			setupMock: func(m *MockService) {
				m.On("Rotate", mock.Anything, "key-missing").
					Return(nil, "", apperr.NewNotFound("api key", "key-missing"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `api key not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/apikeys/"+tt.keyID+"/rotate", nil)
			rctx := chi.NewRouteContext()
			if tt.keyID != "" {
				rctx.URLParams.Add("id", tt.keyID)
			}
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
