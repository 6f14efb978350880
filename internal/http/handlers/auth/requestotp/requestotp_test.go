package requestotp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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

// MockService реализует интерфейс requestotp.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) RequestOtp(ctx context.Context, rawPhone string) error {
	args := m.Called(ctx, rawPhone)
	return args.Error(0)
}

func TestRequestOtpHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешный запрос кода",
			requestBody: models.DummyOtpRequest{Phone: "09121234567"},
			setupMock: func(m *MockService) {
				m.On("RequestOtp", mock.Anything, "09121234567").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"otp code sent"`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "пустой номер",
			requestBody:    models.DummyOtpRequest{},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Phone is a required field`,
		},
		{
			name:        "превышен лимит запросов",
			requestBody: models.DummyOtpRequest{Phone: "09121234567"},
			setupMock: func(m *MockService) {
				m.On("RequestOtp", mock.Anything, "09121234567").
					Return(apperr.NewRateLimit("otp:09121234567"))
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "некорректный номер телефона",
			requestBody: models.DummyOtpRequest{Phone: "12345"},
			setupMock: func(m *MockService) {
				m.On("RequestOtp", mock.Anything, "12345").
					Return(apperr.NewValidation("invalid phone number"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid phone number`,
		},
		{
			name:        "внутренняя ошибка",
			requestBody: models.DummyOtpRequest{Phone: "09121234567"},
			setupMock: func(m *MockService) {
				m.On("RequestOtp", mock.Anything, "09121234567").
					Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `internal error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/otp/request", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
