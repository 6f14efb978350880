package paymentverify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/services/payment"
)

// MockPaymentService реализует интерфейс paymentverify.PaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Verify(ctx context.Context, authority, status string) (*models.Payment, error) {
	args := m.Called(ctx, authority, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

// MockSubscriptionService реализует интерфейс paymentverify.SubscriptionService
type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Get(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Activate(ctx context.Context, subscriptionID string, contact payment.Contact) (*models.Subscription, error) {
	args := m.Called(ctx, subscriptionID, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

// MockUserReader реализует интерфейс paymentverify.UserReader
type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestVerifyPaymentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	completed := &models.Payment{
		ID:             "pay-1",
		SubscriptionID: "sub-1",
		Authority:      "AUTH-1",
		Status:         models.PaymentStatusCompleted,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMocks     func(*MockPaymentService, *MockSubscriptionService, *MockUserReader)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешная верификация активирует подписку",
			requestBody: models.DummyPaymentVerify{Authority: "AUTH-1", Status: "OK"},
			setupMocks: func(p *MockPaymentService, s *MockSubscriptionService, u *MockUserReader) {
				p.On("Verify", mock.Anything, "AUTH-1", "OK").Return(completed, nil)
				pending := &models.Subscription{ID: "sub-1", UserID: "user-1", Status: models.SubscriptionStatusPending}
				active := &models.Subscription{ID: "sub-1", UserID: "user-1", Status: models.SubscriptionStatusActive}
				s.On("Get", mock.Anything, "sub-1").Return(pending, nil)
				u.On("GetUser", mock.Anything, "user-1").
					Return(&models.User{ID: "user-1", Phone: "09121234567"}, nil)
				s.On("Activate", mock.Anything, "sub-1",
					payment.Contact{Phone: "09121234567"}).Return(active, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscriptionId":"sub-1"`,
		},
		{
			name:        "повторная верификация не активирует повторно",
			requestBody: models.DummyPaymentVerify{Authority: "AUTH-1", Status: "OK"},
			setupMocks: func(p *MockPaymentService, s *MockSubscriptionService, _ *MockUserReader) {
				p.On("Verify", mock.Anything, "AUTH-1", "OK").Return(completed, nil)
				active := &models.Subscription{ID: "sub-1", UserID: "user-1", Status: models.SubscriptionStatusActive}
				s.On("Get", mock.Anything, "sub-1").Return(active, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"ACTIVE"`,
		},
		{
			name:        "платёж не найден",
			requestBody: models.DummyPaymentVerify{Authority: "AUTH-404", Status: "OK"},
			setupMocks: func(p *MockPaymentService, _ *MockSubscriptionService, _ *MockUserReader) {
				p.On("Verify", mock.Anything, "AUTH-404", "OK").
					Return(nil, apperr.NewNotFound("payment", "AUTH-404"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:        "шлюз отклонил платёж",
			requestBody: models.DummyPaymentVerify{Authority: "AUTH-1", Status: "NOK"},
			setupMocks: func(p *MockPaymentService, _ *MockSubscriptionService, _ *MockUserReader) {
				p.On("Verify", mock.Anything, "AUTH-1", "NOK").
					Return(nil, apperr.NewGateway("zarinpal", "NOK", "payment was cancelled"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `cancelled`,
		},
		{
			name:           "нет authority",
			requestBody:    models.DummyPaymentVerify{Status: "OK"},
			setupMocks:     func(_ *MockPaymentService, _ *MockSubscriptionService, _ *MockUserReader) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Authority is a required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payments := new(MockPaymentService)
			subscriptions := new(MockSubscriptionService)
			users := new(MockUserReader)
			tt.setupMocks(payments, subscriptions, users)

			handler := New(logger, payments, subscriptions, users)

			body, err := json.Marshal(tt.requestBody)
			assert.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/payments/verify", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			payments.AssertExpectations(t)
			subscriptions.AssertExpectations(t)
		})
	}
}
