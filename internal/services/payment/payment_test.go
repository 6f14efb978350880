package payment

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/gateway"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/services/notification"
)

// MockRepository реализует интерфейс payment.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRepository) GetPaymentByAuthority(ctx context.Context, authority string) (*models.Payment, error) {
	args := m.Called(ctx, authority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockRepository) ListPaymentsBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *MockRepository) CompletePayment(ctx context.Context, id, gatewayTxID string, paidAt, verifiedAt time.Time, metadata map[string]any) (int, error) {
	args := m.Called(ctx, id, gatewayTxID, paidAt, verifiedAt, metadata)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FailPayment(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// noopNotifier никуда не отправляет уведомления.
type noopNotifier struct{}

func (noopNotifier) Send(_ models.NotificationEvent) notification.Result {
	return notification.Result{Sent: true}
}

func newTestService(repo *MockRepository, gw *gateway.MockGateway) *Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(repo, gateway.NewRegistry(gw), noopNotifier{},
		"http://localhost/callback", "mock", logger)
}

func TestCreatePayment(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	sub := &models.Subscription{ID: "sub-1", PlanID: "plan-1", Status: models.SubscriptionStatusPending}
	plan := &models.Plan{ID: "plan-1", Name: "Pro", Price: 500000, Currency: "IRR", DurationDays: 30, IsActive: true}

	repo.On("GetSubscription", mock.Anything, "sub-1").Return(sub, nil)
	repo.On("GetPlan", mock.Anything, "plan-1").Return(plan, nil)
	repo.On("CreatePayment", mock.Anything, mock.AnythingOfType("models.Payment")).Return(nil)

	paymentRow, err := svc.Create(context.Background(), "sub-1", "", Contact{Phone: "09120000000"})
	require.NoError(t, err)

	// Пустое имя шлюза разрешается в шлюз по умолчанию
	assert.Equal(t, "mock", paymentRow.Gateway)
	assert.Equal(t, models.PaymentStatusPending, paymentRow.Status)
	assert.Equal(t, int64(500000), paymentRow.Amount)
	assert.NotEmpty(t, paymentRow.Authority)
	assert.NotEmpty(t, paymentRow.PaymentURL)
	assert.Equal(t, int64(1), gw.CreateCalls())
	repo.AssertExpectations(t)
}

func TestCreatePaymentUnknownGateway(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	sub := &models.Subscription{ID: "sub-1", PlanID: "plan-1"}
	plan := &models.Plan{ID: "plan-1", Price: 100, Currency: "IRR"}
	repo.On("GetSubscription", mock.Anything, "sub-1").Return(sub, nil)
	repo.On("GetPlan", mock.Anything, "plan-1").Return(plan, nil)

	_, err := svc.Create(context.Background(), "sub-1", "paypal", Contact{})
	require.Error(t, err)

	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Equal(t, int64(0), gw.CreateCalls())
}

func TestVerifyPayment(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	pending := &models.Payment{
		ID:             "pay-1",
		SubscriptionID: "sub-1",
		Amount:         500000,
		Gateway:        "mock",
		Authority:      "AUTH-1",
		Status:         models.PaymentStatusPending,
		Metadata:       map[string]any{"description": "Оплата тарифа Pro"},
	}
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(pending, nil)
	repo.On("CompletePayment", mock.Anything, "pay-1", "REF-AUTH-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.Anything).Return(1, nil)

	paymentRow, err := svc.Verify(context.Background(), "AUTH-1", "OK")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, paymentRow.Status)
	assert.Equal(t, "REF-AUTH-1", paymentRow.GatewayTxID)
	assert.NotNil(t, paymentRow.PaidAt)
	// Метаданные создания сохраняются и дополняются данными верификации
	assert.Equal(t, "Оплата тарифа Pro", paymentRow.Metadata["description"])
	assert.Equal(t, "REF-AUTH-1", paymentRow.Metadata["ref_id"])
	assert.Equal(t, int64(1), gw.VerifyCalls())
	repo.AssertExpectations(t)
}

func TestVerifyPaymentIdempotent(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	paidAt := time.Now().UTC()
	completed := &models.Payment{
		ID:        "pay-1",
		Gateway:   "mock",
		Authority: "AUTH-1",
		Status:    models.PaymentStatusCompleted,
		PaidAt:    &paidAt,
	}
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(completed, nil)

	first, err := svc.Verify(context.Background(), "AUTH-1", "OK")
	require.NoError(t, err)
	second, err := svc.Verify(context.Background(), "AUTH-1", "OK")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Завершённый платёж не дергает шлюз повторно
	assert.Equal(t, int64(0), gw.VerifyCalls())
}

func TestVerifyPaymentCancelledCallback(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	pending := &models.Payment{
		ID:        "pay-1",
		Gateway:   "mock",
		Authority: "AUTH-1",
		Status:    models.PaymentStatusPending,
	}
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(pending, nil)
	repo.On("FailPayment", mock.Anything, "pay-1").Return(1, nil)

	_, err := svc.Verify(context.Background(), "AUTH-1", "NOK")
	require.Error(t, err)

	var gatewayErr *apperr.GatewayError
	assert.ErrorAs(t, err, &gatewayErr)
	// Отказ из колбэка не требует обращения к шлюзу
	assert.Equal(t, int64(0), gw.VerifyCalls())
	repo.AssertExpectations(t)
}

func TestVerifyPaymentAlreadyFailed(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, gateway.NewMockGateway(nil))

	failed := &models.Payment{
		ID:        "pay-1",
		Gateway:   "mock",
		Authority: "AUTH-1",
		Status:    models.PaymentStatusFailed,
	}
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(failed, nil)

	_, err := svc.Verify(context.Background(), "AUTH-1", "OK")
	require.Error(t, err)

	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestVerifyPaymentLostRace(t *testing.T) {
	repo := new(MockRepository)
	gw := gateway.NewMockGateway(nil)
	svc := newTestService(repo, gw)

	pending := &models.Payment{
		ID:        "pay-1",
		Gateway:   "mock",
		Authority: "AUTH-1",
		Status:    models.PaymentStatusPending,
	}
	winner := &models.Payment{
		ID:          "pay-1",
		Gateway:     "mock",
		Authority:   "AUTH-1",
		Status:      models.PaymentStatusCompleted,
		GatewayTxID: "REF-AUTH-1",
	}
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(pending, nil).Once()
	repo.On("CompletePayment", mock.Anything, "pay-1", "REF-AUTH-1",
		mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time"),
		mock.Anything).Return(0, nil)
	repo.On("GetPaymentByAuthority", mock.Anything, "AUTH-1").Return(winner, nil).Once()

	paymentRow, err := svc.Verify(context.Background(), "AUTH-1", "OK")
	require.NoError(t, err)

	// Условное обновление не прошло, возвращается результат победителя
	assert.Equal(t, models.PaymentStatusCompleted, paymentRow.Status)
	repo.AssertExpectations(t)
}
