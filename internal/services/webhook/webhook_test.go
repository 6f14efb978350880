package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// MockRepository реализует интерфейс webhook.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActiveWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Webhook), args.Error(1)
}

func (m *MockRepository) CreateWebhook(ctx context.Context, webhook models.Webhook) error {
	args := m.Called(ctx, webhook)
	return args.Error(0)
}

func (m *MockRepository) CreateWebhookDelivery(ctx context.Context, delivery models.WebhookDelivery) error {
	args := m.Called(ctx, delivery)
	return args.Error(0)
}

func (m *MockRepository) UpdateWebhookDelivery(ctx context.Context, id string, attempts int, status, lastError string, attemptAt time.Time) error {
	args := m.Called(ctx, id, attempts, status, lastError, attemptAt)
	return args.Error(0)
}

func newTestDispatcher(repo *MockRepository) *Dispatcher {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	// Без задержек между попытками, чтобы тест не спал
	return NewWithSchedule(repo, &http.Client{Timeout: time.Second},
		[]time.Duration{0, 0, 0}, logger)
}

func TestDispatchSignsPayload(t *testing.T) {
	var gotSignature, gotEvent string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Webhook-Signature")
		gotEvent = r.Header.Get("X-Webhook-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := new(MockRepository)
	d := newTestDispatcher(repo)

	wh := &models.Webhook{ID: "wh-1", UserID: "user-1", URL: srv.URL, Secret: "supersecretvalue", IsActive: true}
	repo.On("ListActiveWebhooks", mock.Anything, "user-1").Return([]*models.Webhook{wh}, nil)
	repo.On("CreateWebhookDelivery", mock.Anything, mock.AnythingOfType("models.WebhookDelivery")).Return(nil)
	repo.On("UpdateWebhookDelivery", mock.Anything, mock.AnythingOfType("string"), 1,
		models.WebhookDeliveryStatusSuccess, "", mock.AnythingOfType("time.Time")).Return(nil)

	d.Dispatch(context.Background(), "user-1", models.EventSubscriptionActivated,
		map[string]string{"subscription_id": "sub-1"})

	assert.Equal(t, models.EventSubscriptionActivated, gotEvent)

	mac := hmac.New(sha256.New, []byte("supersecretvalue"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
	repo.AssertExpectations(t)
}

func TestDispatchRetriesAndFails(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	repo := new(MockRepository)
	d := newTestDispatcher(repo)

	wh := &models.Webhook{ID: "wh-1", UserID: "user-1", URL: srv.URL, Secret: "supersecretvalue", IsActive: true}
	repo.On("ListActiveWebhooks", mock.Anything, "user-1").Return([]*models.Webhook{wh}, nil)
	repo.On("CreateWebhookDelivery", mock.Anything, mock.AnythingOfType("models.WebhookDelivery")).Return(nil)
	repo.On("UpdateWebhookDelivery", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("int"),
		mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	d.Dispatch(context.Background(), "user-1", models.EventSubscriptionActivated, map[string]string{})

	// Три попытки, затем доставка помечается неуспешной
	assert.Equal(t, int64(3), calls.Load())
	repo.AssertCalled(t, "UpdateWebhookDelivery", mock.Anything, mock.AnythingOfType("string"), 3,
		models.WebhookDeliveryStatusFailed, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time"))
}

func TestDispatchSkipsUnsubscribed(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := new(MockRepository)
	d := newTestDispatcher(repo)

	wh := &models.Webhook{
		ID: "wh-1", UserID: "user-1", URL: srv.URL, Secret: "supersecretvalue",
		EventTypes: []string{models.EventPaymentCreated}, IsActive: true,
	}
	repo.On("ListActiveWebhooks", mock.Anything, "user-1").Return([]*models.Webhook{wh}, nil)

	d.Dispatch(context.Background(), "user-1", models.EventSubscriptionActivated, map[string]string{})

	assert.Equal(t, int64(0), calls.Load())
	repo.AssertNotCalled(t, "CreateWebhookDelivery")
}

func TestSubscribed(t *testing.T) {
	all := &models.Webhook{}
	some := &models.Webhook{EventTypes: []string{models.EventPaymentCreated}}

	// Пустой список означает подписку на все события
	assert.True(t, subscribed(all, models.EventSubscriptionActivated))
	assert.True(t, subscribed(some, models.EventPaymentCreated))
	assert.False(t, subscribed(some, models.EventSubscriptionActivated))
}

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	d := newTestDispatcher(repo)

	repo.On("CreateWebhook", mock.Anything, mock.AnythingOfType("models.Webhook")).Return(nil)

	wh, err := d.Register(context.Background(), "user-1", models.DummyWebhook{
		URL:    "https://example.com/hook",
		Secret: "supersecretvalue",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", wh.UserID)
	assert.True(t, wh.IsActive)
	assert.NotEmpty(t, wh.ID)
}
