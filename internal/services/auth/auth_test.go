package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/config"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/ratelimit"
	"github.com/magabrotheeeer/subscription-billing/internal/services/notification"
)

// fakeRepo — хранилище кодов в памяти для сквозных сценариев входа.
type fakeRepo struct {
	code    *models.OtpCode
	expired bool
	users   map[string]*models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*models.User)}
}

func (r *fakeRepo) CreateOtpCode(_ context.Context, code models.OtpCode) error {
	r.code = &code
	r.expired = false
	return nil
}

func (r *fakeRepo) GetActiveOtpCode(_ context.Context, phone string, now time.Time) (*models.OtpCode, error) {
	if r.code == nil || r.code.Phone != phone || r.code.UsedAt != nil ||
		r.expired || !now.Before(r.code.ExpiresAt) {
		return nil, errors.New("no rows")
	}
	return r.code, nil
}

func (r *fakeRepo) IncrementOtpAttempts(_ context.Context, id string) (int, error) {
	if r.code == nil || r.code.ID != id {
		return 0, errors.New("no rows")
	}
	r.code.Attempts++
	return r.code.Attempts, nil
}

func (r *fakeRepo) ConsumeOtpCode(_ context.Context, id string, usedAt time.Time) (int, error) {
	if r.code == nil || r.code.ID != id || r.code.UsedAt != nil {
		return 0, nil
	}
	r.code.UsedAt = &usedAt
	return 1, nil
}

func (r *fakeRepo) ExpireOtpCode(_ context.Context, id string, _ time.Time) error {
	if r.code != nil && r.code.ID == id {
		r.expired = true
	}
	return nil
}

func (r *fakeRepo) FindOrCreateUserByPhone(_ context.Context, id, phone string) (*models.User, error) {
	if user, ok := r.users[phone]; ok {
		return user, nil
	}
	user := &models.User{ID: id, Phone: phone}
	r.users[phone] = user
	return user, nil
}

// fakeKeyIssuer выпускает предсказуемый ключ.
type fakeKeyIssuer struct {
	issued int
}

func (f *fakeKeyIssuer) Issue(_ context.Context, label string, userID *string) (*models.APIKey, string, error) {
	f.issued++
	key := &models.APIKey{ID: "key-1", Label: label, UserID: userID, IsActive: true}
	return key, "sk_testkey", nil
}

// capturingNotifier запоминает отправленные события.
type capturingNotifier struct {
	events []models.NotificationEvent
}

func (n *capturingNotifier) Send(event models.NotificationEvent) notification.Result {
	n.events = append(n.events, event)
	return notification.Result{Sent: true}
}

// lastCode достаёт открытый код из текста последнего SMS.
func (n *capturingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, n.events)
	body := n.events[len(n.events)-1].Body
	code := strings.TrimPrefix(body, "Код входа: ")
	require.NotEqual(t, body, code)
	return code
}

func otpConfig() config.OTP {
	return config.OTP{
		CodeLength:  6,
		CodeTTL:     2 * time.Minute,
		MaxAttempts: 5,
		RateMax:     3,
		RateWindow:  10 * time.Minute,
	}
}

func newTestService(repo Repository, notifier Notifier, nowFn func() time.Time) (*Service, *fakeKeyIssuer) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	limiter := ratelimit.New(ratelimit.NewMemoryStore(nowFn), 3, 10*time.Minute)
	keys := &fakeKeyIssuer{}
	return New(repo, limiter, keys, notifier, otpConfig(), nowFn, logger), keys
}

func TestRequestOtp(t *testing.T) {
	repo := newFakeRepo()
	notifier := &capturingNotifier{}
	svc, _ := newTestService(repo, notifier, nil)

	err := svc.RequestOtp(context.Background(), "+989121234567")
	require.NoError(t, err)

	require.NotNil(t, repo.code)
	// Номер нормализован, хранится только хэш кода
	assert.Equal(t, "09121234567", repo.code.Phone)
	code := notifier.lastCode(t)
	assert.Len(t, code, 6)
	assert.NotEqual(t, code, repo.code.CodeHash)
}

func TestRequestOtpInvalidPhone(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &capturingNotifier{}, nil)

	err := svc.RequestOtp(context.Background(), "not-a-phone")
	require.Error(t, err)

	var validationErr *apperr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRequestOtpRateLimited(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(newFakeRepo(), &capturingNotifier{}, func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RequestOtp(ctx, "09121234567"))
	}

	err := svc.RequestOtp(ctx, "09121234567")
	require.Error(t, err)
	var rateLimitErr *apperr.RateLimitError
	assert.ErrorAs(t, err, &rateLimitErr)

	// Другой номер не затронут лимитом
	require.NoError(t, svc.RequestOtp(ctx, "09131234567"))
}

func TestVerifyOtpRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	notifier := &capturingNotifier{}
	svc, keys := newTestService(repo, notifier, nil)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "09121234567"))
	code := notifier.lastCode(t)

	user, apiKey, err := svc.VerifyOtp(ctx, "+989121234567", code)
	require.NoError(t, err)

	assert.Equal(t, "09121234567", user.Phone)
	assert.Equal(t, "sk_testkey", apiKey)
	assert.Equal(t, 1, keys.issued)

	// Повторная проверка того же кода отклоняется
	_, _, err = svc.VerifyOtp(ctx, "09121234567", code)
	require.Error(t, err)
	var unauthorizedErr *apperr.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorizedErr)
}

func TestVerifyOtpWrongCode(t *testing.T) {
	repo := newFakeRepo()
	notifier := &capturingNotifier{}
	svc, keys := newTestService(repo, notifier, nil)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "09121234567"))

	_, _, err := svc.VerifyOtp(ctx, "09121234567", "000000")
	require.Error(t, err)
	var unauthorizedErr *apperr.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorizedErr)
	assert.Equal(t, 0, keys.issued)

	// Правильный код после одной неудачной попытки всё ещё работает
	code := notifier.lastCode(t)
	_, _, err = svc.VerifyOtp(ctx, "09121234567", code)
	require.NoError(t, err)
}

func TestVerifyOtpLockedAfterMaxAttempts(t *testing.T) {
	repo := newFakeRepo()
	notifier := &capturingNotifier{}
	svc, _ := newTestService(repo, notifier, nil)
	ctx := context.Background()

	require.NoError(t, svc.RequestOtp(ctx, "09121234567"))
	code := notifier.lastCode(t)

	for i := 0; i < 5; i++ {
		_, _, err := svc.VerifyOtp(ctx, "09121234567", "000000")
		require.Error(t, err)
	}

	// Код погашен после исчерпания попыток, правильное значение не помогает
	_, _, err := svc.VerifyOtp(ctx, "09121234567", code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found or expired")
}
