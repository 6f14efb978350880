package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-billing/internal/migrations"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его идентификатор
func (f *TestDataFactory) CreateUser(t *testing.T, phone string) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (id, phone) VALUES ($1, $2)`,
		id, phone)
	require.NoError(t, err)
	return id
}

// CreatePlan создает тестовый тарифный план и возвращает его идентификатор
func (f *TestDataFactory) CreatePlan(t *testing.T, name string, price int64,
	durationDays int, isActive bool) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO plans
		(id, name, price, currency, duration_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, price, "IRR", durationDays, isActive)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую подписку и возвращает её идентификатор
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID, planID, status string) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions
		(id, user_id, plan_id, status, auto_renew)
		VALUES ($1, $2, $3, $4, false)`,
		id, userID, planID, status)
	require.NoError(t, err)
	return id
}

// CreatePayment создает тестовый платеж и возвращает его идентификатор
func (f *TestDataFactory) CreatePayment(t *testing.T, subscriptionID, authority, status string) string {
	id := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO payments
		(id, subscription_id, amount, currency, gateway, authority, payment_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, subscriptionID, int64(990000), "IRR", "zarinpal", authority,
		"https://gateway.test/pay/"+authority, status)
	require.NoError(t, err)
	return id
}

// CreateOtpCode создает тестовый одноразовый код
func (f *TestDataFactory) CreateOtpCode(t *testing.T, phone, codeHash string, expiresAt time.Time) string {
	id := uuid.New().String()
	err := f.storage.CreateOtpCode(context.Background(), models.OtpCode{
		ID:        id,
		Phone:     phone,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifySubscriptionStatus проверяет статус подписки в БД
func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, subscriptionID, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow(
		"SELECT status FROM subscriptions WHERE id = $1", subscriptionID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyPaymentStatus проверяет статус платежа в БД
func (v *TestVerification) VerifyPaymentStatus(t *testing.T, paymentID, expectedStatus string) {
	var status string
	err := v.storage.DB.QueryRow(
		"SELECT status FROM payments WHERE id = $1", paymentID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyDeliveryState проверяет статус и число попыток доставки вебхука
func (v *TestVerification) VerifyDeliveryState(t *testing.T, deliveryID, expectedStatus string, expectedAttempts int) {
	var status string
	var attempts int
	err := v.storage.DB.QueryRow(
		"SELECT status, attempts FROM webhook_deliveries WHERE id = $1", deliveryID).
		Scan(&status, &attempts)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
	require.Equal(t, expectedAttempts, attempts)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
// и применяет к ней боевые миграции из каталога migrations.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			if err = storage.DB.Ping(); err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath), "failed to run migrations")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
