// Package auth реализует вход по одноразовому коду: выдачу кода
// с ограничением частоты запросов, проверку кода и выпуск ключа API
// при успешном входе.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/config"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/phone"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/metrics"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/ratelimit"
	"github.com/magabrotheeeer/subscription-billing/internal/services/notification"
)

// Repository определяет методы хранилища для работы с кодами и пользователями.
type Repository interface {
	// CreateOtpCode вставляет новую запись кода.
	CreateOtpCode(ctx context.Context, code models.OtpCode) error
	// GetActiveOtpCode возвращает свежий непогашенный код для номера.
	GetActiveOtpCode(ctx context.Context, phoneNumber string, now time.Time) (*models.OtpCode, error)
	// IncrementOtpAttempts увеличивает счётчик попыток проверки.
	IncrementOtpAttempts(ctx context.Context, id string) (int, error)
	// ConsumeOtpCode помечает код использованным.
	ConsumeOtpCode(ctx context.Context, id string, usedAt time.Time) (int, error)
	// ExpireOtpCode гасит код после исчерпания попыток.
	ExpireOtpCode(ctx context.Context, id string, now time.Time) error
	// FindOrCreateUserByPhone возвращает или создает пользователя по номеру.
	FindOrCreateUserByPhone(ctx context.Context, id, phoneNumber string) (*models.User, error)
}

// KeyIssuer выпускает ключ API для пользователя.
type KeyIssuer interface {
	Issue(ctx context.Context, label string, userID *string) (*models.APIKey, string, error)
}

// Notifier ставит уведомление в очередь, не возвращая ошибку наружу.
type Notifier interface {
	Send(event models.NotificationEvent) notification.Result
}

// Service реализует вход по одноразовому коду.
type Service struct {
	repo     Repository
	limiter  *ratelimit.Limiter
	keys     KeyIssuer
	notifier Notifier
	cfg      config.OTP
	now      func() time.Time
	log      *slog.Logger
}

// New создает новый экземпляр Service. nowFn позволяет подменить часы
// в тестах; при nil используется time.Now.
func New(repo Repository, limiter *ratelimit.Limiter, keys KeyIssuer, notifier Notifier, cfg config.OTP, nowFn func() time.Time, log *slog.Logger) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		repo:     repo,
		limiter:  limiter,
		keys:     keys,
		notifier: notifier,
		cfg:      cfg,
		now:      nowFn,
		log:      log,
	}
}

// generateCode возвращает случайный числовой код заданной длины,
// полученный из криптографически стойкого источника.
func generateCode(length int) (string, error) {
	const op = "auth.generateCode"
	var b strings.Builder
	for range length {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		b.WriteString(digit.String())
	}
	return b.String(), nil
}

// hashCode возвращает sha256-хэш кода в hex-виде. Коды короткоживущие,
// поэтому быстрый хэш с константным сравнением достаточен.
func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// RequestOtp выдаёт одноразовый код для номера телефона.
//
// Номер нормализуется, затем применяется лимитер по ключу otp:<номер>.
// Хранится только хэш кода. Отправка SMS — по возможности: сбой
// транспорта логируется и не превращается в ошибку запроса, код при
// этом остаётся действительным.
func (s *Service) RequestOtp(ctx context.Context, rawPhone string) error {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return apperr.NewValidation("invalid phone number")
	}

	if err := s.limiter.Allow(ctx, "otp:"+normalized); err != nil {
		metrics.OtpRequests.WithLabelValues("rate_limited").Inc()
		return err
	}

	code, err := generateCode(s.cfg.CodeLength)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	row := models.OtpCode{
		ID:        uuid.New().String(),
		Phone:     normalized,
		CodeHash:  hashCode(code),
		ExpiresAt: now.Add(s.cfg.CodeTTL),
	}
	if err := s.repo.CreateOtpCode(ctx, row); err != nil {
		metrics.OtpRequests.WithLabelValues("error").Inc()
		return err
	}

	res := s.notifier.Send(models.NotificationEvent{
		Type:  models.EventOtpRequested,
		Phone: normalized,
		Body:  fmt.Sprintf("Код входа: %s", code),
	})
	if res.Err != nil {
		s.log.Warn("otp notification was not sent", sl.Err(res.Err))
	}

	metrics.OtpRequests.WithLabelValues("ok").Inc()
	s.log.Info("otp code issued", slog.String("phone", normalized))
	return nil
}

// VerifyOtp проверяет код для номера телефона. Счётчик попыток растёт
// при любом исходе; после исчерпания попыток код гасится. При успехе
// код помечается использованным, пользователь находится или создается
// по номеру, и для него выпускается новый ключ API. Открытое значение
// ключа возвращается один раз.
func (s *Service) VerifyOtp(ctx context.Context, rawPhone, code string) (*models.User, string, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, "", apperr.NewValidation("invalid phone number")
	}

	now := s.now().UTC()
	row, err := s.repo.GetActiveOtpCode(ctx, normalized, now)
	if err != nil {
		return nil, "", apperr.NewUnauthorized("otp code not found or expired")
	}

	attempts, err := s.repo.IncrementOtpAttempts(ctx, row.ID)
	if err != nil {
		return nil, "", err
	}

	if subtle.ConstantTimeCompare([]byte(row.CodeHash), []byte(hashCode(code))) != 1 {
		if attempts >= s.cfg.MaxAttempts {
			if err := s.repo.ExpireOtpCode(ctx, row.ID, now); err != nil {
				s.log.Error("failed to expire otp code", sl.Err(err))
			}
			s.log.Warn("otp code locked after too many attempts",
				slog.String("phone", normalized))
		}
		return nil, "", apperr.NewUnauthorized("invalid otp code")
	}

	consumed, err := s.repo.ConsumeOtpCode(ctx, row.ID, now)
	if err != nil {
		return nil, "", err
	}
	if consumed == 0 {
		return nil, "", apperr.NewUnauthorized("otp code is already used")
	}

	user, err := s.repo.FindOrCreateUserByPhone(ctx, uuid.New().String(), normalized)
	if err != nil {
		return nil, "", err
	}

	_, plaintext, err := s.keys.Issue(ctx, "otp-login", &user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info("otp login succeeded", slog.String("user_id", user.ID))
	return user, plaintext, nil
}
