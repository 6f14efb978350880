package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// CreateOtpCode вставляет новую запись одноразового кода.
func (s *Storage) CreateOtpCode(ctx context.Context, code models.OtpCode) error {
	const op = "storage.CreateOtpCode"

	query := `INSERT INTO otp_codes (id, phone, code_hash, expires_at)
			  VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query, code.ID, code.Phone, code.CodeHash, code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetActiveOtpCode возвращает самый свежий непогашенный и непросроченный
// код для номера телефона.
func (s *Storage) GetActiveOtpCode(ctx context.Context, phoneNumber string, now time.Time) (*models.OtpCode, error) {
	const op = "storage.GetActiveOtpCode"

	query := `SELECT id, phone, code_hash, expires_at, attempts, used_at, created_at
			  FROM otp_codes
			  WHERE phone = $1 AND used_at IS NULL AND expires_at > $2
			  ORDER BY created_at DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, phoneNumber, now)

	var code models.OtpCode
	err := row.Scan(&code.ID, &code.Phone, &code.CodeHash, &code.ExpiresAt,
		&code.Attempts, &code.UsedAt, &code.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("otp code", phoneNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &code, nil
}

// IncrementOtpAttempts увеличивает счётчик попыток проверки кода
// и возвращает его новое значение.
func (s *Storage) IncrementOtpAttempts(ctx context.Context, id string) (int, error) {
	const op = "storage.IncrementOtpAttempts"

	var attempts int
	err := s.DB.QueryRowContext(ctx,
		`UPDATE otp_codes SET attempts = attempts + 1 WHERE id = $1 RETURNING attempts`,
		id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return attempts, nil
}

// ConsumeOtpCode помечает код использованным. Повторное погашение
// невозможно: обновляются только записи с used_at IS NULL.
func (s *Storage) ConsumeOtpCode(ctx context.Context, id string, usedAt time.Time) (int, error) {
	const op = "storage.ConsumeOtpCode"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE otp_codes SET used_at = $1 WHERE id = $2 AND used_at IS NULL`,
		usedAt, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ExpireOtpCode принудительно гасит код после исчерпания попыток проверки.
func (s *Storage) ExpireOtpCode(ctx context.Context, id string, now time.Time) error {
	const op = "storage.ExpireOtpCode"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE otp_codes SET expires_at = $1 WHERE id = $2`, now, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
