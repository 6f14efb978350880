package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// CreatePayment вставляет новый платёж в статусе PENDING.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) error {
	const op = "storage.CreatePayment"

	metadata, err := json.Marshal(payment.Metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO payments (id, subscription_id, amount, currency, gateway,
			      authority, payment_url, status, metadata)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = s.DB.ExecContext(ctx, query,
		payment.ID, payment.SubscriptionID, payment.Amount, payment.Currency,
		payment.Gateway, payment.Authority, payment.PaymentURL, payment.Status, metadata)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var payment models.Payment
	var gatewayTxID sql.NullString
	var metadata []byte
	err := row.Scan(&payment.ID, &payment.SubscriptionID, &payment.Amount,
		&payment.Currency, &payment.Gateway, &payment.Authority, &payment.PaymentURL,
		&payment.Status, &gatewayTxID, &payment.PaidAt, &payment.VerifiedAt,
		&metadata, &payment.CreatedAt)
	if err != nil {
		return nil, err
	}
	payment.GatewayTxID = gatewayTxID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &payment.Metadata); err != nil {
			return nil, err
		}
	}
	return &payment, nil
}

const paymentColumns = `id, subscription_id, amount, currency, gateway, authority,
			  payment_url, status, gateway_tx_id, paid_at, verified_at, metadata, created_at`

// GetPaymentByAuthority возвращает платёж по authority шлюза.
func (s *Storage) GetPaymentByAuthority(ctx context.Context, authority string) (*models.Payment, error) {
	const op = "storage.GetPaymentByAuthority"

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE authority = $1`
	payment, err := scanPayment(s.DB.QueryRowContext(ctx, query, authority))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("payment", authority)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// ListPaymentsBySubscription возвращает все платежи подписки от новых к старым.
func (s *Storage) ListPaymentsBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsBySubscription"

	query := `SELECT ` + paymentColumns + ` FROM payments
			  WHERE subscription_id = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CompletePayment переводит PENDING-платёж в COMPLETED и записывает
// реквизиты верификации. Обновление условное: уже терминальная запись
// не перезаписывается, о чём говорит нулевое число затронутых строк.
func (s *Storage) CompletePayment(ctx context.Context, id, gatewayTxID string, paidAt, verifiedAt time.Time, metadata map[string]any) (int, error) {
	const op = "storage.CompletePayment"

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE payments
			  SET status = $1, gateway_tx_id = $2, paid_at = $3, verified_at = $4, metadata = $5
			  WHERE id = $6 AND status = $7`
	result, err := s.DB.ExecContext(ctx, query,
		models.PaymentStatusCompleted, gatewayTxID, paidAt, verifiedAt, metadataJSON,
		id, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// FailPayment переводит PENDING-платёж в FAILED.
func (s *Storage) FailPayment(ctx context.Context, id string) (int, error) {
	const op = "storage.FailPayment"

	query := `UPDATE payments SET status = $1 WHERE id = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query,
		models.PaymentStatusFailed, id, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
