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

// CreateSubscription вставляет новую подписку в статусе PENDING.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"

	query := `INSERT INTO subscriptions (id, user_id, plan_id, status, auto_renew)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.PlanID, sub.Status, sub.AutoRenew)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.Status,
		&sub.AutoRenew, &sub.StartDate, &sub.EndDate, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscription возвращает подписку по ID.
func (s *Storage) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"

	query := `SELECT id, user_id, plan_id, status, auto_renew, start_date, end_date, created_at
			  FROM subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("subscription", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// ActivateSubscription выставляет статус ACTIVE и период действия подписки.
func (s *Storage) ActivateSubscription(ctx context.Context, id string, startDate, endDate time.Time) (int, error) {
	const op = "storage.ActivateSubscription"

	query := `UPDATE subscriptions
			  SET status = $1, start_date = $2, end_date = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query,
		models.SubscriptionStatusActive, startDate, endDate, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CancelSubscription выставляет статус CANCELLED и снимает автопродление.
// Дата окончания не изменяется.
func (s *Storage) CancelSubscription(ctx context.Context, id string) (int, error) {
	const op = "storage.CancelSubscription"

	query := `UPDATE subscriptions
			  SET status = $1, auto_renew = false
			  WHERE id = $2`
	result, err := s.DB.ExecContext(ctx, query, models.SubscriptionStatusCancelled, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetActiveSubscription возвращает действующую подписку пользователя:
// статус ACTIVE и дата окончания не раньше текущего момента.
func (s *Storage) GetActiveSubscription(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"

	query := `SELECT id, user_id, plan_id, status, auto_renew, start_date, end_date, created_at
			  FROM subscriptions
			  WHERE user_id = $1 AND status = $2 AND end_date >= $3
			  ORDER BY end_date DESC
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query,
		userID, models.SubscriptionStatusActive, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("active subscription", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}
