package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// CreatePlan вставляет новый тарифный план.
func (s *Storage) CreatePlan(ctx context.Context, plan models.Plan) error {
	const op = "storage.CreatePlan"

	query := `INSERT INTO plans (id, name, price, currency, duration_days, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		plan.ID, plan.Name, plan.Price, plan.Currency, plan.DurationDays, plan.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetPlan возвращает тарифный план по ID.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"

	query := `SELECT id, name, price, currency, duration_days, is_active, created_at
			  FROM plans WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var plan models.Plan
	err := row.Scan(&plan.ID, &plan.Name, &plan.Price, &plan.Currency,
		&plan.DurationDays, &plan.IsActive, &plan.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("plan", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// ListActivePlans возвращает все планы, доступные для новых подписок.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListActivePlans"

	query := `SELECT id, name, price, currency, duration_days, is_active, created_at
			  FROM plans
			  WHERE is_active = true
			  ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Plan
	for rows.Next() {
		var plan models.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.Price, &plan.Currency,
			&plan.DurationDays, &plan.IsActive, &plan.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetPlanActive переключает доступность плана, остальные поля неизменяемы.
func (s *Storage) SetPlanActive(ctx context.Context, id string, isActive bool) (int, error) {
	const op = "storage.SetPlanActive"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE plans SET is_active = $1 WHERE id = $2`, isActive, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
