package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// FindOrCreateUserByPhone возвращает пользователя с данным номером,
// создавая его при отсутствии.
func (s *Storage) FindOrCreateUserByPhone(ctx context.Context, id, phone string) (*models.User, error) {
	const op = "storage.FindOrCreateUserByPhone"

	query := `INSERT INTO users (id, phone)
			  VALUES ($1, $2)
			  ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
			  RETURNING id, phone, COALESCE(email, ''), created_at`
	row := s.DB.QueryRowContext(ctx, query, id, phone)

	var user models.User
	if err := row.Scan(&user.ID, &user.Phone, &user.Email, &user.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"

	query := `SELECT id, phone, COALESCE(email, ''), created_at FROM users WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Phone, &user.Email, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NewNotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
