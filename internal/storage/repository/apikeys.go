package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// CreateAPIKey вставляет новый ключ API.
func (s *Storage) CreateAPIKey(ctx context.Context, key models.APIKey) error {
	const op = "storage.CreateAPIKey"

	query := `INSERT INTO api_keys (id, hash, label, user_id, is_active)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.ExecContext(ctx, query,
		key.ID, key.Hash, key.Label, key.UserID, key.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListActiveAPIKeys возвращает все действующие ключи. Проверка
// предъявленного ключа перебирает их bcrypt-хэши.
func (s *Storage) ListActiveAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	const op = "storage.ListActiveAPIKeys"

	query := `SELECT id, hash, label, user_id, is_active, last_used_at, created_at
			  FROM api_keys WHERE is_active = true`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.APIKey
	for rows.Next() {
		var key models.APIKey
		if err := rows.Scan(&key.ID, &key.Hash, &key.Label, &key.UserID,
			&key.IsActive, &key.LastUsedAt, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeactivateAPIKey отзывает ключ. Записи никогда не удаляются физически.
func (s *Storage) DeactivateAPIKey(ctx context.Context, id string) (int, error) {
	const op = "storage.DeactivateAPIKey"

	result, err := s.DB.ExecContext(ctx,
		`UPDATE api_keys SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// TouchAPIKey обновляет момент последнего использования ключа.
func (s *Storage) TouchAPIKey(ctx context.Context, id string, usedAt time.Time) error {
	const op = "storage.TouchAPIKey"

	_, err := s.DB.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, usedAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
