package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// CreateWebhook вставляет новый вебхук пользователя.
func (s *Storage) CreateWebhook(ctx context.Context, webhook models.Webhook) error {
	const op = "storage.CreateWebhook"

	eventTypes, err := json.Marshal(webhook.EventTypes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO webhooks (id, user_id, url, secret, event_types, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = s.DB.ExecContext(ctx, query,
		webhook.ID, webhook.UserID, webhook.URL, webhook.Secret,
		eventTypes, webhook.IsActive)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListActiveWebhooks возвращает действующие вебхуки пользователя.
func (s *Storage) ListActiveWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error) {
	const op = "storage.ListActiveWebhooks"

	query := `SELECT id, user_id, url, secret, event_types, is_active, created_at
			  FROM webhooks
			  WHERE user_id = $1 AND is_active = true`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Webhook
	for rows.Next() {
		var webhook models.Webhook
		var eventTypes []byte
		if err := rows.Scan(&webhook.ID, &webhook.UserID, &webhook.URL, &webhook.Secret,
			&eventTypes, &webhook.IsActive, &webhook.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(eventTypes) > 0 {
			if err := json.Unmarshal(eventTypes, &webhook.EventTypes); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		result = append(result, &webhook)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateWebhookDelivery вставляет запись о доставке события.
func (s *Storage) CreateWebhookDelivery(ctx context.Context, delivery models.WebhookDelivery) error {
	const op = "storage.CreateWebhookDelivery"

	query := `INSERT INTO webhook_deliveries (id, webhook_id, event_type, payload, signature, status)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		delivery.ID, delivery.WebhookID, delivery.EventType, delivery.Payload,
		delivery.Signature, delivery.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateWebhookDelivery записывает исход очередной попытки доставки.
func (s *Storage) UpdateWebhookDelivery(ctx context.Context, id string, attempts int, status, lastError string, attemptAt time.Time) error {
	const op = "storage.UpdateWebhookDelivery"

	query := `UPDATE webhook_deliveries
			  SET attempts = $1, status = $2, last_error = $3, last_attempt_at = $4
			  WHERE id = $5`
	_, err := s.DB.ExecContext(ctx, query, attempts, status, lastError, attemptAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
