// Package webhook реализует рассылку событий на зарегистрированные
// вебхуки пользователей: подпись HMAC, запись доставки и ограниченные
// повторы. Рассылка лучшим образом: ошибки записываются в запись
// доставки и лог, но никогда не распространяются вызывающему.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Repository определяет методы хранилища для вебхуков и их доставок.
type Repository interface {
	// ListActiveWebhooks возвращает действующие вебхуки пользователя.
	ListActiveWebhooks(ctx context.Context, userID string) ([]*models.Webhook, error)
	// CreateWebhook вставляет новый вебхук.
	CreateWebhook(ctx context.Context, webhook models.Webhook) error
	// CreateWebhookDelivery вставляет запись о доставке.
	CreateWebhookDelivery(ctx context.Context, delivery models.WebhookDelivery) error
	// UpdateWebhookDelivery записывает исход попытки.
	UpdateWebhookDelivery(ctx context.Context, id string, attempts int, status, lastError string, attemptAt time.Time) error
}

// Dispatcher рассылает события вебхуками с повторами по фиксированному
// расписанию: немедленно, затем примерно через 1с и 3с.
type Dispatcher struct {
	repo       Repository
	httpClient *http.Client
	delays     []time.Duration
	log        *slog.Logger
}

// New создает новый Dispatcher со стандартным расписанием повторов.
func New(repo Repository, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		delays:     []time.Duration{0, time.Second, 3 * time.Second},
		log:        log,
	}
}

// NewWithSchedule создает Dispatcher с заданным расписанием повторов,
// используется в тестах.
func NewWithSchedule(repo Repository, client *http.Client, delays []time.Duration, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		httpClient: client,
		delays:     delays,
		log:        log,
	}
}

// Register создает вебхук пользователя.
func (d *Dispatcher) Register(ctx context.Context, userID string, req models.DummyWebhook) (*models.Webhook, error) {
	webhook := models.Webhook{
		ID:         uuid.New().String(),
		UserID:     userID,
		URL:        req.URL,
		Secret:     req.Secret,
		EventTypes: req.EventTypes,
		IsActive:   true,
	}
	if err := d.repo.CreateWebhook(ctx, webhook); err != nil {
		return nil, err
	}
	d.log.Info("webhook registered",
		slog.String("webhook_id", webhook.ID), slog.String("user_id", userID))
	return &webhook, nil
}

// List возвращает действующие вебхуки пользователя.
func (d *Dispatcher) List(ctx context.Context, userID string) ([]*models.Webhook, error) {
	return d.repo.ListActiveWebhooks(ctx, userID)
}

// sign возвращает hex-подпись HMAC-SHA256 тела события секретом вебхука.
func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// subscribed сообщает, подписан ли вебхук на тип события.
// Пустой список типов означает подписку на все события.
func subscribed(webhook *models.Webhook, eventType string) bool {
	if len(webhook.EventTypes) == 0 {
		return true
	}
	return slices.Contains(webhook.EventTypes, eventType)
}

// Dispatch рассылает событие на все подходящие вебхуки пользователя.
// Для каждого вебхука создается запись доставки и выполняется до трёх
// попыток; итоговый статус — SUCCESS или FAILED, без последующих повторов.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, eventType string, payload any) {
	const op = "webhook.Dispatch"

	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error("failed to marshal webhook payload", sl.Err(err))
		return
	}

	webhooks, err := d.repo.ListActiveWebhooks(ctx, userID)
	if err != nil {
		d.log.Error("failed to list webhooks", sl.Err(err))
		return
	}

	for _, wh := range webhooks {
		if !subscribed(wh, eventType) {
			continue
		}
		d.deliver(ctx, wh, eventType, body)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, wh *models.Webhook, eventType string, body []byte) {
	signature := sign(wh.Secret, body)
	delivery := models.WebhookDelivery{
		ID:        uuid.New().String(),
		WebhookID: wh.ID,
		EventType: eventType,
		Payload:   body,
		Signature: signature,
		Status:    models.WebhookDeliveryStatusPending,
	}
	if err := d.repo.CreateWebhookDelivery(ctx, delivery); err != nil {
		d.log.Error("failed to record webhook delivery", sl.Err(err))
		return
	}

	var lastErr string
	for attempt, delay := range d.delays {
		if delay > 0 {
			time.Sleep(delay)
		}

		err := d.post(ctx, wh, eventType, delivery.ID, signature, body)
		attemptAt := time.Now().UTC()
		if err == nil {
			if updErr := d.repo.UpdateWebhookDelivery(ctx, delivery.ID, attempt+1,
				models.WebhookDeliveryStatusSuccess, "", attemptAt); updErr != nil {
				d.log.Error("failed to update webhook delivery", sl.Err(updErr))
			}
			d.log.Info("webhook delivered",
				slog.String("webhook_id", wh.ID), slog.String("event", eventType))
			return
		}

		lastErr = err.Error()
		status := models.WebhookDeliveryStatusPending
		if attempt == len(d.delays)-1 {
			status = models.WebhookDeliveryStatusFailed
		}
		if updErr := d.repo.UpdateWebhookDelivery(ctx, delivery.ID, attempt+1,
			status, lastErr, attemptAt); updErr != nil {
			d.log.Error("failed to update webhook delivery", sl.Err(updErr))
		}
	}

	d.log.Warn("webhook delivery failed after all attempts",
		slog.String("webhook_id", wh.ID),
		slog.String("event", eventType),
		slog.String("last_error", lastErr))
}

func (d *Dispatcher) post(ctx context.Context, wh *models.Webhook, eventType, deliveryID, signature string, body []byte) error {
	const op = "webhook.post"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature)
	req.Header.Set("X-Webhook-Event", eventType)
	req.Header.Set("X-Webhook-Delivery", deliveryID)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}
	return nil
}
