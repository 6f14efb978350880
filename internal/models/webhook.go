package models

import "time"

// Статусы доставки вебхука.
const (
	WebhookDeliveryStatusPending = "PENDING"
	WebhookDeliveryStatusSuccess = "SUCCESS"
	WebhookDeliveryStatusFailed  = "FAILED"
)

// Webhook представляет подписку пользователя на события системы.
// Пустой список EventTypes означает подписку на все события.
type Webhook struct {
	ID         string    `json:"id"`         // Уникальный идентификатор вебхука
	UserID     string    `json:"userId"`     // Владелец вебхука
	URL        string    `json:"url"`        // Адрес доставки
	Secret     string    `json:"-"`          // Секрет для подписи HMAC, наружу не отдаётся
	EventTypes []string  `json:"eventTypes"` // Список типов событий, пустой — все события
	IsActive   bool      `json:"isActive"`   // Действует ли вебхук
	CreatedAt  time.Time `json:"createdAt"`  // Дата создания
}

// WebhookDelivery представляет одну попытку доставки события на вебхук,
// включая подпись и количество предпринятых попыток.
type WebhookDelivery struct {
	ID            string     // Уникальный идентификатор доставки
	WebhookID     string     // Идентификатор вебхука
	EventType     string     // Тип события
	Payload       []byte     // Тело события
	Signature     string     // HMAC-подпись тела
	Attempts      int        // Количество выполненных попыток
	Status        string     // PENDING, SUCCESS или FAILED
	LastError     string     // Текст последней ошибки доставки
	LastAttemptAt *time.Time // Момент последней попытки
	CreatedAt     time.Time  // Дата создания
}

// DummyWebhook используется для приёма запроса на регистрацию вебхука.
type DummyWebhook struct {
	URL        string   `json:"url" validate:"required,url"`
	Secret     string   `json:"secret" validate:"required,min=16"`
	EventTypes []string `json:"event_types"`
}
