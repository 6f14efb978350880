package models

import "time"

// Статусы платежа. COMPLETED и FAILED терминальны: повторная попытка
// оплаты создаёт новую запись, а не переиспользует старую.
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Payment представляет одну попытку оплаты подписки через платёжный шлюз.
// Authority — корреляционный идентификатор, выданный шлюзом; он уникален
// и служит ключом при верификации.
type Payment struct {
	ID             string         `json:"id"`                 // Уникальный идентификатор платежа
	SubscriptionID string         `json:"subscriptionId"`     // Идентификатор подписки
	Amount         int64          `json:"amount"`             // Сумма в минимальных единицах валюты
	Currency       string         `json:"currency"`           // Код валюты
	Gateway        string         `json:"gateway"`            // Ключ шлюза в реестре
	Authority      string         `json:"authority"`          // Корреляционный идентификатор шлюза
	PaymentURL     string         `json:"paymentUrl"`         // Ссылка для перехода на оплату
	Status         string         `json:"status"`             // PENDING, COMPLETED или FAILED
	GatewayTxID    string         `json:"gatewayTxId"`        // Идентификатор транзакции на стороне шлюза
	PaidAt         *time.Time     `json:"paidAt"`             // Момент оплаты
	VerifiedAt     *time.Time     `json:"verifiedAt"`         // Момент верификации
	Metadata       map[string]any `json:"metadata,omitempty"` // Произвольные данные, сливаются при создании и верификации
	CreatedAt      time.Time      `json:"createdAt"`          // Дата создания записи
}

// DummyPaymentCreate используется для приёма запроса на создание платежа
// по существующей подписке.
type DummyPaymentCreate struct {
	SubscriptionID string `json:"subscription_id" validate:"required,uuid"`
	Gateway        string `json:"gateway"`
	UserEmail      string `json:"user_email" validate:"omitempty,email"`
	UserPhone      string `json:"user_phone"`
}

// DummyPaymentVerify используется для приёма запроса на верификацию платежа.
// Status — значение, вернувшееся из колбэка шлюза (например OK или NOK).
type DummyPaymentVerify struct {
	Authority string `json:"authority" validate:"required"`
	Status    string `json:"status"`
}
