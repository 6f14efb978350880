package models

import "time"

// Статусы подписки.
const (
	SubscriptionStatusPending   = "PENDING"
	SubscriptionStatusActive    = "ACTIVE"
	SubscriptionStatusExpired   = "EXPIRED"
	SubscriptionStatusCancelled = "CANCELLED"
)

// Subscription представляет подписку пользователя на тарифный план.
// Подписка создаётся в статусе PENDING и переходит в ACTIVE только после
// успешной верификации платежа. Отмена выставляет CANCELLED и снимает
// автопродление, не изменяя дату окончания.
type Subscription struct {
	ID        string     `json:"id"`        // Уникальный идентификатор подписки
	UserID    string     `json:"userId"`    // Идентификатор пользователя
	PlanID    string     `json:"planId"`    // Идентификатор тарифного плана
	Status    string     `json:"status"`    // PENDING, ACTIVE, EXPIRED или CANCELLED
	AutoRenew bool       `json:"autoRenew"` // Признак автопродления
	StartDate *time.Time `json:"startDate"` // Дата активации, nil до первой оплаты
	EndDate   *time.Time `json:"endDate"`   // Дата окончания, nil до первой оплаты
	CreatedAt time.Time  `json:"createdAt"` // Дата создания записи
}

// DummySubscription используется для приёма данных из JSON-запроса
// на создание подписки.
type DummySubscription struct {
	UserID    string `json:"user_id" validate:"required,uuid"`
	PlanID    string `json:"plan_id" validate:"required,uuid"`
	Gateway   string `json:"gateway"`
	AutoRenew bool   `json:"auto_renew"`
	UserEmail string `json:"user_email" validate:"omitempty,email"`
	UserPhone string `json:"user_phone"`
}
