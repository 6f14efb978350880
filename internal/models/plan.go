// Package models содержит доменные структуры биллинга: тарифные планы,
// подписки, платежи, одноразовые коды и ключи API, а также вспомогательные
// типы для приёма данных из JSON-запросов.
package models

import "time"

// Plan представляет тарифный план подписки.
// Цена хранится в минимальных единицах валюты (целое число),
// длительность — в днях. После появления подписок на план меняется
// только признак IsActive.
type Plan struct {
	ID           string    `json:"id"`           // Уникальный идентификатор плана
	Name         string    `json:"name"`         // Название плана
	Price        int64     `json:"price"`        // Цена в минимальных единицах валюты
	Currency     string    `json:"currency"`     // Код валюты, например IRR
	DurationDays int       `json:"durationDays"` // Длительность плана в днях
	IsActive     bool      `json:"isActive"`     // Доступен ли план для новых подписок
	CreatedAt    time.Time `json:"createdAt"`    // Дата создания
}

// DummyPlan используется для приёма данных из JSON-запроса на создание плана.
type DummyPlan struct {
	Name         string `json:"name" validate:"required"`
	Price        int64  `json:"price" validate:"required,gt=0"`
	Currency     string `json:"currency" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"required,gt=0"`
}
