package models

import "time"

// APIKey представляет учётные данные доступа к API. Хранится только
// bcrypt-хэш ключа. UserID равный nil означает сервисный ключ уровня
// мастер-ключа. Ключи не удаляются физически — отзыв выставляет
// IsActive в false.
type APIKey struct {
	ID         string     `json:"id"`         // Уникальный идентификатор ключа
	Hash       string     `json:"-"`          // bcrypt-хэш ключа, наружу не отдаётся
	Label      string     `json:"label"`      // Человекочитаемая метка
	UserID     *string    `json:"userId"`     // Владелец ключа, nil для сервисного ключа
	IsActive   bool       `json:"isActive"`   // Действует ли ключ
	LastUsedAt *time.Time `json:"lastUsedAt"` // Момент последнего использования
	CreatedAt  time.Time  `json:"createdAt"`  // Дата создания
}

// DummyAPIKeyIssue используется для приёма запроса на выпуск ключа.
type DummyAPIKeyIssue struct {
	Label  string `json:"label" validate:"required"`
	UserID string `json:"user_id" validate:"omitempty,uuid"`
}
