package models

import "time"

// OtpCode представляет одноразовый код входа, привязанный к номеру телефона.
// Хранится только хэш кода. Код считается использованным после первой
// успешной проверки (UsedAt) и непригодным после истечения ExpiresAt
// независимо от UsedAt.
type OtpCode struct {
	ID        string     // Уникальный идентификатор записи
	Phone     string     // Номер телефона в каноническом виде
	CodeHash  string     // Хэш кода, исходный код нигде не хранится
	ExpiresAt time.Time  // Момент истечения кода
	Attempts  int        // Количество попыток проверки
	UsedAt    *time.Time // Момент успешного использования
	CreatedAt time.Time  // Дата создания
}

// DummyOtpRequest используется для приёма запроса на выдачу кода.
type DummyOtpRequest struct {
	Phone string `json:"phone" validate:"required"`
}

// DummyOtpVerify используется для приёма запроса на проверку кода.
type DummyOtpVerify struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required,numeric"`
}
