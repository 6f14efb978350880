package models

import "time"

// User представляет пользователя системы. Пользователь создаётся
// автоматически при первом успешном входе по одноразовому коду.
type User struct {
	ID        string    `json:"id"`        // Уникальный идентификатор пользователя
	Phone     string    `json:"phone"`     // Номер телефона в каноническом виде (уникальный)
	Email     string    `json:"email"`     // Электронная почта, может быть пустой
	CreatedAt time.Time `json:"createdAt"` // Дата регистрации
}
