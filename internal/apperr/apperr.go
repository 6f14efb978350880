// Package apperr определяет типизированные ошибки бизнес-уровня.
// Обработчики HTTP сопоставляют их со статус-кодами через errors.As,
// остальные слои создают их и оборачивают через fmt.Errorf с %w.
package apperr

import "fmt"

// ValidationError означает некорректные входные данные,
// включая неизвестное имя платёжного шлюза.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation создаёт ValidationError с форматированным сообщением.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError означает отсутствие запрошенной сущности.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFound создаёт NotFoundError для сущности и ключа поиска.
func NewNotFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// GatewayError означает отказ внешнего платёжного провайдера.
// Code содержит числовой или строковый код провайдера для диагностики.
type GatewayError struct {
	Gateway string
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s error (code %s): %s", e.Gateway, e.Code, e.Message)
}

// NewGateway создаёт GatewayError с кодом провайдера.
func NewGateway(gateway, code, message string) *GatewayError {
	return &GatewayError{Gateway: gateway, Code: code, Message: message}
}

// RateLimitError означает превышение лимита запросов.
type RateLimitError struct {
	Key string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Key)
}

// NewRateLimit создаёт RateLimitError для ключа лимитера.
func NewRateLimit(key string) *RateLimitError {
	return &RateLimitError{Key: key}
}

// UnauthorizedError означает отсутствующие или недействительные учётные данные.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NewUnauthorized создаёт UnauthorizedError с сообщением.
func NewUnauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}
