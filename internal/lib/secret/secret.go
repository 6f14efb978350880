// Package secret реализует функции для генерации и безопасного хранения
// учётных данных API.
//
// NewKey генерирует случайный ключ API, возвращаемый клиенту ровно один раз.
// GetHash создает bcrypt-хеш ключа для безопасного хранения.
// CompareHash сравнивает bcrypt-хеш с предъявленным ключом.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// NewKey генерирует криптографически случайный ключ API в hex-виде
// с префиксом sk_. Открытое значение нигде не сохраняется.
func NewKey() (string, error) {
	const op = "secret.NewKey"
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "sk_" + hex.EncodeToString(buf), nil
}

// GetHash принимает ключ API и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения ключей в базе данных.
func GetHash(key string) (string, error) {
	const op = "secret.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает bcrypt‑хэш с предъявленным ключом.
//
// Возвращает nil, если ключ соответствует хэшу, иначе — ошибку.
func CompareHash(originalHash, externalKey string) error {
	const op = "secret.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalKey)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
