// Package phone нормализует номера телефонов к каноническому локальному
// виду 09xxxxxxxxx, в котором они хранятся и используются как ключи
// лимитера и поиска пользователя.
package phone

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize приводит номер к виду 09xxxxxxxxx. Принимает варианты
// с префиксами +98, 98, 0098 и без префикса, игнорирует пробелы и дефисы.
// Возвращает ошибку, если после нормализации номер не похож на мобильный.
func Normalize(raw string) (string, error) {
	const op = "phone.Normalize"

	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	switch {
	case strings.HasPrefix(number, "0098"):
		number = "0" + number[4:]
	case strings.HasPrefix(number, "98") && len(number) == 12:
		number = "0" + number[2:]
	case strings.HasPrefix(number, "9") && len(number) == 10:
		number = "0" + number
	}

	if len(number) != 11 || !strings.HasPrefix(number, "09") {
		return "", fmt.Errorf("%s: invalid phone number %q", op, raw)
	}
	return number, nil
}
