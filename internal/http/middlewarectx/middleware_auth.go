// Package middlewarectx содержит HTTP middleware для проверки ключей API.
//
// APIKeyMiddleware извлекает ключ из заголовка X-Api-Key или
// Authorization: ApiKey <ключ>, проверяет его через сервис ключей
// и в случае успеха добавляет в контекст идентификатор ключа
// и идентификатор владельца для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// APIKeyID — ключ для идентификатора ключа API в контексте
	APIKeyID Key = "api_key_id"
	// UserID — ключ для идентификатора владельца ключа в контексте
	UserID Key = "user_id"
)

// MasterKeyID — значение APIKeyID в контексте запроса, прошедшего
// по мастер-ключу.
const MasterKeyID = "master"

// KeyVerifier описывает интерфейс сервиса для проверки ключа API.
type KeyVerifier interface {
	Verify(ctx context.Context, presented string) (*models.APIKey, error)
}

// extractKey достаёт ключ API из заголовков запроса. Поддерживаются
// X-Api-Key и Authorization: ApiKey <ключ>.
func extractKey(r *http.Request) string {
	if key := r.Header.Get("X-Api-Key"); key != "" {
		return key
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "ApiKey ") {
		return strings.TrimPrefix(authHeader, "ApiKey ")
	}
	return ""
}

// APIKeyMiddleware возвращает HTTP middleware, который проверяет ключ API.
//
// Мастер-ключ из конфигурации проходит без обращения к хранилищу и даёт
// доступ к административным операциям. Обычный ключ проверяется по
// действующим записям; его владелец кладётся в контекст запроса.
func APIKeyMiddleware(keys KeyVerifier, masterKey string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			presented := extractKey(r)
			if presented == "" {
				log.Error("missing api key header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing api key"))
				return
			}

			if masterKey != "" &&
				subtle.ConstantTimeCompare([]byte(presented), []byte(masterKey)) == 1 {
				ctx := context.WithValue(r.Context(), APIKeyID, MasterKeyID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			key, err := keys.Verify(r.Context(), presented)
			if err != nil {
				log.Error("invalid api key", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid api key"))
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyID, key.ID)
			if key.UserID != nil {
				ctx = context.WithValue(ctx, UserID, *key.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMaster возвращает HTTP middleware, который пропускает запрос
// дальше только по мастер-ключу. Обычный пользовательский ключ получает
// HTTP 403 Forbidden. Вешается поверх APIKeyMiddleware на
// административные маршруты.
func RequireMaster(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireMaster"

			keyID, _ := r.Context().Value(APIKeyID).(string)
			if keyID != MasterKeyID {
				log.Error("admin route requires master key",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("api_key_id", keyID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("master key required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
