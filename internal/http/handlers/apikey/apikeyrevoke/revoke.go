// Package apikeyrevoke обрабатывает отзыв ключей API.
package apikeyrevoke

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
)

// Service определяет интерфейс сервиса ключей API.
type Service interface {
	Revoke(ctx context.Context, id string) error
}

// Handler обрабатывает запросы на отзыв ключа API.
type Handler struct {
	log  *slog.Logger
	keys Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, keys Service) *Handler {
	return &Handler{log: log, keys: keys}
}

// ServeHTTP godoc
// @Summary Отозвать ключ API
// @Description Отзывает ключ немедленно. Требуется мастер-ключ.
// @Tags APIKeys
// @Produce  json
// @Param id path string true "Идентификатор ключа"
// @Success 200 {object} response.Response "Ключ отозван"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /apikeys/{id} [delete]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.apikey.revoke"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing api key id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing api key id"))
		return
	}

	if err := h.keys.Revoke(r.Context(), id); err != nil {
		log.Error("failed to revoke api key", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("api key revoked", slog.String("key_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"message": "api key revoked",
	}))
}
