// Package webhooklist обрабатывает чтение вебхуков пользователя.
package webhooklist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Service определяет интерфейс сервиса вебхуков.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Webhook, error)
}

// Handler обрабатывает запросы на список вебхуков.
type Handler struct {
	log      *slog.Logger
	webhooks Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, webhooks Service) *Handler {
	return &Handler{log: log, webhooks: webhooks}
}

// ServeHTTP godoc
// @Summary Список вебхуков
// @Description Возвращает действующие вебхуки пользователя.
// @Tags Webhooks
// @Produce  json
// @Success 200 {object} response.Response "Список вебхуков"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /webhooks [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	webhooks, err := h.webhooks.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list webhooks", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(webhooks))
}
