// Package cancel обрабатывает отмену подписки.
package cancel

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

// Service определяет интерфейс сервиса подписок.
type Service interface {
	Cancel(ctx context.Context, subscriptionID string) error
}

// Handler обрабатывает запросы на отмену подписки.
type Handler struct {
	log           *slog.Logger
	subscriptions Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{log: log, subscriptions: subscriptions}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Выставляет статус CANCELLED и снимает автопродление. Доступ сохраняется до даты окончания.
// @Tags Subscriptions
// @Produce  json
// @Param id path string true "Идентификатор подписки"
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/{id} [delete]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing subscription id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing subscription id"))
		return
	}

	if err := h.subscriptions.Cancel(r.Context(), id); err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("subscription cancelled", slog.String("subscription_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"message": "subscription cancelled",
	}))
}
