// Package paymentlist обрабатывает чтение истории платежей подписки.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Service определяет интерфейс платёжного сервиса.
type Service interface {
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*models.Payment, error)
}

// Handler обрабатывает запросы на список платежей.
type Handler struct {
	log      *slog.Logger
	payments Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments}
}

// ServeHTTP godoc
// @Summary История платежей подписки
// @Description Возвращает все платежи подписки от новых к старым.
// @Tags Payments
// @Produce  json
// @Param subscription_id query string true "Идентификатор подписки"
// @Success 200 {object} response.Response "Список платежей"
// @Failure 400 {object} response.ErrorResponse "Не указан идентификатор подписки"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	subscriptionID := r.URL.Query().Get("subscription_id")
	if subscriptionID == "" {
		log.Error("missing subscription_id query param")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing subscription_id"))
		return
	}

	payments, err := h.payments.ListBySubscription(r.Context(), subscriptionID)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(payments))
}
