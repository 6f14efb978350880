// Package paymentread обрабатывает чтение платежа по authority.
package paymentread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Service определяет интерфейс платёжного сервиса.
type Service interface {
	GetByAuthority(ctx context.Context, authority string) (*models.Payment, error)
}

// Handler обрабатывает запросы на чтение платежа.
type Handler struct {
	log      *slog.Logger
	payments Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments}
}

// ServeHTTP godoc
// @Summary Получить платёж
// @Description Возвращает платёж по корреляционному идентификатору шлюза.
// @Tags Payments
// @Produce  json
// @Param authority path string true "Authority платежа"
// @Success 200 {object} response.Response "Платёж"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/{authority} [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authority := chi.URLParam(r, "authority")
	if authority == "" {
		log.Error("missing authority")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing authority"))
		return
	}

	paymentRow, err := h.payments.GetByAuthority(r.Context(), authority)
	if err != nil {
		log.Error("failed to get payment", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(paymentRow))
}
