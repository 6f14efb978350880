// Package paymentcallback обрабатывает возврат пользователя со страницы
// платёжного шлюза. Шлюз дергает этот адрес GET-запросом с параметрами
// Authority и Status; обработчик перенаправляет пользователя на фронтенд,
// который затем вызывает верификацию.
package paymentcallback

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
)

// Handler обрабатывает колбэк платёжного шлюза.
type Handler struct {
	log         *slog.Logger
	frontendURL string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, frontendURL string) *Handler {
	return &Handler{log: log, frontendURL: frontendURL}
}

// ServeHTTP godoc
// @Summary Колбэк платёжного шлюза
// @Description Принимает возврат со страницы оплаты и перенаправляет на фронтенд с authority и статусом.
// @Tags Payments
// @Param Authority query string true "Authority платежа"
// @Param Status query string false "Статус оплаты (OK или NOK)"
// @Success 302 "Перенаправление на фронтенд"
// @Failure 400 {object} response.ErrorResponse "Не указан authority"
// @Router /payments/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authority := r.URL.Query().Get("Authority")
	if authority == "" {
		// IDPay передаёт параметры в нижнем регистре.
		authority = r.URL.Query().Get("authority")
	}
	status := r.URL.Query().Get("Status")
	if status == "" {
		status = r.URL.Query().Get("status")
	}

	if authority == "" {
		log.Error("callback without authority")
		http.Error(w, "missing authority", http.StatusBadRequest)
		return
	}

	params := url.Values{}
	params.Set("authority", authority)
	params.Set("status", status)
	target := h.frontendURL + "/payment/verify?" + params.Encode()

	log.Info("gateway callback received",
		slog.String("authority", authority), slog.String("status", status))
	http.Redirect(w, r, target, http.StatusFound)
}
