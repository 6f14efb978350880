// Package active обрабатывает чтение действующей подписки пользователя.
package active

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

// Service определяет интерфейс сервиса подписок.
type Service interface {
	GetActive(ctx context.Context, userID string) (*models.Subscription, error)
}

// Handler обрабатывает запросы на чтение действующей подписки.
type Handler struct {
	log           *slog.Logger
	subscriptions Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{log: log, subscriptions: subscriptions}
}

// ServeHTTP godoc
// @Summary Действующая подписка
// @Description Возвращает подписку пользователя в статусе ACTIVE с неистёкшей датой окончания.
// @Tags Subscriptions
// @Produce  json
// @Param user_id query string false "Идентификатор пользователя (только для мастер-ключа)"
// @Success 200 {object} response.Response "Действующая подписка"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Действующей подписки нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/active [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.active"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	if userID == "" {
		// Мастер-ключ не привязан к пользователю и передаёт его явно.
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		log.Error("user id is not resolved")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing user id"))
		return
	}

	sub, err := h.subscriptions.GetActive(r.Context(), userID)
	if err != nil {
		log.Error("failed to get active subscription", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sub))
}
