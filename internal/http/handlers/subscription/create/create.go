// Package create обрабатывает создание подписки с немедленным
// выставлением платежа.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Service определяет интерфейс сервиса подписок.
type Service interface {
	Create(ctx context.Context, req models.DummySubscription) (*models.Subscription, *models.Payment, error)
}

// Handler обрабатывает запросы на создание подписки.
type Handler struct {
	log           *slog.Logger
	subscriptions Service
	validate      *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{
		log:           log,
		subscriptions: subscriptions,
		validate:      validator.New(),
	}
}

// CreateResponse — тело успешного ответа: подписка и платёж со ссылкой
// на страницу оплаты шлюза.
type CreateResponse struct {
	Subscription *models.Subscription `json:"subscription"`
	Payment      *models.Payment      `json:"payment"`
}

// ServeHTTP godoc
// @Summary Создать подписку
// @Description Создает подписку в статусе PENDING и сразу выставляет платёж по цене плана.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscription true "Данные подписки"
// @Success 200 {object} response.Response{data=CreateResponse} "Подписка и платёж созданы"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план недоступен"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного шлюза"
// @Router /subscriptions [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	// Владелец обычного ключа подписывает только себя.
	if userID, ok := r.Context().Value(middlewarectx.UserID).(string); ok && userID != "" {
		req.UserID = userID
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, payment, err := h.subscriptions.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("subscription created",
		slog.String("subscription_id", sub.ID),
		slog.String("payment_id", payment.ID))
	render.JSON(w, r, response.StatusOKWithData(CreateResponse{
		Subscription: sub,
		Payment:      payment,
	}))
}
