// Package paymentcreate обрабатывает создание платежа по существующей
// подписке. Используется для повторной попытки оплаты, когда подписка
// осталась в статусе PENDING без действующего платежа.
package paymentcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
	"github.com/magabrotheeeer/subscription-billing/internal/services/payment"
)

// Service определяет интерфейс платёжного сервиса.
type Service interface {
	Create(ctx context.Context, subscriptionID, gatewayName string, contact payment.Contact) (*models.Payment, error)
}

// Handler обрабатывает запросы на создание платежа.
type Handler struct {
	log      *slog.Logger
	payments Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{
		log:      log,
		payments: payments,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платёж
// @Description Создает новый платёж по существующей подписке через выбранный шлюз.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyPaymentCreate true "Данные для создания платежа"
// @Success 200 {object} response.Response "Платёж создан, в данных ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или неизвестный шлюз"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Ошибка платёжного шлюза"
// @Router /payments [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPaymentCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	paymentRow, err := h.payments.Create(r.Context(), req.SubscriptionID, req.Gateway, payment.Contact{
		Email: req.UserEmail,
		Phone: req.UserPhone,
	})
	if err != nil {
		log.Error("failed to create payment", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("payment created",
		slog.String("payment_id", paymentRow.ID),
		slog.String("authority", paymentRow.Authority))
	render.JSON(w, r, response.StatusOKWithData(paymentRow))
}
