// Package paymentverify обрабатывает верификацию платежа после
// возвращения пользователя со страницы шлюза. Успешная верификация
// активирует подписку, если она ещё не активна.
package paymentverify

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

// PaymentService определяет интерфейс платёжного сервиса.
type PaymentService interface {
	Verify(ctx context.Context, authority, status string) (*models.Payment, error)
}

// SubscriptionService определяет интерфейс сервиса подписок.
type SubscriptionService interface {
	Get(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	Activate(ctx context.Context, subscriptionID string, contact payment.Contact) (*models.Subscription, error)
}

// UserReader возвращает пользователя для контактных данных уведомления.
type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Handler обрабатывает запросы на верификацию платежа.
type Handler struct {
	log           *slog.Logger
	payments      PaymentService
	subscriptions SubscriptionService
	users         UserReader
	validate      *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, payments PaymentService, subscriptions SubscriptionService, users UserReader) *Handler {
	return &Handler{
		log:           log,
		payments:      payments,
		subscriptions: subscriptions,
		users:         users,
		validate:      validator.New(),
	}
}

// VerifyResponse — тело успешного ответа: платёж и подписка после
// верификации.
type VerifyResponse struct {
	Payment      *models.Payment      `json:"payment"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// ServeHTTP godoc
// @Summary Верифицировать платёж
// @Description Подтверждает платёж у шлюза по authority и активирует подписку. Повторная верификация завершённого платежа безопасна.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyPaymentVerify true "Authority и статус из колбэка"
// @Success 200 {object} response.Response{data=VerifyResponse} "Платёж подтверждён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или платёж уже FAILED"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Шлюз отклонил верификацию"
// @Router /payments/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.verify"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPaymentVerify
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

	paymentRow, err := h.payments.Verify(r.Context(), req.Authority, req.Status)
	if err != nil {
		log.Error("failed to verify payment", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	resp := VerifyResponse{Payment: paymentRow}
	if paymentRow.Status == models.PaymentStatusCompleted {
		sub, err := h.activateIfNeeded(r.Context(), log, paymentRow.SubscriptionID)
		if err != nil {
			log.Error("payment completed but activation failed", sl.Err(err))
			w.WriteHeader(response.StatusCode(err))
			render.JSON(w, r, response.Error(response.Message(err)))
			return
		}
		resp.Subscription = sub
	}

	log.Info("payment verified",
		slog.String("payment_id", paymentRow.ID),
		slog.String("status", paymentRow.Status))
	render.JSON(w, r, response.StatusOKWithData(resp))
}

// activateIfNeeded активирует подписку, если она ещё не активна.
// Повторная верификация завершённого платежа не продлевает период.
func (h *Handler) activateIfNeeded(ctx context.Context, log *slog.Logger, subscriptionID string) (*models.Subscription, error) {
	sub, err := h.subscriptions.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriptionStatusActive {
		return sub, nil
	}

	contact := payment.Contact{}
	user, err := h.users.GetUser(ctx, sub.UserID)
	if err != nil {
		log.Warn("failed to load user for notification", sl.Err(err))
	} else {
		contact.Email = user.Email
		contact.Phone = user.Phone
	}

	return h.subscriptions.Activate(ctx, subscriptionID, contact)
}
