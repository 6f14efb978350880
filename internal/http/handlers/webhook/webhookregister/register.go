// Package webhookregister обрабатывает регистрацию вебхуков пользователя.
package webhookregister

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

// Service определяет интерфейс сервиса вебхуков.
type Service interface {
	Register(ctx context.Context, userID string, req models.DummyWebhook) (*models.Webhook, error)
}

// Handler обрабатывает запросы на регистрацию вебхука.
type Handler struct {
	log      *slog.Logger
	webhooks Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, webhooks Service) *Handler {
	return &Handler{
		log:      log,
		webhooks: webhooks,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Зарегистрировать вебхук
// @Description Регистрирует адрес доставки событий. Пустой список типов означает подписку на все события.
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Param request body models.DummyWebhook true "Адрес, секрет и типы событий"
// @Success 200 {object} response.Response "Вебхук зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /webhooks [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.register"
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

	var req models.DummyWebhook
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

	webhook, err := h.webhooks.Register(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to register webhook", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("webhook registered", slog.String("webhook_id", webhook.ID))
	render.JSON(w, r, response.StatusOKWithData(webhook))
}
