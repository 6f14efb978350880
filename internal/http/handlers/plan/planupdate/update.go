// Package planupdate обрабатывает переключение доступности тарифного плана.
package planupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
)

// Service определяет интерфейс сервиса тарифных планов.
type Service interface {
	SetActive(ctx context.Context, id string, isActive bool) error
}

// Handler обрабатывает запросы на изменение доступности плана.
type Handler struct {
	log   *slog.Logger
	plans Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, plans Service) *Handler {
	return &Handler{log: log, plans: plans}
}

// UpdateRequest — тело запроса на изменение доступности плана.
type UpdateRequest struct {
	IsActive bool `json:"is_active"`
}

// ServeHTTP godoc
// @Summary Изменить доступность плана
// @Description Открывает или закрывает план для новых подписок. Существующие подписки продолжают действовать. Требуется мастер-ключ.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор плана"
// @Param request body UpdateRequest true "Новая доступность"
// @Success 200 {object} response.Response "Доступность изменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [patch]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing plan id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing plan id"))
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.plans.SetActive(r.Context(), id, req.IsActive); err != nil {
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("plan updated", slog.String("plan_id", id), slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{
		"message": "plan updated",
	}))
}
