// Package apikeyrotate обрабатывает ротацию ключей API.
package apikeyrotate

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

// Service определяет интерфейс сервиса ключей API.
type Service interface {
	Rotate(ctx context.Context, id string) (*models.APIKey, string, error)
}

// Handler обрабатывает запросы на ротацию ключа API.
type Handler struct {
	log  *slog.Logger
	keys Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, keys Service) *Handler {
	return &Handler{log: log, keys: keys}
}

// RotateResponse — тело успешного ответа. Открытое значение нового ключа
// возвращается ровно один раз, старый ключ отозван.
type RotateResponse struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	APIKey string `json:"api_key"`
}

// ServeHTTP godoc
// @Summary Ротация ключа API
// @Description Отзывает ключ и выпускает новый с той же меткой и владельцем. Требуется мастер-ключ.
// @Tags APIKeys
// @Produce  json
// @Param id path string true "Идентификатор ключа"
// @Success 200 {object} response.Response{data=RotateResponse} "Новый ключ выпущен"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется мастер-ключ"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /apikeys/{id}/rotate [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.apikey.rotate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing api key id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing api key id"))
		return
	}

	key, plaintext, err := h.keys.Rotate(r.Context(), id)
	if err != nil {
		log.Error("failed to rotate api key", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("api key rotated",
		slog.String("old_key_id", id), slog.String("key_id", key.ID))
	render.JSON(w, r, response.StatusOKWithData(RotateResponse{
		ID:     key.ID,
		Label:  key.Label,
		APIKey: plaintext,
	}))
}
