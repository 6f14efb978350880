// Package apikeyissue обрабатывает выпуск ключей API.
package apikeyissue

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
)

// Service определяет интерфейс сервиса ключей API.
type Service interface {
	Issue(ctx context.Context, label string, userID *string) (*models.APIKey, string, error)
}

// Handler обрабатывает запросы на выпуск ключа API.
type Handler struct {
	log      *slog.Logger
	keys     Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, keys Service) *Handler {
	return &Handler{
		log:      log,
		keys:     keys,
		validate: validator.New(),
	}
}

// IssueResponse — тело успешного ответа. Открытое значение ключа
// возвращается ровно один раз.
type IssueResponse struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	APIKey string `json:"api_key"`
}

// ServeHTTP godoc
// @Summary Выпустить ключ API
// @Description Выпускает новый ключ. Требуется мастер-ключ. Открытое значение возвращается один раз.
// @Tags APIKeys
// @Accept  json
// @Produce  json
// @Param request body models.DummyAPIKeyIssue true "Метка и владелец ключа"
// @Success 200 {object} response.Response{data=IssueResponse} "Ключ выпущен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /apikeys [post]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.apikey.issue"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAPIKeyIssue
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

	var userID *string
	if req.UserID != "" {
		userID = &req.UserID
	}

	key, plaintext, err := h.keys.Issue(r.Context(), req.Label, userID)
	if err != nil {
		log.Error("failed to issue api key", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("api key issued", slog.String("key_id", key.ID))
	render.JSON(w, r, response.StatusOKWithData(IssueResponse{
		ID:     key.ID,
		Label:  key.Label,
		APIKey: plaintext,
	}))
}
