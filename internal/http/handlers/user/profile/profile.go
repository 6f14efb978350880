// Package profile обрабатывает чтение профиля текущего пользователя.
package profile

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-billing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-billing/internal/http/response"
	"github.com/magabrotheeeer/subscription-billing/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-billing/internal/models"
)

// Service определяет интерфейс чтения пользователей.
type Service interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProfileResponse содержит данные профиля без служебных полей.
type ProfileResponse struct {
	ID        string `json:"id"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Handler обрабатывает запросы на чтение профиля.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает профиль пользователя, которому принадлежит ключ API.
// @Tags Users
// @Produce  json
// @Success 200 {object} response.Response "Профиль пользователя"
// @Failure 401 {object} response.ErrorResponse "Неавторизован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /me [get]
// @Security ApiKeyAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.profile"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	if userID == "" {
		// Сервисный ключ не привязан к пользователю.
		log.Error("api key is not bound to a user")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("api key is not bound to a user"))
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(ProfileResponse{
		ID:        user.ID,
		Phone:     user.Phone,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}))
}
