// Package verifyotp обрабатывает проверку одноразового кода входа
// и выдачу ключа API.
package verifyotp

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

// Service определяет интерфейс сервиса входа по одноразовому коду.
type Service interface {
	VerifyOtp(ctx context.Context, rawPhone, code string) (*models.User, string, error)
}

// Handler обрабатывает запросы на проверку одноразового кода.
type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// VerifyResponse — тело успешного ответа с данными пользователя и ключом.
// Ключ возвращается в открытом виде ровно один раз.
type VerifyResponse struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone"`
	APIKey string `json:"api_key"`
}

// ServeHTTP godoc
// @Summary Войти по одноразовому коду
// @Description Проверяет код, создает пользователя при первом входе и выпускает ключ API.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyOtpVerify true "Номер телефона и код"
// @Success 200 {object} response.Response{data=VerifyResponse} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Код неверен, просрочен или уже использован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/otp/verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyotp"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyOtpVerify
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

	user, apiKey, err := h.auth.VerifyOtp(r.Context(), req.Phone, req.Code)
	if err != nil {
		log.Error("failed to verify otp code", sl.Err(err))
		w.WriteHeader(response.StatusCode(err))
		render.JSON(w, r, response.Error(response.Message(err)))
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(VerifyResponse{
		UserID: user.ID,
		Phone:  user.Phone,
		APIKey: apiKey,
	}))
}
