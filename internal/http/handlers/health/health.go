// Package health обрабатывает проверку живости сервиса.
package health

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// Checker проверяет готовность зависимостей сервиса.
type Checker interface {
	CheckReady() error
}

// Handler обрабатывает запросы проверки живости.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{log: log, checker: checker}
}

// HealthResponse — тело ответа проверки живости.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Description Возвращает ok, если сервис и база данных доступны.
// @Tags Health
// @Produce  json
// @Success 200 {object} HealthResponse "Сервис доступен"
// @Failure 503 {object} HealthResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.checker != nil {
		if err := h.checker.CheckReady(); err != nil {
			h.log.Error("health check failed", slog.Any("err", err))
			status = "unavailable"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}

	render.JSON(w, r, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
