package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "ошибка валидации",
			err:  apperr.NewValidation("bad input"),
			want: http.StatusBadRequest,
		},
		{
			name: "не найдено",
			err:  apperr.NewNotFound("plan", "plan-1"),
			want: http.StatusNotFound,
		},
		{
			name: "ошибка шлюза",
			err:  apperr.NewGateway("zarinpal", "-9", "rejected"),
			want: http.StatusBadGateway,
		},
		{
			name: "превышен лимит",
			err:  apperr.NewRateLimit("otp:0912"),
			want: http.StatusTooManyRequests,
		},
		{
			name: "неавторизован",
			err:  apperr.NewUnauthorized("invalid api key"),
			want: http.StatusUnauthorized,
		},
		{
			name: "неизвестная ошибка",
			err:  errors.New("db connection lost"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("db connection lost")))
	assert.Contains(t, Message(apperr.NewValidation("bad input")), "bad input")
}
