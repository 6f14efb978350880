package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-billing/internal/apperr"
)

func TestRegistryResolve(t *testing.T) {
	mock := NewMockGateway(nil)
	zarinpal := NewZarinpalGateway("merchant", true)
	registry := NewRegistry(mock, zarinpal)

	tests := []struct {
		name        string
		gatewayName string
		want        string
		wantErr     bool
	}{
		{
			name:        "точное имя",
			gatewayName: "mock",
			want:        "mock",
		},
		{
			name:        "имя без учёта регистра",
			gatewayName: "ZarinPal",
			want:        "zarinpal",
		},
		{
			name:        "неизвестный шлюз",
			gatewayName: "paypal",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := registry.Resolve(tt.gatewayName)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *apperr.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				// Текст ошибки перечисляет зарегистрированные шлюзы
				assert.Contains(t, err.Error(), "mock, zarinpal")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	registry := NewRegistry(
		NewZarinpalGateway("merchant", true),
		NewMockGateway(nil),
		NewIDPayGateway("key", true),
	)
	assert.Equal(t, []string{"idpay", "mock", "zarinpal"}, registry.Names())
}
