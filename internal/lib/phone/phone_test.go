package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "локальный формат",
			raw:  "09121234567",
			want: "09121234567",
		},
		{
			name: "международный с плюсом",
			raw:  "+989121234567",
			want: "09121234567",
		},
		{
			name: "международный без плюса",
			raw:  "989121234567",
			want: "09121234567",
		},
		{
			name: "префикс 0098",
			raw:  "00989121234567",
			want: "09121234567",
		},
		{
			name: "без ведущего нуля",
			raw:  "9121234567",
			want: "09121234567",
		},
		{
			name: "пробелы и дефисы",
			raw:  "+98 912-123-45-67",
			want: "09121234567",
		},
		{
			name:    "слишком короткий",
			raw:     "0912123",
			wantErr: true,
		},
		{
			name:    "не мобильный",
			raw:     "02188776655",
			wantErr: true,
		},
		{
			name:    "не номер",
			raw:     "hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
