package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMenuDate(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "Midday truncates to midnight",
			input: time.Date(2024, 5, 1, 13, 45, 30, 0, time.UTC),
			want:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "Midnight is unchanged",
			input: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			want:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "Other zones are converted to UTC first",
			input: time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("EAT", 3*3600)),
			want:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, MenuDate(tt.input).Equal(tt.want))
		})
	}
}

func TestMenuDateSameDayStable(t *testing.T) {
	morning := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, MenuDate(morning), MenuDate(evening))
}
