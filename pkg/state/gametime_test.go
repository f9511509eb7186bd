package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddHours(t *testing.T) {
	tests := []struct {
		name  string
		start string
		hours float64
		want  string
	}{
		{"simple advance", "08:00", 4, "12:00"},
		{"fractional hours", "08:00", 1.5, "09:30"},
		{"evening advance", "14:00", 5, "19:00"},
		{"clamp to midnight at boundary", "20:00", 4, TimeMidnight},
		{"clamp to midnight past boundary", "20:00", 5, TimeMidnight},
		{"midnight label not 25:00", "20:00", 5.25, TimeMidnight},
		{"zero delta", "12:00", 0, "12:00"},
		{"malformed input unchanged", "noon", 2, "noon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddHours(tt.start, tt.hours))
		})
	}
}

func TestIsValidTime(t *testing.T) {
	assert.True(t, IsValidTime("08:00"))
	assert.True(t, IsValidTime("00:00"))
	assert.True(t, IsValidTime("23:59"))

	assert.False(t, IsValidTime("24:00"))
	assert.False(t, IsValidTime("8am"))
	assert.False(t, IsValidTime("12:60"))
	assert.False(t, IsValidTime(""))
}
