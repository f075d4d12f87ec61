package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow_EmptyDateMatchesEverything(t *testing.T) {
	window, err := parseWindow("", "", "")
	require.NoError(t, err)
	assert.True(t, window.From.IsZero())
	assert.True(t, window.Until.IsZero())
}

func TestParseWindow_WholeDayInJST(t *testing.T) {
	window, err := parseWindow("2025-11-01", "", "")
	require.NoError(t, err)
	// JST midnight is 15:00 UTC of the previous day.
	assert.Equal(t, time.Date(2025, 10, 31, 15, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 11, 1, 15, 0, 0, 0, time.UTC), window.Until)
}

func TestParseWindow_HourRange(t *testing.T) {
	window, err := parseWindow("2025-11-01", "10", "16")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 11, 1, 1, 0, 0, 0, time.UTC), window.From)
	assert.Equal(t, time.Date(2025, 11, 1, 7, 0, 0, 0, time.UTC), window.Until)

	// The window bounds behave as [From, Until).
	assert.True(t, window.Contains(time.Date(2025, 11, 1, 1, 0, 0, 0, time.UTC)))
	assert.False(t, window.Contains(time.Date(2025, 11, 1, 7, 0, 0, 0, time.UTC)))
}

func TestParseWindow_Invalid(t *testing.T) {
	cases := []struct {
		name             string
		date, start, end string
	}{
		{"bad date", "11/01/2025", "", ""},
		{"non-numeric hour", "2025-11-01", "ten", ""},
		{"hour out of range", "2025-11-01", "", "25"},
		{"negative hour", "2025-11-01", "-1", ""},
		{"inverted range", "2025-11-01", "16", "10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseWindow(tc.date, tc.start, tc.end)
			assert.Error(t, err)
		})
	}
}

func TestParseWindow_ZeroWidthRangeIsAllowed(t *testing.T) {
	window, err := parseWindow("2025-11-01", "12", "12")
	require.NoError(t, err)
	assert.False(t, window.Contains(window.From))
}
