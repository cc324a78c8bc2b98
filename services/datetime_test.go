package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/gourmet-house/models"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"18:00", "18:00"},
		{"00:15", "00:15"},
		{"6:00 PM", "18:00"},
		{"6:00pm", "18:00"},
		{"11:00 AM", "11:00"},
		{"12:00 PM", "12:00"},
		{"12:15 AM", "00:15"},
		{"09:30 am", "09:30"},
		{" 7:45 Pm ", "19:45"},
	}
	for _, tt := range tests {
		got, err := NormalizeTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "24:00", "7pm", "13:00 PM", "12:60", "noon", "1800"} {
		_, err := NormalizeTime(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, in)
		assert.Equal(t, "Invalid time format", verr.Message)
	}
}

func TestParseBookingDate(t *testing.T) {
	tests := map[string]string{
		"2030-01-15":                "2030-01-15",
		"2030-01-15T19:00:00Z":      "2030-01-15",
		"2030-01-15T23:30:00-05:00": "2030-01-15",
		"2030-01-15T10:00:00":       "2030-01-15",
		"2030-01-15T10:00":          "2030-01-15",
		"2030-01-15T10:00:00.123Z":  "2030-01-15",
	}
	for in, want := range tests {
		d, err := ParseBookingDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String(), in)
	}

	for _, in := range []string{"", "15/01/2030", "2030-13-01", "2030-01-15Tnoon", "tomorrow"} {
		_, err := ParseBookingDate(in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, in)
		assert.Equal(t, "Invalid date format", verr.Message)
		assert.Equal(t, "Please provide a valid date", verr.Details)
	}
}

func TestCheckBookingWindow(t *testing.T) {
	now := time.Date(2030, 3, 10, 22, 0, 0, 0, time.UTC)
	date := func(s string) models.Date {
		d, err := models.ParseDate(s)
		require.NoError(t, err)
		return d
	}

	assert.NoError(t, CheckBookingWindow(date("2030-03-10"), now, time.UTC, 3))
	assert.NoError(t, CheckBookingWindow(date("2030-06-10"), now, time.UTC, 3))
	assert.NoError(t, CheckBookingWindow(date("2031-06-10"), now, time.UTC, 0))

	var verr *ValidationError
	require.ErrorAs(t, CheckBookingWindow(date("2030-03-09"), now, time.UTC, 3), &verr)
	assert.Equal(t, "Invalid booking date", verr.Message)
	require.ErrorAs(t, CheckBookingWindow(date("2030-06-11"), now, time.UTC, 3), &verr)
	assert.Equal(t, "Invalid booking date", verr.Message)

	// 22:00 UTC is already the next day in Tokyo.
	tokyo := time.FixedZone("JST", 9*3600)
	assert.Error(t, CheckBookingWindow(date("2030-03-10"), now, tokyo, 3))
}
