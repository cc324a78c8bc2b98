package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/gourmet-house/models"
)

var (
	time24h = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	time12h = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5]\d)\s*([AaPp][Mm])$`)
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NormalizeTime accepts "HH:MM" (24h) or "h:mm AM/PM" and returns "HH:MM".
func NormalizeTime(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if time24h.MatchString(s) {
		return s, nil
	}

	m := time12h.FindStringSubmatch(s)
	if m == nil {
		return "", newValidationError("Invalid time format", "Time must be HH:MM or h:mm AM/PM")
	}
	hour, _ := strconv.Atoi(m[1])
	pm := strings.EqualFold(m[3], "pm")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%s", hour, m[2]), nil
}

// ParseBookingDate accepts YYYY-MM-DD or an ISO date-time and keeps only the
// calendar date as written by the client.
func ParseBookingDate(raw string) (models.Date, error) {
	s := strings.TrimSpace(raw)
	invalid := newValidationError("Invalid date format", "Please provide a valid date")

	if strings.Contains(s, "T") {
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return models.DateOf(t), nil
			}
		}
		return models.Date{}, invalid
	}

	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, invalid
	}
	return d, nil
}

// CheckBookingWindow rejects dates before today in loc and, when maxMonths
// is positive, dates further out than maxMonths from today.
func CheckBookingWindow(date models.Date, now time.Time, loc *time.Location, maxMonths int) error {
	if loc == nil {
		loc = time.UTC
	}
	today := models.DateOf(now.In(loc))
	if date.Before(today.Time) {
		return newValidationError("Invalid booking date", "Booking date cannot be in the past")
	}
	if maxMonths > 0 {
		limit := today.AddDate(0, maxMonths, 0)
		if date.After(limit) {
			return newValidationError("Invalid booking date",
				fmt.Sprintf("Bookings can be made at most %d months in advance", maxMonths))
		}
	}
	return nil
}
