package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/gourmet-house/services"
	"gorm.io/gorm"
)

func TestClassifyMapsErrorsToStatus(t *testing.T) {
	h := ErrorHandler{}

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unique violation", fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict, "slot taken"},
		{"gorm duplicate", gorm.ErrDuplicatedKey, http.StatusConflict, "slot taken"},
		{"not null", &pgconn.PgError{Code: "23502"}, http.StatusBadRequest, "Missing required database field"},
		{"bad datetime", &pgconn.PgError{Code: "22007"}, http.StatusBadRequest, "Invalid date or time format"},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, "Invalid reference data"},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Record not found"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "Database request timed out"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "fallback"},
		{"booking missing", services.ErrBookingNotFound, http.StatusNotFound, "Booking not found"},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"bad status", fmt.Errorf("%w: maybe", services.ErrInvalidStatus), http.StatusBadRequest, "Invalid booking status"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := h.classify(tc.err, "slot taken", "fallback")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}

func TestClassifyConnectionRefused(t *testing.T) {
	status, body := ErrorHandler{}.classify(errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Database connection failed", body.Error)
}

func TestClassifyEmptyFallback(t *testing.T) {
	_, body := ErrorHandler{}.classify(errors.New("boom"), "", "")
	assert.Equal(t, "Internal server error", body.Error)
}

func TestClassifySubscriptionConflict(t *testing.T) {
	status, body := ErrorHandler{}.classify(&services.SubscriptionConflict{SubscriberID: 7}, "", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Email already subscribed", body.Error)
	assert.Equal(t, uint(7), body.SubscriberID)
}

func TestDetailsOnlyExposedWhenEnabled(t *testing.T) {
	err := errors.New("pq: relation bookings does not exist")

	_, hidden := ErrorHandler{}.classify(err, "", "fallback")
	assert.Empty(t, hidden.Details)

	_, shown := ErrorHandler{ExposeDetails: true}.classify(err, "", "fallback")
	assert.Equal(t, err.Error(), shown.Details)
}

func TestRespondInternalAlways500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/menu", nil)

	ErrorHandler{}.RespondInternal(c, gorm.ErrRecordNotFound, "Failed to fetch menu")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch menu"}`, w.Body.String())
}

func TestBindJSONReportsReason(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]string{
		"":               "Request body is required",
		"{":              "Request body must be valid JSON",
		`{"guests":"x"}`: "guests has the wrong type",
	}
	for raw, details := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(raw))
		c.Request.Header.Set("Content-Type", "application/json")

		var req services.BookingRequest
		require.False(t, ErrorHandler{}.bindJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"Invalid input"`)
		assert.Contains(t, w.Body.String(), details, "body %q", raw)
	}
}
