package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/services"
	"github.com/yeremiapane/gourmet-house/utils"
)

type errorBody struct {
	Error            string                `json:"error"`
	Details          string                `json:"details,omitempty"`
	ValidationErrors []services.FieldError `json:"validationErrors,omitempty"`
	SubscriberID     uint                  `json:"subscriberId,omitempty"`
}

// ErrorHandler turns service and storage errors into one JSON body.
// Raw error text is only exposed when ExposeDetails is set.
type ErrorHandler struct {
	ExposeDetails bool
}

// Respond writes err. conflictMsg is used for unique violations, fallback
// for errors that match nothing else.
func (h ErrorHandler) Respond(c *gin.Context, err error, conflictMsg, fallback string) {
	status, body := h.classify(err, conflictMsg, fallback)

	if status >= http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		utils.InfoLogger.Printf("%s %s rejected (%d): %v", c.Request.Method, c.FullPath(), status, err)
	}
	c.JSON(status, body)
}

// RespondInternal always answers 500 with msg, used by read-only listings.
func (h ErrorHandler) RespondInternal(c *gin.Context, err error, msg string) {
	utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	body := errorBody{Error: msg}
	if h.ExposeDetails {
		body.Details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func (h ErrorHandler) classify(err error, conflictMsg, fallback string) (int, errorBody) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{
			Error:            verr.Message,
			Details:          verr.Details,
			ValidationErrors: verr.Fields,
		}
	}

	var conflict *services.SubscriptionConflict
	if errors.As(err, &conflict) {
		return http.StatusConflict, errorBody{Error: "Email already subscribed", SubscriberID: conflict.SubscriberID}
	}

	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		return http.StatusNotFound, errorBody{Error: "Booking not found"}
	case errors.Is(err, services.ErrSubscriberNotFound):
		return http.StatusNotFound, errorBody{Error: "Subscriber not found"}
	case errors.Is(err, services.ErrInvalidStatus):
		return http.StatusBadRequest, errorBody{Error: "Invalid booking status", Details: err.Error()}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Error: "Invalid credentials"}
	}

	body := errorBody{}
	status := http.StatusInternalServerError
	switch database.Classify(err) {
	case database.KindConflict:
		status, body.Error = http.StatusConflict, conflictMsg
	case database.KindNotNull:
		status, body.Error = http.StatusBadRequest, "Missing required database field"
	case database.KindInvalidFormat:
		status, body.Error = http.StatusBadRequest, "Invalid date or time format"
	case database.KindInvalidReference:
		status, body.Error = http.StatusBadRequest, "Invalid reference data"
	case database.KindNotFound:
		status, body.Error = http.StatusNotFound, "Record not found"
	case database.KindConnection:
		status, body.Error = http.StatusServiceUnavailable, "Database connection failed"
	case database.KindTimeout:
		status, body.Error = http.StatusGatewayTimeout, "Database request timed out"
	default:
		body.Error = fallback
	}
	if body.Error == "" {
		body.Error = "Internal server error"
	}
	if h.ExposeDetails {
		body.Details = err.Error()
	}
	return status, body
}

// bindJSON decodes the request body; malformed JSON is reported as
// invalid input with a human readable reason.
func (h ErrorHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	details := "Request body must be valid JSON"
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		details = "Request body is required"
	case errors.As(err, &typeErr):
		details = typeErr.Field + " has the wrong type"
	}
	c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid input", Details: details})
	return false
}
