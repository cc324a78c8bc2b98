package services

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadySubscribed  = errors.New("email already subscribed")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidStatus      = errors.New("invalid booking status")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for any request the client has to fix.
// Message is the short error title; Details is the first human readable reason.
type ValidationError struct {
	Message string
	Details string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if e.Details == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func newValidationError(message, details string) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// SubscriptionConflict reports an email that is already actively subscribed.
type SubscriptionConflict struct {
	SubscriberID uint
}

func (e *SubscriptionConflict) Error() string {
	return ErrAlreadySubscribed.Error()
}

func (e *SubscriptionConflict) Unwrap() error {
	return ErrAlreadySubscribed
}
