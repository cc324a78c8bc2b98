package models

import "time"

const (
	EventBookingCreated         = "booking.created"
	EventBookingStatusChanged   = "booking.status_changed"
	EventSubscriberCreated      = "subscriber.created"
	EventSubscriberReactivated  = "subscriber.reactivated"
	EventSubscriberUnsubscribed = "subscriber.unsubscribed"
)

// Event is what gets fanned out to staff after a booking or subscription changes.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurredAt"`
	Booking    *Booking    `json:"booking,omitempty"`
	Subscriber *Subscriber `json:"subscriber,omitempty"`
}

func NewBookingEvent(eventType string, b Booking) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Booking: &b}
}

func NewSubscriberEvent(eventType string, s Subscriber) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Subscriber: &s}
}
