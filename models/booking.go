package models

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

var BookingStatuses = []string{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusCompleted,
}

// Booking is one table reservation. A (date, time) slot holds at most one row.
type Booking struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CustomerName    string    `gorm:"type:varchar(100);not null" json:"name"`
	CustomerEmail   string    `gorm:"type:varchar(255);not null;index" json:"email"`
	CustomerPhone   *string   `gorm:"type:varchar(20)" json:"phone"`
	BookingDate     Date      `gorm:"type:date;not null;uniqueIndex:idx_bookings_slot,priority:1" json:"date"`
	BookingTime     string    `gorm:"type:varchar(5);not null;uniqueIndex:idx_bookings_slot,priority:2" json:"time"`
	PartySize       int       `gorm:"not null" json:"guests"`
	SpecialRequests *string   `gorm:"type:text" json:"message"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt       time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"not null" json:"updatedAt"`
}

func IsValidBookingStatus(status string) bool {
	for _, s := range BookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}
