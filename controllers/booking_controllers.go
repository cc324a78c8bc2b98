package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/services"
)

const bookingConflictMsg = "Booking conflict - this time slot may already be taken"

type BookingController struct {
	Bookings *services.BookingService
	Errors   ErrorHandler
}

func NewBookingController(bookings *services.BookingService, errs ErrorHandler) *BookingController {
	return &BookingController{Bookings: bookings, Errors: errs}
}

type bookingDetails struct {
	ID      uint        `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   *string     `json:"phone"`
	Date    models.Date `json:"date"`
	Time    string      `json:"time"`
	Guests  int         `json:"guests"`
	Message *string     `json:"message"`
	Status  string      `json:"status"`
}

func toBookingDetails(b *models.Booking) bookingDetails {
	return bookingDetails{
		ID:      b.ID,
		Name:    b.CustomerName,
		Email:   b.CustomerEmail,
		Phone:   b.CustomerPhone,
		Date:    b.BookingDate,
		Time:    b.BookingTime,
		Guests:  b.PartySize,
		Message: b.SpecialRequests,
		Status:  b.Status,
	}
}

// CreateBooking handles POST /api/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req services.BookingRequest
	if !bc.Errors.bindJSON(c, &req) {
		return
	}

	booking, err := bc.Bookings.Create(c.Request.Context(), req)
	if err != nil {
		bc.Errors.Respond(c, err, bookingConflictMsg, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"bookingId":      booking.ID,
		"message":        "Booking created successfully",
		"bookingDetails": toBookingDetails(booking),
	})
}
