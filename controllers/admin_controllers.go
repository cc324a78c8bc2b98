package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/gourmet-house/services"
	"github.com/yeremiapane/gourmet-house/utils"
)

type AdminController struct {
	Auth        *services.AuthService
	Bookings    *services.BookingService
	Subscribers *services.SubscriberService
	Errors      ErrorHandler
}

func NewAdminController(auth *services.AuthService, bookings *services.BookingService, subscribers *services.SubscriberService, errs ErrorHandler) *AdminController {
	return &AdminController{Auth: auth, Bookings: bookings, Subscribers: subscribers, Errors: errs}
}

// Login handles POST /api/admin/login
func (ac *AdminController) Login(c *gin.Context) {
	var req services.LoginRequest
	if !ac.Errors.bindJSON(c, &req) {
		return
	}

	token, expiresAt, err := ac.Auth.Login(req)
	if err != nil {
		ac.Errors.Respond(c, err, "", "Internal server error")
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// ListBookings handles GET /api/admin/bookings[?date=&status=]
func (ac *AdminController) ListBookings(c *gin.Context) {
	bookings, err := ac.Bookings.List(c.Request.Context(), services.BookingFilter{
		Date:   c.Query("date"),
		Status: c.Query("status"),
	})
	if err != nil {
		ac.Errors.Respond(c, err, "", "Failed to fetch bookings")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bookings", bookings)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateBookingStatus handles PATCH /api/admin/bookings/:id/status
func (ac *AdminController) UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid booking id"))
		return
	}

	var req updateStatusRequest
	if !ac.Errors.bindJSON(c, &req) {
		return
	}

	booking, err := ac.Bookings.UpdateStatus(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		ac.Errors.Respond(c, err, "", "Failed to update booking")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking status updated", booking)
}

// ListSubscribers handles GET /api/admin/subscribers[?active=true|false]
func (ac *AdminController) ListSubscribers(c *gin.Context) {
	var active *bool
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("active must be true or false"))
			return
		}
		active = &v
	}

	subs, err := ac.Subscribers.List(c.Request.Context(), active)
	if err != nil {
		ac.Errors.Respond(c, err, "", "Failed to fetch subscribers")
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of subscribers", subs)
}
