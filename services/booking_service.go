package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/gourmet-house/database"
	"github.com/yeremiapane/gourmet-house/metrics"
	"github.com/yeremiapane/gourmet-house/models"
	"github.com/yeremiapane/gourmet-house/utils"
)

// BookingRequest is the payload posted by the booking form.
type BookingRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Date    string `json:"date" validate:"required"`
	Time    string `json:"time" validate:"required"`
	Guests  int    `json:"guests" validate:"min=1,max=20"`
	Message string `json:"message" validate:"omitempty,max=1000"`
}

type BookingFilter struct {
	Date   string
	Status string
}

type BookingService struct {
	store            *database.Store
	notifier         Notifier
	loc              *time.Location
	maxAdvanceMonths int
	Now              func() time.Time
}

func NewBookingService(store *database.Store, notifier Notifier, loc *time.Location, maxAdvanceMonths int) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		store:            store,
		notifier:         notifier,
		loc:              loc,
		maxAdvanceMonths: maxAdvanceMonths,
		Now:              time.Now,
	}
}

// Prepare validates req and converts it into an unsaved booking.
func (s *BookingService) Prepare(req BookingRequest) (*models.Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if err := checkEmailShape(req.Email); err != nil {
		return nil, err
	}

	date, err := ParseBookingDate(req.Date)
	if err != nil {
		return nil, err
	}
	if err := CheckBookingWindow(date, s.Now(), s.loc, s.maxAdvanceMonths); err != nil {
		return nil, err
	}
	slot, err := NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}

	return &models.Booking{
		CustomerName:    req.Name,
		CustomerEmail:   req.Email,
		CustomerPhone:   optional(req.Phone),
		BookingDate:     date,
		BookingTime:     slot,
		PartySize:       req.Guests,
		SpecialRequests: optional(req.Message),
		Status:          models.BookingStatusPending,
	}, nil
}

// Create validates and inserts one booking. The unique slot index is the
// only availability check; a taken slot comes back as a database conflict.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	booking, err := s.Prepare(req)
	if err != nil {
		metrics.RecordBooking("invalid")
		return nil, err
	}

	if err := s.store.Create(ctx, booking); err != nil {
		if database.Classify(err) == database.KindConflict {
			metrics.RecordBooking("conflict")
		} else {
			metrics.RecordBooking("error")
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	metrics.RecordBooking("created")
	utils.InfoLogger.Printf("Booking %d created for %s at %s", booking.ID, booking.BookingDate, booking.BookingTime)
	notify(ctx, s.notifier, models.NewBookingEvent(models.EventBookingCreated, *booking))
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := "SELECT * FROM bookings WHERE 1 = 1"
	var args []interface{}

	if filter.Date != "" {
		d, err := models.ParseDate(filter.Date)
		if err != nil {
			return nil, newValidationError("Invalid date format", "Please provide a valid date")
		}
		query += " AND booking_date = ?"
		args = append(args, d)
	}
	if filter.Status != "" {
		if !models.IsValidBookingStatus(filter.Status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
		}
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY booking_date, booking_time"

	bookings := []models.Booking{}
	if err := s.store.Query(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Booking, error) {
	if !models.IsValidBookingStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var updated models.Booking
	err := s.store.WithTransaction(ctx, func(tx *database.Store) error {
		var rows []models.Booking
		if err := tx.Query(ctx, &rows, "SELECT * FROM bookings WHERE id = ?", id); err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrBookingNotFound
		}
		updated = rows[0]
		if updated.Status == status {
			return nil
		}
		updated.Status = status
		updated.UpdatedAt = s.Now().UTC()
		_, err := tx.Exec(ctx, "UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?", status, updated.UpdatedAt, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update booking %d: %w", id, err)
	}

	utils.InfoLogger.Printf("Booking %d status set to %s", id, status)
	notify(ctx, s.notifier, models.NewBookingEvent(models.EventBookingStatusChanged, updated))
	return &updated, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
