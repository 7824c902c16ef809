package service

import (
	"context"
	"errors"

	bookingerrors "bookingsheet/internal/bookings/errors"
	"bookingsheet/internal/bookings/events"
	"bookingsheet/internal/bookings/repository"
	"bookingsheet/internal/bookings/validator"
	apperrors "bookingsheet/pkg/errors"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/middleware"
	"bookingsheet/pkg/model"
)

type BookingService interface {
	// Save appends booking as a new row of the booking store.
	Save(ctx context.Context, booking *model.Booking) error
}

type bookingService struct {
	repo      repository.BookingRepository
	publisher events.Publisher
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		publisher: publisher,
		validator: validator,
		log:       log,
	}
}

func (s *bookingService) Save(ctx context.Context, booking *model.Booking) error {
	if booking == nil {
		booking = model.NewBooking()
	}
	if err := s.validate(booking); err != nil {
		return err
	}

	requestID := middleware.RequestIDFromContext(ctx)

	row, err := s.repo.Append(ctx, booking)
	if err != nil {
		s.log.Error("Failed to save booking",
			"request_id", requestID,
			"fields", booking.Len(),
			"error", err,
		)
		return mapStoreError(err)
	}

	s.log.Info("Booking saved successfully",
		"request_id", requestID,
		"row", row,
		"fields", booking.Len(),
	)

	// no row was added for a booking without values
	if row == 0 {
		return nil
	}
	// The booking is already stored; a lost event must not turn into a
	// failed save.
	if err := s.publisher.BookingSaved(ctx, booking, row); err != nil {
		s.log.Warn("Failed to publish booking event",
			"request_id", requestID,
			"row", row,
			"error", err,
		)
	}
	return nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	err := s.validator.Validate(booking)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]any, len(validationErrors))
		for _, ve := range validationErrors {
			details[ve.Field] = ve.Message
		}
		return apperrors.Validation("Booking cannot be stored", details)
	}
	return apperrors.Internal("Failed to validate booking", err)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, bookingerrors.ErrTooManyColumns):
		return apperrors.Validation("Booking adds more columns than a sheet can hold", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Timeout("Saving the booking took too long")
	case errors.Is(err, bookingerrors.ErrCorruptStore):
		return apperrors.Internal("Booking store is unreadable", err)
	default:
		return apperrors.Internal("Failed to save booking", err)
	}
}
