package handler

import (
	"errors"
	"io"
	"net/http"

	"bookingsheet/internal/bookings/service"
	apperrors "bookingsheet/pkg/errors"
	httputil "bookingsheet/pkg/http"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/middleware"
	"bookingsheet/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const SaveBookingPath = "/save-booking"

type BookingHandler struct {
	service        service.BookingService
	maxRequestSize int64
	log            *logger.Logger
}

func NewBookingHandler(service service.BookingService, maxRequestSize int64, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:        service,
		maxRequestSize: maxRequestSize,
		log:            log,
	}
}

// SaveBooking stores the JSON object in the request body as one row of the
// booking sheet.
func (h *BookingHandler) SaveBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	booking, err := h.decode(w, r)
	if err != nil {
		h.log.Warn("Rejected booking request",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		h.writeError(w, err)
		return
	}

	if err := h.service.Save(r.Context(), booking); err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteStatus(w, model.StatusSaved); err != nil {
		h.log.Error("failed to write status response", "handler", "SaveBooking", "operation", "WriteStatus", "error", err)
	}
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request) (*model.Booking, error) {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperrors.TooLarge(maxErr.Limit)
		}
		return nil, apperrors.InvalidInput("Failed to read request body")
	}

	var booking model.Booking
	if err := booking.UnmarshalJSON(body); err != nil {
		switch {
		case errors.Is(err, model.ErrNotObject):
			return nil, apperrors.InvalidInput("Request body must be a JSON object")
		default:
			return nil, apperrors.InvalidInput("Invalid request body")
		}
	}
	return &booking, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "SaveBooking", "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(SaveBookingPath, h.SaveBooking)
}
