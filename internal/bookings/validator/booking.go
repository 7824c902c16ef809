package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bookingsheet/internal/bookings/sheet"
	"bookingsheet/pkg/logger"
	"bookingsheet/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	keyRule   = fmt.Sprintf("required,max=%d", sheet.MaxCellLength)
	valueRule = fmt.Sprintf("max=%d", sheet.MaxCellLength)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// BookingValidator checks that a booking fits in a spreadsheet row. Booking
// content itself is free-form.
type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	var validationErrors ValidationErrors

	for i, field := range booking.Fields() {
		name := field.Key
		if name == "" {
			name = fmt.Sprintf("field[%d]", i)
		}

		if err := v.validate.Var(field.Key, keyRule); err != nil {
			validationErrors = append(validationErrors, v.translate(name, "key", err)...)
		}

		text, ok := cellText(field.Value)
		if !ok {
			continue
		}
		if err := v.validate.Var(text, valueRule); err != nil {
			validationErrors = append(validationErrors, v.translate(name, "value", err)...)
		}
	}

	if len(validationErrors) > 0 {
		v.logger.Debug("Booking failed validation", "errors", validationErrors.Error())
		return validationErrors
	}
	return nil
}

func cellText(value any) (string, bool) {
	switch val := value.(type) {
	case string:
		return val, true
	case json.RawMessage:
		return string(val), true
	default:
		return "", false
	}
}

func (v *BookingValidator) translate(field, part string, err error) ValidationErrors {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return ValidationErrors{{Field: field, Message: err.Error()}}
	}

	var out ValidationErrors
	for _, fe := range errs {
		message := fe.Error()
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s must not be empty", part)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", part, fe.Param())
		}
		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}
