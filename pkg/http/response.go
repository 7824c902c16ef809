package http

import (
	"encoding/json"
	"net/http"

	apperrors "bookingsheet/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// WriteJSON writes data as the exact JSON encoding, with no trailing
// newline.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, err = w.Write(body)
	return err
}

// WriteError renders err with the status of its AppError. Causes of internal
// errors are never exposed to the client.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	errResp := ErrorResponse{
		Error:   appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Code == apperrors.CodeInternal {
		errResp = ErrorResponse{Error: "Internal server error"}
	}

	return WriteJSON(w, appErr.StatusCode(), errResp)
}

func WriteStatus(w http.ResponseWriter, status string) error {
	return WriteJSON(w, http.StatusOK, StatusResponse{Status: status})
}
