package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prudhvinik1/foodbridge/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("missing body")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}

func writeBadBody(w http.ResponseWriter, err error) {
	if errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Request body is required")
		return
	}
	writeMessage(w, http.StatusBadRequest, "Invalid request body")
}

// writeError maps a service error to its HTTP status. Only *services.Error
// messages reach the client; anything else is logged and reported as 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeMessage(w, statusFor(svcErr), svcErr.Message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
