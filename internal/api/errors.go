package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/example/englearn/pkg/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps a domain error onto a status code. Internal errors are
// logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusFor(err)
	logger := s.requestLogger(r).WithError(err)

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Errorf("failed to %s", action)
		msg = "Failed to " + action
	case http.StatusServiceUnavailable:
		logger.Warnf("failed to %s", action)
		msg = "Database unavailable"
	default:
		logger.WithField("status", status).Debugf("rejected %s", action)
	}
	writeErrorMessage(w, status, msg)
}

func (s *Server) requestLogger(r *http.Request) logrus.FieldLogger {
	return s.logger.WithField("request_id", requestIDFrom(r.Context()))
}
