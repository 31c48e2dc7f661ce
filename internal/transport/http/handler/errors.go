package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/notes-api-nosql/internal/domain"
)

const msgInvalidOTP = "Invalid or expired OTP"

// messages are the route-specific texts for errors whose wording depends on
// the endpoint.
type messages struct {
	validation string
	notFound   string
	failure    string
}

// statusFor maps a service error onto an HTTP status and client message.
func statusFor(err error, m messages) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, m.validation
	case errors.Is(err, domain.ErrInvalidOrExpired):
		return http.StatusBadRequest, msgInvalidOTP
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid Google token"
	case errors.Is(err, domain.ErrMissingPayload):
		return http.StatusBadRequest, "Invalid token payload"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Access denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, m.notFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Email is linked to a different Google account"
	case errors.Is(err, domain.ErrSigning):
		return http.StatusInternalServerError, "Failed to generate authentication token"
	default:
		return http.StatusInternalServerError, m.failure
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error, m messages) {
	status, msg := statusFor(err, m)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, status, msg)
}
