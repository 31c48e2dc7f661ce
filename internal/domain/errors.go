package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation failed")

	// Auth challenge failures. Handlers report both with the same message so a
	// caller cannot tell an unknown email from a wrong code.
	ErrInvalidOrExpired = errors.New("invalid or expired otp")

	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingPayload = errors.New("missing token payload")
	ErrMissingToken   = errors.New("missing token")
	ErrTokenExpired   = errors.New("token expired")

	// Infrastructure failures, retryable by the caller.
	ErrDelivery    = errors.New("delivery failed")
	ErrPersistence = errors.New("persistence failed")

	ErrSigning       = errors.New("signing failed")
	ErrConfiguration = errors.New("configuration error")
)
