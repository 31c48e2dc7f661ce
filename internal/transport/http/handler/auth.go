package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/notes-api-nosql/internal/application/auth"
	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/pkg/validate"
)

// AuthHandler serves the passwordless login endpoints.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid email", err.Error())
		return
	}
	ttl, err := h.svc.SendOTP(r.Context(), req.Email)
	if errors.Is(err, domain.ErrDelivery) {
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to send OTP", "email delivery failed")
		return
	}
	if err != nil {
		respondError(w, r, err, messages{validation: "Email is required", failure: "Failed to send OTP"})
		return
	}
	writeJSON(w, http.StatusOK, OTPSentEnvelope{
		Message:   "OTP sent to your email successfully",
		ExpiresIn: expiresIn(ttl),
	})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if req.Email == "" || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidOTP)
		return
	}
	res, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if errors.Is(err, domain.ErrNotFound) {
		// Unknown email and wrong code must look the same to the caller.
		err = fmt.Errorf("%w: %w", domain.ErrInvalidOrExpired, err)
	}
	if err != nil {
		respondError(w, r, err, messages{validation: "Email and OTP are required", failure: "Verification failed"})
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: toUserView(res.User), Token: res.Token})
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req domain.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "No token provided")
		return
	}
	res, err := h.svc.GoogleLogin(r.Context(), req.Token)
	if err != nil {
		respondError(w, r, err, messages{validation: "No token provided", failure: "Google authentication failed"})
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: toUserView(res.User), Token: res.Token})
}

func expiresIn(d time.Duration) string {
	if m := int(d / time.Minute); m != 1 {
		return fmt.Sprintf("%d minutes", m)
	}
	return "1 minute"
}
