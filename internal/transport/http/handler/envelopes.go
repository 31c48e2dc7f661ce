package handler

import (
	"encoding/json"
	"net/http"

	"github.com/notes-api-nosql/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// OTPSentEnvelope acknowledges a send-otp request. It never carries the code.
type OTPSentEnvelope struct {
	Message   string `json:"message"`
	ExpiresIn string `json:"expiresIn"`
}

// AuthEnvelope wraps successful logins.
type AuthEnvelope struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

// UserView is the public projection of a user record.
type UserView struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func toUserView(u *domain.User) UserView {
	return UserView{Email: u.Email, Name: u.DisplayName}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func writeErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, Details: details})
}
