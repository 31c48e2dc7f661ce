package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/notes-api-nosql/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator resolves a session token to the user id it was issued for.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth returns middleware that validates the Bearer session token and injects
// the user id into the request context.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			userID, err := tokens.Validate(raw)
			switch {
			case errors.Is(err, domain.ErrMissingToken):
				writeJSONError(w, http.StatusUnauthorized, "Access denied")
				return
			case errors.Is(err, domain.ErrTokenExpired):
				writeJSONError(w, http.StatusUnauthorized, "Token expired")
				return
			case err != nil:
				writeJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id set by Auth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns ctx carrying userID as Auth would set it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
