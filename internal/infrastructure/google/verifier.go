package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notes-api-nosql/internal/domain"
	"google.golang.org/api/idtoken"
)

// validateFunc matches idtoken.Validate: it checks signature, issuer, audience
// and expiry of a Google ID token.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the Google ID token and returns the verified identity.
// A token that fails validation yields domain.ErrInvalidToken; a valid token
// without subject or email yields domain.ErrMissingPayload.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.GoogleIdentity, error) {
	if token == "" {
		return nil, fmt.Errorf("google token required: %w", domain.ErrValidation)
	}
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		slog.Warn("google token verification failed", "err", err, "token_len", len(token))
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrInvalidToken)
	}
	if p == nil {
		return nil, fmt.Errorf("google token has no payload: %w", domain.ErrMissingPayload)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	if p.Subject == "" || email == "" {
		return nil, fmt.Errorf("google token lacks subject or email: %w", domain.ErrMissingPayload)
	}
	return &domain.GoogleIdentity{
		Subject:       p.Subject,
		Email:         strings.ToLower(email),
		Name:          displayName(p.Claims),
		EmailVerified: emailVerified,
	}, nil
}

func displayName(claims map[string]interface{}) string {
	if name, _ := claims["name"].(string); name != "" {
		return name
	}
	first, _ := claims["given_name"].(string)
	last, _ := claims["family_name"].(string)
	return strings.TrimSpace(first + " " + last)
}
