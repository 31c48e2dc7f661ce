package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notes-api-nosql/internal/domain"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 session tokens with one process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Provider struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewProvider returns domain.ErrConfiguration when the secret is empty; the
// service must not start without one.
func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is not set: %w", domain.ErrConfiguration)
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("jwt expiry must be positive: %w", domain.ErrConfiguration)
	}
	return &Provider{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Issue mints a session token for the user.
func (p *Provider) Issue(u *domain.User) (string, error) {
	if u == nil || u.UserID == "" {
		return "", fmt.Errorf("user id required: %w", domain.ErrSigning)
	}
	now := p.now()
	claims := Claims{
		UserID: u.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %v: %w", err, domain.ErrSigning)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the embedded user id.
func (p *Provider) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", domain.ErrMissingToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	if !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}
	return claims.UserID, nil
}
