package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/metrics"
)

const (
	flowSendOTP   = "otp_send"
	flowVerifyOTP = "otp_verify"
	flowGoogle    = "google"
)

type ChallengeManager interface {
	RequestChallenge(ctx context.Context, email string) (time.Duration, error)
	VerifyChallenge(ctx context.Context, email, code string) (*domain.User, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*domain.GoogleIdentity, error)
}

type AccountLinker interface {
	ResolveOrCreate(ctx context.Context, identity *domain.GoogleIdentity) (*domain.User, error)
}

type TokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

// Result is a successful login: the user and a session token for them.
type Result struct {
	User  *domain.User
	Token string
}

type Service interface {
	SendOTP(ctx context.Context, email string) (time.Duration, error)
	VerifyOTP(ctx context.Context, email, code string) (*Result, error)
	GoogleLogin(ctx context.Context, idToken string) (*Result, error)
}

type ServiceDeps struct {
	OTP      ChallengeManager
	Google   IdentityVerifier
	Accounts AccountLinker
	Tokens   TokenIssuer
}

type service struct {
	otp      ChallengeManager
	google   IdentityVerifier
	accounts AccountLinker
	tokens   TokenIssuer
}

func NewService(d ServiceDeps) Service {
	return &service{
		otp:      d.OTP,
		google:   d.Google,
		accounts: d.Accounts,
		tokens:   d.Tokens,
	}
}

func (s *service) SendOTP(ctx context.Context, email string) (time.Duration, error) {
	ttl, err := s.otp.RequestChallenge(ctx, email)
	record(flowSendOTP, err)
	return ttl, err
}

func (s *service) VerifyOTP(ctx context.Context, email, code string) (*Result, error) {
	res, err := s.verifyOTP(ctx, email, code)
	record(flowVerifyOTP, err)
	return res, err
}

func (s *service) verifyOTP(ctx context.Context, email, code string) (*Result, error) {
	u, err := s.otp.VerifyChallenge(ctx, email, code)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) GoogleLogin(ctx context.Context, idToken string) (*Result, error) {
	res, err := s.googleLogin(ctx, idToken)
	record(flowGoogle, err)
	return res, err
}

func (s *service) googleLogin(ctx context.Context, idToken string) (*Result, error) {
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !identity.EmailVerified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrInvalidToken)
	}
	u, err := s.accounts.ResolveOrCreate(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *service) issue(u *domain.User) (*Result, error) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Result{User: u, Token: tok}, nil
}

func record(flow string, err error) {
	outcome := metrics.Outcome(err)
	metrics.AuthAttempts.WithLabelValues(flow, outcome).Inc()
	if err != nil && outcome == "error" {
		slog.Error("auth flow failed", "flow", flow, "err", err)
	}
}
