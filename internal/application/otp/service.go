package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// UserStore is the part of the user record store the challenge manager needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpsertChallenge(ctx context.Context, email, newUserID string, c domain.OTPChallenge) (*domain.User, error)
	ConsumeChallenge(ctx context.Context, email, codeHash string) (*domain.User, error)
}

type Sender interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

type Service interface {
	// RequestChallenge issues a fresh code for email, replacing any pending
	// one, and emails it. It returns how long the code stays valid.
	RequestChallenge(ctx context.Context, email string) (time.Duration, error)
	// VerifyChallenge redeems the pending code for email and returns the now
	// verified user. A code can be redeemed at most once.
	VerifyChallenge(ctx context.Context, email, code string) (*domain.User, error)
}

type ServiceDeps struct {
	Users      UserStore
	Sender     Sender
	TTL        time.Duration
	Now        func() time.Time
	NewCode    func() (string, error)
	BcryptCost int
}

type service struct {
	users   UserStore
	sender  Sender
	ttl     time.Duration
	now     func() time.Time
	newCode func() (string, error)
	cost    int
}

func NewService(d ServiceDeps) Service {
	s := &service{
		users:   d.Users,
		sender:  d.Sender,
		ttl:     d.TTL,
		now:     d.Now,
		newCode: d.NewCode,
		cost:    d.BcryptCost,
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = generateCode
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	return s
}

func (s *service) RequestChallenge(ctx context.Context, email string) (time.Duration, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return 0, fmt.Errorf("email is required: %w", domain.ErrValidation)
	}
	code, err := s.newCode()
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash otp: %w", err)
	}
	c := domain.OTPChallenge{CodeHash: string(hash), ExpiresAt: s.now().Add(s.ttl)}
	if _, err := s.users.UpsertChallenge(ctx, email, id.New(), c); err != nil {
		return 0, fmt.Errorf("store otp challenge: %w: %w", domain.ErrPersistence, err)
	}
	if err := s.sender.SendOTP(ctx, email, code, s.ttl); err != nil {
		slog.Error("otp email delivery failed", "email", email, "err", err)
		return 0, fmt.Errorf("send otp: %w: %w", domain.ErrDelivery, err)
	}
	slog.Info("otp challenge issued", "email", email)
	return s.ttl, nil
}

func (s *service) VerifyChallenge(ctx context.Context, email, code string) (*domain.User, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, fmt.Errorf("email and otp are required: %w", domain.ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("no user for email: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w: %w", domain.ErrPersistence, err)
	}
	c, ok := u.Challenge()
	if !ok || !c.Live(s.now()) {
		return nil, fmt.Errorf("no live challenge: %w", domain.ErrInvalidOrExpired)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) != nil {
		return nil, fmt.Errorf("code mismatch: %w", domain.ErrInvalidOrExpired)
	}
	verified, err := s.users.ConsumeChallenge(ctx, email, c.CodeHash)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("challenge already consumed: %w", domain.ErrInvalidOrExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w: %w", domain.ErrPersistence, err)
	}
	slog.Info("otp challenge verified", "user_id", verified.UserID)
	return verified, nil
}

// NormalizeEmail trims and lowercases an address so both login channels join
// on the same key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
