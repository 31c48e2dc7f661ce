package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notes-api-nosql/internal/domain"
	"github.com/notes-api-nosql/internal/pkg/id"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	LinkGoogle(ctx context.Context, email string, id domain.GoogleIdentity) (*domain.User, error)
}

// Linker maps a verified Google identity onto exactly one user record,
// joining with OTP-created accounts on email.
type Linker struct {
	users UserStore
	now   func() time.Time
}

func NewLinker(users UserStore) *Linker {
	return &Linker{users: users, now: time.Now}
}

// ResolveOrCreate returns the user for identity, linking or creating the
// record as needed. Repeated calls with the same identity return the same
// user id.
func (l *Linker) ResolveOrCreate(ctx context.Context, identity *domain.GoogleIdentity) (*domain.User, error) {
	if identity == nil || identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("identity lacks subject or email: %w", domain.ErrValidation)
	}
	gi := *identity
	gi.Email = strings.ToLower(strings.TrimSpace(gi.Email))

	u, err := l.users.GetByGoogleID(ctx, gi.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup by google id: %w: %w", domain.ErrPersistence, err)
	}

	u, err = l.linkByEmail(ctx, gi)
	if !errors.Is(err, domain.ErrNotFound) {
		return u, err
	}

	now := l.now().UTC()
	nu := &domain.User{
		UserID:      id.New(),
		Email:       gi.Email,
		GoogleID:    gi.Subject,
		DisplayName: gi.Name,
		Verified:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = l.users.Create(ctx, nu)
	switch {
	case err == nil:
		slog.Info("user created from google identity", "user_id", nu.UserID)
		return nu, nil
	case errors.Is(err, domain.ErrConflict):
		// A concurrent signup created the email record first.
		return l.linkByEmail(ctx, gi)
	default:
		return nil, fmt.Errorf("create user: %w: %w", domain.ErrPersistence, err)
	}
}

// linkByEmail attaches gi to an existing record for its email. It returns
// domain.ErrNotFound when there is no such record and domain.ErrConflict when
// the record belongs to a different Google subject.
func (l *Linker) linkByEmail(ctx context.Context, gi domain.GoogleIdentity) (*domain.User, error) {
	existing, err := l.users.GetByEmail(ctx, gi.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("lookup by email: %w: %w", domain.ErrPersistence, err)
	}
	if existing.GoogleID != "" && existing.GoogleID != gi.Subject {
		return nil, fmt.Errorf("email already linked to another google account: %w", domain.ErrConflict)
	}
	u, err := l.users.LinkGoogle(ctx, gi.Email, gi)
	if errors.Is(err, domain.ErrConflict) {
		return nil, fmt.Errorf("link google account: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("link google account: %w: %w", domain.ErrPersistence, err)
	}
	if existing.GoogleID == "" {
		slog.Info("google account linked", "user_id", u.UserID)
	}
	return u, nil
}
