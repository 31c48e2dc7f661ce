// Package memory holds process-local stores with the same contracts as the
// DynamoDB repos. They back STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notes-api-nosql/internal/domain"
)

// UserRepo keeps users keyed by email. A single mutex makes every method an
// atomic read-modify-write, like the per-item updates of the DynamoDB repo.
type UserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byEmail: make(map[string]*domain.User), now: time.Now}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return fmt.Errorf("user %s already exists: %w", u.Email, domain.ErrConflict)
	}
	r.byEmail[u.Email] = clone(u)
	return nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return clone(u), nil
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

// Get looks a user up by id. It mirrors the DynamoDB store contract.
func (r *UserRepo) Get(_ context.Context, userID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.UserID == userID })
}

func (r *UserRepo) GetByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.GoogleID != "" && u.GoogleID == googleID })
}

func (r *UserRepo) UpsertChallenge(_ context.Context, email, newUserID string, c domain.OTPChallenge) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	u, ok := r.byEmail[email]
	if !ok {
		u = &domain.User{UserID: newUserID, Email: email, CreatedAt: now}
		r.byEmail[email] = u
	}
	exp := c.ExpiresAt.UTC()
	u.OTPCodeHash = c.CodeHash
	u.OTPExpiresAt = &exp
	u.UpdatedAt = now
	return clone(u), nil
}

func (r *UserRepo) ConsumeChallenge(_ context.Context, email, codeHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok || u.OTPCodeHash != codeHash {
		return nil, fmt.Errorf("update user %s: %w", email, domain.ErrConflict)
	}
	u.Verified = true
	u.OTPCodeHash = ""
	u.OTPExpiresAt = nil
	u.UpdatedAt = r.now().UTC()
	return clone(u), nil
}

func (r *UserRepo) LinkGoogle(_ context.Context, email string, id domain.GoogleIdentity) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok || (u.GoogleID != "" && u.GoogleID != id.Subject) {
		return nil, fmt.Errorf("update user %s: %w", email, domain.ErrConflict)
	}
	u.GoogleID = id.Subject
	u.DisplayName = id.Name
	u.Verified = true
	u.UpdatedAt = r.now().UTC()
	return clone(u), nil
}

// Len reports the number of stored users.
func (r *UserRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

func (r *UserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.OTPExpiresAt != nil {
		exp := *u.OTPExpiresAt
		c.OTPExpiresAt = &exp
	}
	return &c
}
