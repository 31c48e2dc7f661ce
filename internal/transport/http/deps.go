package http

import (
	"context"
	"time"

	"github.com/notes-api-nosql/internal/application/account"
	"github.com/notes-api-nosql/internal/application/note"
	"github.com/notes-api-nosql/internal/application/otp"
	"github.com/notes-api-nosql/internal/domain"
)

// UserRepository is the union of the user-record operations the OTP manager
// and the account linker need. Both the DynamoDB and in-memory stores satisfy it.
type UserRepository interface {
	otp.UserStore
	account.UserStore
}

// NoteRepository is the minimal interface the router requires from a note store.
type NoteRepository = note.NoteStore

// OTPSender delivers a code to an email address.
type OTPSender = otp.Sender

// IdentityVerifier turns a raw Google ID token into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*domain.GoogleIdentity, error)
}

// TokenProvider issues and validates session tokens.
type TokenProvider interface {
	Issue(u *domain.User) (string, error)
	Validate(token string) (string, error)
}

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	NoteRepo    NoteRepository
	OTPSender   OTPSender
	Google      IdentityVerifier
	JWTProvider TokenProvider
	OTPTTL      time.Duration
}
