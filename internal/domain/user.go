package domain

import "time"

// User is the canonical identity record. Email is the partition key of the
// users table, so one record exists per email regardless of auth channel.
type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        string     `json:"email" dynamodbav:"email"`
	GoogleID     string     `json:"-" dynamodbav:"google_id,omitempty"`
	DisplayName  string     `json:"name,omitempty" dynamodbav:"display_name,omitempty"`
	Verified     bool       `json:"verified" dynamodbav:"verified"`
	OTPCodeHash  string     `json:"-" dynamodbav:"otp_code_hash,omitempty"`
	OTPExpiresAt *time.Time `json:"-" dynamodbav:"otp_expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Challenge returns the live OTP challenge stored on the user, if any.
func (u *User) Challenge() (OTPChallenge, bool) {
	if u.OTPCodeHash == "" || u.OTPExpiresAt == nil {
		return OTPChallenge{}, false
	}
	return OTPChallenge{CodeHash: u.OTPCodeHash, ExpiresAt: *u.OTPExpiresAt}, true
}

// OTPChallenge is the single pending one-time code of a user. The code itself
// is only ever held in memory long enough to email it; the store keeps a hash.
type OTPChallenge struct {
	CodeHash  string
	ExpiresAt time.Time
}

// Live reports whether the challenge can still be redeemed at now.
func (c OTPChallenge) Live(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}

// GoogleIdentity is a claim set that passed Google ID token verification.
// Only the google verifier produces it; raw ID tokens are plain strings.
type GoogleIdentity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

type SendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}
