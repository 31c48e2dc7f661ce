package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserChallenge_Absent(t *testing.T) {
	_, ok := (&User{}).Challenge()
	assert.False(t, ok)

	exp := time.Now()
	_, ok = (&User{OTPExpiresAt: &exp}).Challenge()
	assert.False(t, ok, "expiry without a code is not a challenge")
}

func TestOTPChallenge_Live(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	u := &User{OTPCodeHash: "h", OTPExpiresAt: ptr(now.Add(10 * time.Minute))}

	c, ok := u.Challenge()
	assert.True(t, ok)
	assert.True(t, c.Live(now.Add(time.Minute)))
	assert.False(t, c.Live(now.Add(10*time.Minute)), "expiry boundary is exclusive")
	assert.False(t, c.Live(now.Add(11*time.Minute)))
}

func ptr(t time.Time) *time.Time { return &t }
