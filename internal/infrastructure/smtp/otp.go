package smtp

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var otpHTML = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>Welcome to {{.App}}</h2>
  <p>Your one-time password for secure login is:</p>
  <p style="font-size: 32px; font-weight: bold; letter-spacing: 5px;">{{.Code}}</p>
  <p>This code expires in <strong>{{.TTL}}</strong>. Please do not share it with anyone.</p>
  <p style="font-size: 12px; color: #999;">If you didn't request this code, please ignore this email.</p>
</div>`))

// OTPSender delivers one-time codes by email.
type OTPSender struct {
	mailer Mailer
	app    string
}

func NewOTPSender(mailer Mailer, app string) *OTPSender {
	return &OTPSender{mailer: mailer, app: app}
}

func (s *OTPSender) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	expires := humanDuration(ttl)
	var html strings.Builder
	if err := otpHTML.Execute(&html, struct{ App, Code, TTL string }{s.app, code, expires}); err != nil {
		return fmt.Errorf("render otp email: %w", err)
	}
	return s.mailer.Send(Message{
		To:      email,
		Subject: fmt.Sprintf("Your OTP for %s - Secure Login", s.app),
		Text:    fmt.Sprintf("Your OTP for %s is: %s. It expires in %s. Please do not share this code with anyone.", s.app, code, expires),
		HTML:    html.String(),
	})
}

// humanDuration renders whole minutes the way the acknowledgement does.
func humanDuration(d time.Duration) string {
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
