// Package mailer delivers OTP mail. The SMTP sender is used when mail
// is configured; the log sender stands in during development.
package mailer

import (
	"context"
)

// Sender delivers a one-time password to an address.
type Sender interface {
	SendOTP(ctx context.Context, to, otp string) error
}
