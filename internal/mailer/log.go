package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogSender writes the OTP to the log instead of sending mail. Used
// when no SMTP host is configured.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a log-only sender.
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendOTP implements Sender.
func (s *LogSender) SendOTP(_ context.Context, to, otp string) error {
	s.log.Info("OTP mail (log sender)",
		zap.String("to", to),
		zap.String("otp", otp))
	return nil
}
