package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"simkos/pkg/config"
)

// SMTPSender sends OTP mail through a plain SMTP relay.
type SMTPSender struct {
	cfg *config.SMTPConfig
}

// NewSMTPSender creates a sender from the SMTP configuration.
func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendOTP implements Sender.
func (s *SMTPSender) SendOTP(_ context.Context, to, otp string) error {
	addr := s.cfg.Host + ":" + s.cfg.Port

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	msg := buildOTPMessage(s.cfg.From, to, otp)
	if err := smtp.SendMail(addr, auth, s.cfg.Username, []string{to}, msg); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

func buildOTPMessage(from, to, otp string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Kode Verifikasi SimKos\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Kode verifikasi (OTP) Anda: %s\r\n\r\n", otp)
	b.WriteString("Kode ini berlaku selama 5 menit. Jangan berikan kode ini kepada siapa pun.\r\n")
	return []byte(b.String())
}
