package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer delivers password-reset tokens to account holders.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer logs reset tokens instead of mailing them. Used when no SMTP
// host is configured (development, single-warehouse deployments where an
// admin reads the server log).
type LogMailer struct{}

// SendPasswordReset logs the reset token.
func (LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	slog.Info("password reset requested", "email", email, "token", token)
	return nil
}

// SMTPMailer delivers reset tokens over SMTP with PLAIN auth.
type SMTPMailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SendPasswordReset mails the reset token to the account's email address.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, email, token string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Password reset\r\n\r\n"+
			"A password reset was requested for your account.\r\n"+
			"Reset token: %s\r\n\r\n"+
			"If you did not request this, ignore this message.\r\n",
		m.From, email, token)

	var a smtp.Auth
	if m.User != "" {
		a = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	if err := smtp.SendMail(addr, a, m.From, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}

	return nil
}
