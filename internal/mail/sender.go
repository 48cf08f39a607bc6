// Package mail delivers transactional email such as password reset links.
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/smm-webpanel/internal/config"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if err := e.Send(s.cfg.Addr(), auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogSender struct {
	Log *logrus.Logger
}

func (s LogSender) Send(_ context.Context, to, subject, body string) error {
	s.Log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info(body)
	return nil
}

// New picks the SMTP sender when a relay is configured.
func New(cfg config.SMTPConfig, log *logrus.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return LogSender{Log: log}
}

// ResetPasswordMessage renders the password reset mail.
func ResetPasswordMessage(baseURL, token string) (subject, body string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", baseURL, token)
	subject = "Reset your password"
	body = "We received a request to reset your password.\n\n" +
		"Open the link below within one hour to choose a new one:\n" + link + "\n\n" +
		"If you did not ask for this, you can ignore this email.\n"
	return subject, body
}
