// Package mailer sends transactional email over SMTP. Password reset and
// email verification mail goes through here.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings. A zero Host disables sending entirely, which is
// the expected state in development and in tests.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer represents an email sender.
type Mailer struct {
	config Config
	dialer *gomail.Dialer
}

// Email represents an email message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a new Mailer instance with the given configuration.
func NewMailer(cfg Config) *Mailer {
	m := &Mailer{config: cfg}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

// Enabled reports whether SMTP is configured.
func (m *Mailer) Enabled() bool {
	return m.dialer != nil
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer is not configured")
	}
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return m.dialer.DialAndSend(msg)
}

// SendHTML sends an HTML email.
func (m *Mailer) SendHTML(to []string, subject, htmlBody string) error {
	return m.Send(Email{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
}
