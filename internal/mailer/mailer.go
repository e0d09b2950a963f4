// Package mailer delivers transactional email over SMTP
package mailer

import (
	"fmt"

	"gopkg.in/mail.v2"
)

// Mailer sends email through a configured SMTP server
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// New creates a new mailer. An empty host disables sending.
func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Enabled reports whether an SMTP host is configured
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// SendPasswordReset sends the password reset link to a user
func (m *Mailer) SendPasswordReset(to, name, resetLink string) error {
	if !m.Enabled() {
		return fmt.Errorf("SMTP is not configured")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Redefinição de senha - Mundo dos Bots")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Olá, %s!</p>
<p>Recebemos uma solicitação para redefinir a sua senha. Clique no link abaixo para criar uma nova senha:</p>
<p><a href="%s">%s</a></p>
<p>O link expira em 1 hora. Se você não solicitou a redefinição, ignore este email.</p>`,
		name, resetLink, resetLink,
	))

	dialer := mail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}
