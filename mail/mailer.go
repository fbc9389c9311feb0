// Package mail sends transactional email over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"text/template"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`From: {{.From}}
To: {{.To}}
Subject: Welcome to SocialKit
MIME-Version: 1.0
Content-Type: text/plain; charset="utf-8"

Hi {{.UserName}},

Welcome aboard! Your account is ready.

Head over to your dashboard to connect your social accounts and get started.

The SocialKit Team
`))

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers mail through a single SMTP relay.
type SMTPMailer struct {
	cfg Config
	// sendMail is swapped out in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// SendWelcome sends the signup welcome mail.
func (m *SMTPMailer) SendWelcome(to, userName string) error {
	body, err := renderWelcome(m.cfg.From, to, userName)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.sendMail(addr, auth, m.cfg.From, []string{to}, body); err != nil {
		return fmt.Errorf("sending welcome mail to %s: %w", to, err)
	}
	return nil
}

func renderWelcome(from, to, userName string) ([]byte, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		From     string
		To       string
		UserName string
	}{From: from, To: to, UserName: userName})
	if err != nil {
		return nil, fmt.Errorf("rendering welcome template: %w", err)
	}
	return buf.Bytes(), nil
}
