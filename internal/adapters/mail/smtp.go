// Package mail sends outbound notification mail over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// AppBaseURL is the public base URL used in confirmation links,
	// e.g. "https://contacts.example.com".
	AppBaseURL string
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) ports.MailSender {
	return &SMTPSender{cfg: cfg}
}

// sendMail is a seam so tests can capture outbound messages without a
// real SMTP server.
var sendMail = smtp.SendMail

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<html>
<body>
<p>Hello {{.Username}},</p>
<p>Please confirm your email address by following this link:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not sign up, you can ignore this message.</p>
</body>
</html>`))

var digestTmpl = template.Must(template.New("digest").Parse(`<html>
<body>
<p>Hello {{.Username}},</p>
<p>These contacts have a birthday in the next week:</p>
<ul>
{{range .Contacts}}<li>{{.FirstName}} {{.LastName}} &mdash; {{.BornDate.Format "January 2"}}</li>
{{end}}</ul>
</body>
</html>`))

func (s *SMTPSender) SendConfirmation(ctx context.Context, to, username, token string) error {
	var body bytes.Buffer
	err := confirmationTmpl.Execute(&body, map[string]any{
		"Username": username,
		"Link":     fmt.Sprintf("%s/api/auth/confirmed_email/%s", s.cfg.AppBaseURL, token),
	})
	if err != nil {
		return fmt.Errorf("failed to render confirmation mail: %w", err)
	}
	return s.send(to, "Confirm your email", body.String())
}

func (s *SMTPSender) SendBirthdayDigest(ctx context.Context, to, username string, contacts []*domain.Contact) error {
	var body bytes.Buffer
	err := digestTmpl.Execute(&body, map[string]any{
		"Username": username,
		"Contacts": contacts,
	})
	if err != nil {
		return fmt.Errorf("failed to render digest mail: %w", err)
	}
	return s.send(to, "Upcoming birthdays", body.String())
}

func (s *SMTPSender) send(to, subject, htmlBody string) error {
	headers := []string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
