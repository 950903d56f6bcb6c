package shopping

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"
)

const emailSubject = "Your Shopping List"

// Mailer delivers a shopping list to a recipient.
type Mailer interface {
	Send(ctx context.Context, to string, items []Item) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// SMTPMailer sends shopping lists as HTML mail. The standard library client
// upgrades the connection with STARTTLS when the server offers it.
type SMTPMailer struct {
	cfg      SMTPConfig
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for cfg.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

// Send mails the list to the given address.
func (m *SMTPMailer) Send(ctx context.Context, to string, items []Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := m.cfg.Host + ":" + strconv.Itoa(m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	msg := BuildMessage(m.cfg.User, to, items)
	if err := m.sendMail(addr, auth, m.cfg.User, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// BuildMessage renders the full MIME message for a shopping list.
func BuildMessage(from, to string, items []Item) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + emailSubject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(FormatHTML(items))
	return []byte(sb.String())
}

// FormatHTML renders the mail body.
func FormatHTML(items []Item) string {
	var sb strings.Builder
	sb.WriteString("<h2>Your Shopping List</h2><ul>")
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(FormatItem(it))))
	}
	sb.WriteString("</ul><p>Happy cooking!</p>")
	return sb.String()
}
