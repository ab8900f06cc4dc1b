// Package mailer sends plain-text and HTML email over SMTP with PLAIN auth.
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers messages through one SMTP server.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// New validates cfg and returns a Mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, errors.New("SMTP host and port must be provided")
	}
	if cfg.From == "" {
		return nil, errors.New("sender email address cannot be empty")
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// Send delivers msg. Content-Type is text/html when the body looks like HTML.
func (m *Mailer) Send(msg Message) error {
	if msg.To == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if msg.Subject == "" {
		return errors.New("email subject cannot be empty")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, m.build(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *Mailer) build(msg Message) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(msg.Body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", msg.To, m.cfg.From, sanitizeHeader(msg.Subject), contentType, msg.Body))
}

// sanitizeHeader strips CR/LF so user-controlled values cannot inject headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
