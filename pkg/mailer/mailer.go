package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/pkg/logger"
)

// SenderName is shown in the From header of every outgoing mail.
const SenderName = "Trouve ton artisan"

var ErrInvalidMessage = errors.New("invalid mail message")

// Message is a single HTML mail.
type Message struct {
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// Mailer delivers a message once. Implementations do not retry.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host
// is configured (development).
func New(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set, outgoing mail will only be logged", nil)
		return &LogMailer{From: cfg.From}
	}
	return &SMTPMailer{cfg: cfg}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	logger.Info("[DEV MODE] Mail not sent", map[string]interface{}{
		"from":     m.From,
		"to":       msg.To,
		"reply_to": msg.ReplyTo,
		"subject":  msg.Subject,
	})
	return nil
}

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	timeout := m.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	conn, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && m.cfg.Port != "465" {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if m.cfg.User != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO rejected: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(msg.build(m.cfg.From, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message rejected: %w", err)
	}

	logger.Info("Mail sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return client.Quit()
}

// dial opens implicit TLS on port 465 and a plain connection otherwise.
func (m *SMTPMailer) dial(ctx context.Context, addr string) (net.Conn, error) {
	if m.cfg.Port == "465" {
		dialer := &tls.Dialer{Config: &tls.Config{ServerName: m.cfg.Host}}
		return dialer.DialContext(ctx, "tcp", addr)
	}
	var dialer net.Dialer
	return dialer.DialContext(ctx, "tcp", addr)
}

func (msg Message) validate() error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: recipient: %v", ErrInvalidMessage, err)
	}
	if msg.ReplyTo != "" {
		if _, err := mail.ParseAddress(msg.ReplyTo); err != nil {
			return fmt.Errorf("%w: reply-to: %v", ErrInvalidMessage, err)
		}
	}
	return nil
}

// headerValue drops line breaks so user input cannot add headers.
func headerValue(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func (msg Message) build(from string, now time.Time) []byte {
	sender := mail.Address{Name: SenderName, Address: from}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender.String())
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(msg.To))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(msg.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return []byte(b.String())
}
