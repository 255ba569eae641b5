package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Message is an HTML email to one or more recipients.
type Message struct {
	To       []string
	Subject  string
	HTMLBody string
}

// SMTP sends mail over implicit TLS (port 465) or STARTTLS (any other port).
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// ErrHeaderInjection is returned when a header value contains a line break.
var ErrHeaderInjection = errors.New("mail header contains a line break")

func (m *SMTP) Send(ctx context.Context, msg Message) error {
	if m.Host == "" {
		return fmt.Errorf("smtp host is not set")
	}
	if err := msg.validate(); err != nil {
		return err
	}
	from := m.From
	if from == "" {
		from = m.Username
	}

	addr := net.JoinHostPort(m.Host, m.Port)
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	var (
		conn net.Conn
		err  error
	)
	if m.Port == "465" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to reach smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if m.Port != "465" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
				return err
			}
		}
	}
	if m.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, to := range msg.To {
		if err := c.Rcpt(to); err != nil {
			return err
		}
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(compose(from, msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func (msg Message) validate() error {
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("%w: subject", ErrHeaderInjection)
	}
	for _, to := range msg.To {
		if strings.ContainsAny(to, "\r\n") {
			return fmt.Errorf("%w: recipient", ErrHeaderInjection)
		}
	}
	return nil
}

// compose builds the raw message. Line breaks in the subject are dropped and
// the subject is Q-encoded so non-ASCII text survives 7-bit transports.
func compose(from string, msg Message) []byte {
	subject := strings.NewReplacer("\r", "", "\n", "").Replace(msg.Subject)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return []byte(b.String())
}
