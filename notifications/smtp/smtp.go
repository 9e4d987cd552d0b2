// Package smtp delivers email notifications, such as the reward
// confirmation sent to respondents, through an SMTP server.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"

	"github.com/surveypro/saas-backend/notifications"
)

// Config of the SMTP sender. TestAPIPort is the HTTP port of a MailHog
// server, only used by tests to read the delivered messages.
type Config struct {
	FromName     string
	FromAddress  string
	SMTPUsername string
	SMTPPassword string
	SMTPServer   string
	SMTPPort     int
	TestAPIPort  int
}

// Email sends notifications as multipart (plain text and HTML) emails.
type Email struct {
	config *Config
	from   mail.Address
	auth   smtp.Auth
}

// New configures the sender with a *Config. Authentication is only used
// when both the username and the password are set.
func (se *Email) New(rawConfig any) error {
	config, ok := rawConfig.(*Config)
	if !ok {
		return fmt.Errorf("invalid SMTP configuration")
	}
	from, err := mail.ParseAddress(config.FromAddress)
	if err != nil {
		return fmt.Errorf("could not parse from email: %v", err)
	}
	from.Name = config.FromName
	se.config = config
	se.from = *from
	if config.SMTPUsername != "" && config.SMTPPassword != "" {
		se.auth = smtp.PlainAuth("", config.SMTPUsername, config.SMTPPassword, config.SMTPServer)
	}
	return nil
}

// SendNotification delivers the notification. The context bounds the whole
// SMTP conversation.
func (se *Email) SendNotification(ctx context.Context, notification *notifications.Notification) error {
	msg, err := se.composeBody(notification)
	if err != nil {
		return fmt.Errorf("could not compose email body: %v", err)
	}
	addr := net.JoinHostPort(se.config.SMTPServer, strconv.Itoa(se.config.SMTPPort))
	conn, err := new(net.Dialer).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	client, err := smtp.NewClient(conn, se.config.SMTPServer)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("could not start SMTP session: %w", err)
	}
	defer func() { _ = client.Close() }()
	if err := se.deliver(client, notification.ToAddress, msg); err != nil {
		return err
	}
	return client.Quit()
}

func (se *Email) deliver(client *smtp.Client, to string, msg []byte) error {
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: se.config.SMTPServer}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	if se.auth != nil {
		if err := client.Auth(se.auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(se.from.Address); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO %s rejected: %w", to, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("could not write message: %w", err)
	}
	return w.Close()
}

// composeBody renders the message: headers followed by a
// multipart/alternative body with the plain text part first.
func (se *Email) composeBody(notification *notifications.Notification) ([]byte, error) {
	to, err := mail.ParseAddress(notification.ToAddress)
	if err != nil {
		return nil, fmt.Errorf("could not parse to email: %v", err)
	}
	if notification.ToName != "" {
		to.Name = notification.ToName
	}
	var replyTo *mail.Address
	if notification.ReplyTo != "" {
		if replyTo, err = mail.ParseAddress(notification.ReplyTo); err != nil {
			return nil, fmt.Errorf("could not parse reply-to email: %v", err)
		}
	}

	var body bytes.Buffer
	parts := multipart.NewWriter(&body)
	for _, part := range []struct{ contentType, content string }{
		{"text/plain", notification.PlainBody},
		{"text/html", notification.Body},
	} {
		w, err := parts.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.contentType + `; charset="UTF-8"`},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("could not write %s part: %v", part.contentType, err)
		}
	}
	if err := parts.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	header := func(key, value string) { fmt.Fprintf(&msg, "%s: %s\r\n", key, value) }
	header("From", se.from.String())
	header("To", to.String())
	if replyTo != nil {
		header("Reply-To", replyTo.String())
	}
	header("Subject", mime.QEncoding.Encode("utf-8", notification.Subject))
	header("MIME-Version", "1.0")
	header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", parts.Boundary()))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
