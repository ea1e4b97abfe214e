package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/lysyi3m/politics-watch/app/cfg"
)

// smtpSender implements enmime.Sender with a bounded dial and a mandatory
// STARTTLS upgrade before authenticating.
type smtpSender struct {
	ctx    context.Context
	config cfg.SMTP
}

func newSMTPSender(ctx context.Context, config cfg.SMTP) *smtpSender {
	return &smtpSender{ctx: ctx, config: config}
}

func (s *smtpSender) Send(reversePath string, recipients []string, msg []byte) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	dialer := net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(s.ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.config.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("server %s does not support STARTTLS", addr)
	}
	if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := client.Mail(reversePath); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}
