package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/lysyi3m/politics-watch/app/cfg"
)

// Sink delivers one alert. A false result with a nil error means delivery was
// skipped.
type Sink interface {
	Send(ctx context.Context, subject, body string) (bool, error)
}

var _ Sink = (*Notifier)(nil)

// Notifier sends plain-text alerts over SMTP.
type Notifier struct {
	config cfg.SMTP
	sender func(ctx context.Context) enmime.Sender
}

func NewNotifier(config cfg.SMTP) *Notifier {
	n := &Notifier{config: config}
	n.sender = func(ctx context.Context) enmime.Sender {
		return newSMTPSender(ctx, n.config)
	}
	return n
}

// Configured reports whether every setting needed for delivery is present.
func (n *Notifier) Configured() bool {
	c := n.config
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Password != "" && c.From != "" && c.To != ""
}

func (n *Notifier) Send(ctx context.Context, subject, body string) (bool, error) {
	if !n.Configured() {
		slog.Warn("SMTP/Email settings not fully configured; skipping email")
		return false, nil
	}

	builder := enmime.Builder().
		From("", n.config.From).
		Subject(subject).
		Text([]byte(body))
	for _, addr := range recipients(n.config.To) {
		builder = builder.To("", addr)
	}

	if err := builder.Send(n.sender(ctx)); err != nil {
		return false, fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("Email sent", "subject", subject)
	return true, nil
}

// recipients splits a comma-separated address list.
func recipients(value string) []string {
	var addrs []string
	for _, addr := range strings.Split(value, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
