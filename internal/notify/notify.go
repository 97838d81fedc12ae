// AngelaMos | 2026
// notify.go

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/carterperez-dev/leadcap/internal/config"
)

const otpSubject = "Your login code"

type Notifier interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// LogNotifier writes one-time codes to the log. It is the development
// stand-in for a mail provider.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendOTP(
	ctx context.Context,
	email, code string,
	ttl time.Duration,
) error {
	n.logger.InfoContext(ctx, "one-time code issued",
		"to", email,
		"subject", otpSubject,
		"code", code,
		"expires_in", ttl.String(),
	)
	return nil
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (n *SMTPNotifier) SendOTP(
	_ context.Context,
	email, code string,
	ttl time.Duration,
) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", otpSubject)
	m.SetBody("text/plain", otpBody(code, ttl))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	return nil
}

func otpBody(code string, ttl time.Duration) string {
	minutes := int(math.Ceil(ttl.Minutes()))
	return fmt.Sprintf(
		"Your one-time password is: %s\n\nThis code expires in %d minutes.",
		code,
		minutes,
	)
}

// New picks the SMTP notifier when a host is configured and the log
// notifier otherwise.
func New(cfg config.SMTPConfig, logger *slog.Logger) Notifier {
	if cfg.Host == "" {
		return NewLogNotifier(logger)
	}
	return NewSMTPNotifier(cfg)
}
