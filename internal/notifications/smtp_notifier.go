package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers mail through a plain SMTP relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(e *email.Email, addr string, a smtp.Auth) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg: cfg,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

func (n *SMTPNotifier) SendWelcome(ctx context.Context, in WelcomeInput) error {
	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = []string{in.Email}
	e.Subject = "Welcome to HealthMate"
	e.Text = []byte("Hi,\n\nYour HealthMate account is ready. Start by adding your first workout spot.\n\nHealthMate")

	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	// net/smtp has no context support; honour cancellation around the call.
	errCh := make(chan error, 1)
	go func() { errCh <- n.send(e, addr, auth) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("send welcome mail to %s: %w", in.Email, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
