package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrCircuitOpen = errors.New("mail circuit open")

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures before opening
	Cooldown         time.Duration // open time before trial sends
	TrialCalls       int           // concurrent sends allowed while half open
}

func (c ProtectedNotifierConfig) withDefaults() ProtectedNotifierConfig {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.TrialCalls <= 0 {
		c.TrialCalls = 1
	}
	return c
}

// ProtectedNotifier bounds every welcome send with a timeout and stops calling
// the mail provider while it keeps failing. Registration never waits on it.
type ProtectedNotifier struct {
	inner   Notifier
	timeout time.Duration
	br      *breaker
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig, log *slog.Logger) *ProtectedNotifier {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	br := newBreaker(cfg.FailureThreshold, cfg.Cooldown, cfg.TrialCalls)
	br.onChange = func(from, to circuitState, failures int) {
		level := slog.LevelInfo
		if to == stateOpen {
			level = slog.LevelWarn
		}
		log.Log(context.Background(), level, "mail circuit state changed",
			"from", string(from), "to", string(to), "consecutive_failures", failures)
	}

	return &ProtectedNotifier{inner: inner, timeout: cfg.Timeout, br: br}
}

func (n *ProtectedNotifier) SendWelcome(ctx context.Context, in WelcomeInput) error {
	if !n.br.acquire() {
		return ErrCircuitOpen
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	err := n.inner.SendWelcome(sendCtx, in)
	n.br.release(err)
	return err
}

// State is one of closed, open or half_open.
func (n *ProtectedNotifier) State() string {
	return string(n.br.current())
}
