package notifications

import (
	"sync"
	"time"
)

type circuitState string

const (
	stateClosed   circuitState = "closed"
	stateOpen     circuitState = "open"
	stateHalfOpen circuitState = "half_open"
)

// breaker opens after threshold consecutive failures, stays open for cooldown,
// then lets up to trialLimit calls through. One trial success closes it again,
// one trial failure reopens it.
type breaker struct {
	mu  sync.Mutex
	now func() time.Time

	threshold  int
	cooldown   time.Duration
	trialLimit int

	state    circuitState
	failures int
	openedAt time.Time
	trials   int

	// onChange runs with mu held.
	onChange func(from, to circuitState, failures int)
}

func newBreaker(threshold int, cooldown time.Duration, trialLimit int) *breaker {
	return &breaker{
		now:        time.Now,
		threshold:  threshold,
		cooldown:   cooldown,
		trialLimit: trialLimit,
		state:      stateClosed,
	}
}

// acquire reports whether a call may go out now. Every true must be paired
// with one release.
func (b *breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.transition(stateHalfOpen)
		b.trials = 0
	}

	if b.state == stateHalfOpen {
		if b.trials >= b.trialLimit {
			return false
		}
		b.trials++
	}

	return true
}

func (b *breaker) release(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen && b.trials > 0 {
		b.trials--
	}

	if err == nil {
		b.failures = 0
		b.transition(stateClosed)
		return
	}

	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.transition(stateOpen)
	}
}

func (b *breaker) current() circuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) transition(to circuitState) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to, b.failures)
	}
}
