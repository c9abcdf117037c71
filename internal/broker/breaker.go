package broker

import (
	"sync"
	"time"

	"stockd/internal/logger"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case breakerClosed:
		return "CLOSED"
	case breakerOpen:
		return "OPEN"
	case breakerHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// breaker trips after threshold consecutive transport failures and rejects
// calls until the cooldown elapses. A tripped breaker turns a dead brokerage
// endpoint into fast task failures instead of a timeout per pending record.
type breaker struct {
	mu          sync.Mutex
	state       breakerState
	failures    int
	threshold   int
	cooldown    time.Duration
	lastFailure time.Time
	name        string
}

func newBreaker(name string, threshold int, cooldown time.Duration) *breaker {
	return &breaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		state:     breakerClosed,
	}
}

func (cb *breaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(cb.lastFailure) > cb.cooldown {
			cb.transition(breakerHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (cb *breaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerHalfOpen:
		cb.transition(breakerClosed)
		cb.failures = 0
	case breakerClosed:
		cb.failures = 0
	}
}

func (cb *breaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	switch cb.state {
	case breakerClosed:
		if cb.failures >= cb.threshold {
			cb.transition(breakerOpen)
		}
	case breakerHalfOpen:
		cb.transition(breakerOpen)
	}
}

func (cb *breaker) transition(to breakerState) {
	from := cb.state
	cb.state = to
	logger.Warnf("broker breaker %s state change: %s -> %s (failures=%d/%d, cooldown=%s)",
		cb.name, from, to, cb.failures, cb.threshold, cb.cooldown)
}
