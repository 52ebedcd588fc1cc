package resilience

import (
	"sync"
	"time"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// BreakerState is the current mode of a circuit breaker.
type BreakerState string

const (
	// StateClosed means calls flow normally.
	StateClosed BreakerState = "closed"

	// StateOpen means calls are rejected without being attempted.
	StateOpen BreakerState = "open"

	// StateHalfOpen means a probe call is allowed to test recovery.
	StateHalfOpen BreakerState = "half-open"
)

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// circuit opens.
	FailureThreshold int

	// SuccessThreshold is the number of successes in half-open before the
	// circuit closes again.
	SuccessThreshold int

	// Cooldown is how long an open circuit waits before allowing a probe.
	Cooldown time.Duration

	// Name identifies the breaker in errors and logs.
	Name string
}

// Breaker rejects calls to a dependency that keeps failing, so a dead
// RPC endpoint or tool server does not stall every request behind its
// timeout.
type Breaker struct {
	cfg          BreakerConfig
	mu           sync.Mutex
	state        BreakerState
	failures     int
	successes    int
	lastFailTime time.Time
}

// NewBreaker creates a breaker, filling unset config fields with
// defaults (5 failures to open, 2 successes to close, 30s cooldown).
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold < 1 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "breaker"
	}
	return &Breaker{cfg: cfg, state: StateClosed}
}

// Call executes fn if the circuit allows it, tracking the outcome. An
// open circuit returns an internal error naming the breaker.
func (b *Breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == StateOpen && time.Since(b.lastFailTime) > b.cfg.Cooldown {
		b.state = StateHalfOpen
		b.failures = 0
		b.successes = 0
	}
	if b.state == StateOpen {
		b.mu.Unlock()
		return agenterrors.NewInternal("circuit open for "+b.cfg.Name, nil).
			WithDetail("breaker", b.cfg.Name)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		b.lastFailTime = time.Now()
		if b.state == StateHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.failures = 0
			b.successes = 0
		}
		return err
	}
	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateClosed:
		b.failures = 0
	}
	return nil
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
