// Package resilience shields command interpretation from a failing oracle.
//
// Every command triggers at most one outbound completion call. When the
// backend is down, paying a full network timeout per command makes the player
// feel frozen even though the rule-based interpreter could answer instantly.
// [Breaker] short-circuits that hop: after a run of consecutive completion
// failures it rejects calls outright with [ErrOpen] so interpretation degrades
// to the rules without waiting, then periodically admits probe calls to
// detect recovery.
//
// Breaker is safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Execute] when the breaker is refusing calls
// because the backend is considered down.
var ErrOpen = errors.New("resilience: breaker open, call skipped")

// State is the breaker's operating mode.
type State int

const (
	// StateClosed admits every call; the backend is considered healthy.
	StateClosed State = iota

	// StateOpen refuses every call with [ErrOpen] until the cooldown elapses.
	StateOpen

	// StateHalfOpen admits a bounded number of probe calls to test whether
	// the backend has recovered.
	StateHalfOpen
)

var stateNames = [...]string{"closed", "open", "half-open"}

// String returns the human-readable name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Config holds the tuning knobs for [New]. Zero-value fields get defaults.
type Config struct {
	// Name labels the breaker in log messages.
	Name string

	// MaxFailures is the consecutive-failure streak that opens the breaker.
	// Default: 5.
	MaxFailures int

	// ResetTimeout is how long the breaker refuses calls before probing the
	// backend again. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMax bounds the probe calls admitted while half-open; that many
	// successes close the breaker. Default: 3.
	HalfOpenMax int
}

// Breaker is a three-state (closed, open, half-open) circuit breaker.
type Breaker struct {
	name        string
	trip        int
	cooldown    time.Duration
	probeBudget int

	mu            sync.Mutex
	state         State
	streak        int // consecutive failures while closed
	openedAt      time.Time
	probesStarted int
	probesFailed  int
}

// New creates a [Breaker] in the closed state.
func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &Breaker{
		name:        cfg.Name,
		trip:        cfg.MaxFailures,
		cooldown:    cfg.ResetTimeout,
		probeBudget: cfg.HalfOpenMax,
	}
}

// Execute runs fn unless the breaker is refusing calls, in which case it
// returns [ErrOpen] without invoking fn. The outcome of fn feeds the state
// machine.
func (b *Breaker) Execute(fn func() error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}
	callErr := fn()
	b.settle(callErr, probe)
	return callErr
}

// admit decides whether a call may proceed and whether it counts as a
// half-open probe. It performs the open → half-open transition once the
// cooldown has elapsed.
func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cooldown {
			return false, ErrOpen
		}
		b.state = StateHalfOpen
		b.probesStarted = 0
		b.probesFailed = 0
		slog.Info("breaker probing backend after cooldown", "name", b.name)
	}

	if b.state == StateHalfOpen {
		if b.probesStarted >= b.probeBudget {
			return false, ErrOpen
		}
		b.probesStarted++
		return true, nil
	}

	return false, nil
}

// settle folds a completed call's outcome into the state machine.
func (b *Breaker) settle(callErr error, probe bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if callErr == nil {
		if !probe {
			b.streak = 0
			return
		}
		if b.probesStarted-b.probesFailed >= b.probeBudget {
			b.state = StateClosed
			b.streak = 0
			slog.Info("breaker closed, backend recovered", "name", b.name)
		}
		return
	}

	if probe {
		// One failed probe is enough: back to open for a full cooldown.
		b.probesFailed++
		b.open()
		slog.Warn("breaker reopened after failed probe", "name", b.name)
		return
	}

	b.streak++
	if b.streak >= b.trip {
		b.open()
		slog.Warn("breaker opened, calls degrade until cooldown elapses",
			"name", b.name,
			"consecutive_failures", b.streak)
	}
}

// open transitions to the open state. Must be called with b.mu held.
func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = time.Now()
}

// State reports the breaker's mode. An open breaker whose cooldown has
// elapsed reports [StateHalfOpen]; the actual transition happens on the next
// [Breaker.Execute].
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.openedAt) >= b.cooldown {
		return StateHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to closed, discarding all failure history.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.streak = 0
	b.probesStarted = 0
	b.probesFailed = 0
	slog.Info("breaker manually reset", "name", b.name)
}
