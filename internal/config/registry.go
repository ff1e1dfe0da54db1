package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tghensley/audiopilot/pkg/oracle"
)

// ErrOracleNotRegistered is returned by [Registry.CreateOracle] when no
// factory has been registered under the requested provider name.
var ErrOracleNotRegistered = errors.New("config: oracle provider not registered")

// OracleFactory constructs an oracle backend from its configuration block.
type OracleFactory func(OracleConfig) (oracle.Oracle, error)

// Registry maps oracle provider names to their constructor functions.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	oracles map[string]OracleFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		oracles: make(map[string]OracleFactory),
	}
}

// RegisterOracle registers a factory under the given provider name,
// replacing any previous registration.
func (r *Registry) RegisterOracle(name string, factory OracleFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.oracles[name] = factory
}

// CreateOracle constructs the oracle selected by cfg.Provider. Returns
// [ErrOracleNotRegistered] when the name has no registered factory.
func (r *Registry) CreateOracle(cfg OracleConfig) (oracle.Oracle, error) {
	r.mu.RLock()
	factory, ok := r.oracles[cfg.Provider]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOracleNotRegistered, cfg.Provider)
	}
	return factory(cfg)
}
