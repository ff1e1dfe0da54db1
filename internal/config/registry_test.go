package config_test

import (
	"errors"
	"testing"

	"github.com/tghensley/audiopilot/internal/config"
	"github.com/tghensley/audiopilot/pkg/oracle"
	"github.com/tghensley/audiopilot/pkg/oracle/mock"
)

func TestRegistry_CreateOracle(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	reg.RegisterOracle("mock", func(cfg config.OracleConfig) (oracle.Oracle, error) {
		return &mock.Oracle{Response: cfg.Model}, nil
	})

	o, err := reg.CreateOracle(config.OracleConfig{Provider: "mock", Model: "test-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o == nil {
		t.Fatal("CreateOracle returned nil oracle")
	}
}

func TestRegistry_UnknownProvider(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()
	_, err := reg.CreateOracle(config.OracleConfig{Provider: "nope"})
	if !errors.Is(err, config.ErrOracleNotRegistered) {
		t.Fatalf("expected ErrOracleNotRegistered, got %v", err)
	}
}
