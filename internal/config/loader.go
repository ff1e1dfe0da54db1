package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidOracleProviders lists the oracle provider names the server knows how
// to construct. Used by [Validate] to warn about unrecognised names.
var ValidOracleProviders = []string{
	"azure", "openai", "anthropic", "gemini", "ollama",
	"deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
//
// An absent or partial oracle block is deliberately NOT an error: commands
// are then served by the rule-based interpreter alone. Validate only warns
// about it so operators can tell the difference between "fallback by choice"
// and "fallback because of a typo in the credentials".
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Oracle
	o := cfg.Oracle
	if o.Provider != "" && !slices.Contains(ValidOracleProviders, o.Provider) {
		slog.Warn("unknown oracle provider name — may be a typo",
			"provider", o.Provider,
			"known", ValidOracleProviders,
		)
	}
	if o.Provider == "azure" {
		if o.Endpoint == "" || o.APIKey == "" || o.Deployment == "" {
			slog.Warn("azure oracle is missing endpoint, api_key, or deployment; AI interpretation disabled, rule-based fallback only")
		}
	}
	if o.Provider != "" && o.Provider != "azure" && o.Model == "" {
		slog.Warn("oracle.model is not set; AI interpretation disabled, rule-based fallback only",
			"provider", o.Provider,
		)
	}
	if o.Provider == "" {
		slog.Warn("no oracle configured; commands will be interpreted by the rule-based fallback only")
	}
	if o.Temperature < 0 || o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("oracle.temperature %.2f is out of range [0, 2]", o.Temperature))
	}
	if o.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("oracle.max_tokens %d must not be negative", o.MaxTokens))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("oracle.timeout %v must not be negative", o.Timeout))
	}

	// Transcript
	if t := cfg.Transcript.SearchThreshold; t != 0 && (t <= 0 || t > 1) {
		errs = append(errs, fmt.Errorf("transcript.search_threshold %.2f is out of range (0, 1]", t))
	}

	return errors.Join(errs...)
}
