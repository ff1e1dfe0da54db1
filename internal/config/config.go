// Package config provides the configuration schema, loader, and oracle
// registry for the audiopilot command interpretation server.
package config

import "time"

// LogLevel controls log verbosity for the audiopilot server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for audiopilot.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Transcript TranscriptConfig `yaml:"transcript"`
}

// ServerConfig holds network and logging settings for the audiopilot server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// OracleConfig selects and configures the text-completion backend used for
// AI-assisted command interpretation and the transcript assist features.
//
// An incomplete oracle configuration is not an error — it is a routing
// signal. When [OracleConfig.Configured] is false the interpreter runs the
// rule-based fallback exclusively and the assist features report themselves
// unavailable.
type OracleConfig struct {
	// Provider selects the backend: "azure", "openai", or any provider name
	// supported by the anyllm backend ("anthropic", "gemini", "ollama",
	// "deepseek", "mistral", "groq", "llamacpp", "llamafile").
	Provider string `yaml:"provider"`

	// Endpoint is the service base URL. Required for "azure"; for other
	// providers it overrides the backend default when set.
	Endpoint string `yaml:"endpoint"`

	// APIKey is the authentication key for the backend.
	APIKey string `yaml:"api_key"`

	// Deployment is the Azure OpenAI deployment name. Azure only.
	Deployment string `yaml:"deployment"`

	// APIVersion overrides the Azure api-version query parameter. Azure only.
	APIVersion string `yaml:"api_version"`

	// Model selects the model for non-Azure providers (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// MaxTokens caps completion length for interpretation calls. Default: 800.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for interpretation calls. Default: 0.3.
	Temperature float64 `yaml:"temperature"`

	// Timeout bounds each outbound completion call. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`
}

// Configured reports whether enough of the oracle configuration is present
// to attempt the AI interpretation path at all.
func (o OracleConfig) Configured() bool {
	switch o.Provider {
	case "":
		return false
	case "azure":
		return o.Endpoint != "" && o.APIKey != "" && o.Deployment != ""
	default:
		return o.Model != ""
	}
}

// TranscriptConfig holds settings for the transcript store and search.
type TranscriptConfig struct {
	// Dir is the directory where transcription JSON files are kept.
	// Default: "transcriptions".
	Dir string `yaml:"dir"`

	// SearchThreshold is the minimum Jaro-Winkler similarity for a fuzzy
	// transcript search hit, in (0, 1]. Default: 0.75.
	SearchThreshold float64 `yaml:"search_threshold"`
}
