// Command audiopilot is the main entry point for the audiopilot command
// interpretation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/tghensley/audiopilot/internal/app"
	"github.com/tghensley/audiopilot/internal/config"
	"github.com/tghensley/audiopilot/internal/observe"
	"github.com/tghensley/audiopilot/pkg/oracle"
	oracleanyllm "github.com/tghensley/audiopilot/pkg/oracle/anyllm"
	oracleazure "github.com/tghensley/audiopilot/pkg/oracle/azure"
	oracleopenai "github.com/tghensley/audiopilot/pkg/oracle/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "audiopilot: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "audiopilot: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	var logLevel slog.LevelVar
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}))
	slog.SetDefault(logger)

	slog.Info("audiopilot starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "audiopilot",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Config watcher ────────────────────────────────────────────────────────
	// Log level reloads live; oracle changes need a restart and are only
	// surfaced in the log. The app owns the watcher's teardown.
	var appOpts []app.Option
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.OracleChanged {
			slog.Warn("oracle configuration changed on disk — restart to apply")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		appOpts = append(appOpts, app.WithConfigWatcher(watcher))
	}

	// ── Oracle registry ───────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinOracles(reg)

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := app.New(cfg, reg, appOpts...)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Oracle wiring ─────────────────────────────────────────────────────────────

// anyllmProviders are the backends served by the any-llm adapter. Azure and
// plain OpenAI have dedicated adapters with their own wire formats.
var anyllmProviders = []string{
	"anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
}

// registerBuiltinOracles wires all built-in oracle factories into reg.
func registerBuiltinOracles(reg *config.Registry) {
	reg.RegisterOracle("azure", func(c config.OracleConfig) (oracle.Oracle, error) {
		var opts []oracleazure.Option
		if c.APIVersion != "" {
			opts = append(opts, oracleazure.WithAPIVersion(c.APIVersion))
		}
		if c.Timeout > 0 {
			opts = append(opts, oracleazure.WithTimeout(c.Timeout))
		}
		return oracleazure.New(c.Endpoint, c.APIKey, c.Deployment, opts...)
	})

	reg.RegisterOracle("openai", func(c config.OracleConfig) (oracle.Oracle, error) {
		var opts []oracleopenai.Option
		if c.Endpoint != "" {
			opts = append(opts, oracleopenai.WithBaseURL(c.Endpoint))
		}
		if c.Timeout > 0 {
			opts = append(opts, oracleopenai.WithTimeout(c.Timeout))
		}
		return oracleopenai.New(c.APIKey, c.Model, opts...)
	})

	for _, providerName := range anyllmProviders {
		reg.RegisterOracle(providerName, func(c config.OracleConfig) (oracle.Oracle, error) {
			var opts []anyllmlib.Option
			if c.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(c.APIKey))
			}
			if c.Endpoint != "" {
				opts = append(opts, anyllmlib.WithBaseURL(c.Endpoint))
			}
			return oracleanyllm.New(providerName, c.Model, opts...)
		})
		slog.Debug("registered oracle provider", "name", providerName)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║        audiopilot — startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	oracleValue := "(not configured)"
	if cfg.Oracle.Configured() {
		oracleValue = cfg.Oracle.Provider
		if cfg.Oracle.Model != "" {
			oracleValue += " / " + cfg.Oracle.Model
		} else if cfg.Oracle.Deployment != "" {
			oracleValue += " / " + cfg.Oracle.Deployment
		}
		if len(oracleValue) > 19 {
			oracleValue = oracleValue[:16] + "…"
		}
	}
	fmt.Printf("║  Oracle          : %-19s ║\n", oracleValue)
	dir := cfg.Transcript.Dir
	if dir == "" {
		dir = "transcriptions"
	}
	if len(dir) > 19 {
		dir = dir[:16] + "…"
	}
	fmt.Printf("║  Transcript dir  : %-19s ║\n", dir)
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
