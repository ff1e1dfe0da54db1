// Package app wires all audiopilot subsystems into a running server.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is cancelled, and Shutdown
// tears everything down in order.
//
// For testing, inject collaborators via functional options (WithOracle,
// WithStore). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tghensley/audiopilot/internal/assist"
	"github.com/tghensley/audiopilot/internal/config"
	"github.com/tghensley/audiopilot/internal/health"
	"github.com/tghensley/audiopilot/internal/httpapi"
	"github.com/tghensley/audiopilot/internal/interpret"
	"github.com/tghensley/audiopilot/internal/observe"
	"github.com/tghensley/audiopilot/internal/transcript"
	"github.com/tghensley/audiopilot/pkg/oracle"
)

const shutdownGrace = 10 * time.Second

// App owns all subsystem lifetimes for the audiopilot server.
type App struct {
	cfg *config.Config

	oracle      oracle.Oracle // nil when not configured
	interpreter *interpret.Interpreter
	assistant   *assist.Assistant
	store       *transcript.Store
	searcher    *transcript.Searcher
	server      *http.Server

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithOracle injects an oracle backend instead of creating one from config.
// Passing nil explicitly is a no-op; use an unconfigured config instead.
func WithOracle(o oracle.Oracle) Option {
	return func(a *App) { a.oracle = o }
}

// WithStore injects a transcript store instead of creating one from config.
func WithStore(s *transcript.Store) Option {
	return func(a *App) { a.store = s }
}

// WithConfigWatcher hands the config file watcher to the app, which stops it
// during Shutdown after the HTTP server has drained.
func WithConfigWatcher(w *config.Watcher) Option {
	return func(a *App) { a.closers = append(a.closers, w.Close) }
}

// New creates an App by wiring all subsystems together. The registry maps
// oracle provider names to constructors; main registers the real backends.
// An unconfigured oracle is not an error: interpretation runs rule-based and
// the assist routes answer 503.
func New(cfg *config.Config, registry *config.Registry, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}

	if a.oracle == nil && cfg.Oracle.Configured() {
		o, err := registry.CreateOracle(cfg.Oracle)
		if err != nil {
			return nil, fmt.Errorf("app: create oracle: %w", err)
		}
		a.oracle = o
		slog.Info("oracle backend ready", "provider", cfg.Oracle.Provider)
	}
	if a.oracle == nil {
		slog.Warn("no oracle configured, using rule-based interpretation only")
	}

	if a.store == nil {
		dir := cfg.Transcript.Dir
		if dir == "" {
			dir = "transcriptions"
		}
		store, err := transcript.NewStore(dir)
		if err != nil {
			return nil, fmt.Errorf("app: init transcript store: %w", err)
		}
		a.store = store
	}

	var searchOpts []transcript.SearcherOption
	if cfg.Transcript.SearchThreshold > 0 {
		searchOpts = append(searchOpts, transcript.WithThreshold(cfg.Transcript.SearchThreshold))
	}
	a.searcher = transcript.NewSearcher(searchOpts...)

	var interpOpts []interpret.Option
	if cfg.Oracle.MaxTokens > 0 {
		interpOpts = append(interpOpts, interpret.WithMaxTokens(cfg.Oracle.MaxTokens))
	}
	if cfg.Oracle.Temperature > 0 {
		interpOpts = append(interpOpts, interpret.WithTemperature(cfg.Oracle.Temperature))
	}
	a.interpreter = interpret.New(a.oracle, interpOpts...)
	a.assistant = assist.New(a.oracle)

	a.server = &http.Server{
		Addr:              a.listenAddr(),
		Handler:           a.buildHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// buildHandler assembles the full route table with the observability
// middleware wrapped around the API routes.
func (a *App) buildHandler() http.Handler {
	api := http.NewServeMux()
	httpapi.New(a.interpreter, a.assistant, a.store, a.searcher).Register(api)

	root := http.NewServeMux()
	root.Handle("/", observe.Middleware(observe.DefaultMetrics())(api))

	oracleConfigured := a.oracle != nil
	health.New(
		health.OracleChecker(func() bool { return oracleConfigured }),
		health.StoreChecker(a.storeDir()),
	).Register(root)

	root.Handle("GET /metrics", promhttp.Handler())
	return root
}

func (a *App) listenAddr() string {
	if a.cfg.Server.ListenAddr != "" {
		return a.cfg.Server.ListenAddr
	}
	return ":8080"
}

func (a *App) storeDir() string {
	if a.cfg.Transcript.Dir != "" {
		return a.cfg.Transcript.Dir
	}
	return "transcriptions"
}

// Run serves HTTP until ctx is cancelled, then shuts the server down
// gracefully. It returns the first serve error, or nil on clean shutdown.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops the HTTP server and tears down remaining subsystems in
// order. It respects the context deadline; remaining closers are skipped once
// it expires.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		if err := a.server.Shutdown(ctx); err != nil {
			slog.Warn("http shutdown error", "err", err)
			shutdownErr = err
		}

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
