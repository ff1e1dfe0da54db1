package config

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// defaultPollInterval is how often the watcher re-checks the config file.
const defaultPollInterval = 5 * time.Second

// fingerprint identifies one on-disk revision of the config file. The mtime
// alone is not enough: editors rewrite files with unchanged content, and some
// filesystems truncate mtime resolution, so content is hashed as well.
type fingerprint struct {
	mtime time.Time
	sum   [sha256.Size]byte
}

// Watcher polls audiopilot's YAML config file and invokes a callback with the
// old and new config whenever the file content changes and still validates.
// An invalid rewrite is logged and ignored; the last valid config stays
// current, so a half-saved edit never takes the server down.
//
// Polling was chosen over fsnotify: the file changes rarely and a watch
// dependency is not worth it for one path.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(old, new *Config)

	mu      sync.Mutex
	current *Config
	last    fingerprint

	done      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher loads the config at path and starts polling it in a background
// goroutine. The initial load must succeed; after that, onChange fires only
// for revisions that parse and validate.
func NewWatcher(path string, onChange func(old, new *Config), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: defaultPollInterval,
		onChange: onChange,
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	cfg, fp, err := w.readRevision()
	if err != nil {
		return nil, fmt.Errorf("config: watcher initial load: %w", err)
	}
	w.current = cfg
	w.last = fp

	go w.loop()
	return w, nil
}

// Current returns the most recently loaded valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops polling and waits for the poll loop to exit. It is safe to call
// more than once and always returns nil; the error return exists so Close can
// be registered as a shutdown hook.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	<-w.loopDone
	return nil
}

func (w *Watcher) loop() {
	defer close(w.loopDone)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check compares the file against the last seen fingerprint and swaps in the
// new config when the content changed and validates.
func (w *Watcher) check() {
	info, err := os.Stat(w.path)
	if err != nil {
		slog.Warn("config watch: cannot stat config file", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	sameMtime := info.ModTime().Equal(w.last.mtime)
	w.mu.Unlock()

	// Cheap pre-check so an unchanged file is not re-read every tick.
	if sameMtime {
		return
	}

	cfg, fp, err := w.readRevision()
	if err != nil {
		slog.Warn("config watch: rejected config revision, keeping previous",
			"path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	if fp.sum == w.last.sum {
		// Touched but identical. Remember the mtime so the next tick skips it.
		w.last.mtime = fp.mtime
		w.mu.Unlock()
		return
	}
	old := w.current
	w.current = cfg
	w.last = fp
	w.mu.Unlock()

	d := Diff(old, cfg)
	slog.Info("config watch: configuration reloaded",
		"path", w.path,
		"log_level_changed", d.LogLevelChanged,
		"oracle_changed", d.OracleChanged,
	)

	// Callback runs outside the lock so it may call Current safely.
	if w.onChange != nil {
		w.onChange(old, cfg)
	}
}

// readRevision reads, hashes, and validates the config file in one pass,
// returning the parsed config together with the revision's fingerprint.
func (w *Watcher) readRevision() (*Config, fingerprint, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fingerprint{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fingerprint{}, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fingerprint{}, err
	}

	cfg, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fingerprint{}, err
	}

	return cfg, fingerprint{mtime: info.ModTime(), sum: sha256.Sum256(data)}, nil
}
