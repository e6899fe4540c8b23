package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"aquacore/pkg/domain"
)

// Logger is the minimal structured logger the watcher needs. A nil logger
// disables logging.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Watcher reloads a catalog from a species-pack directory whenever pack
// files change. Rapid save bursts are debounced into a single reload, and
// each reload builds the full record set before atomically swapping it in,
// so readers never observe a partially loaded catalog.
type Watcher struct {
	catalog *Catalog
	dir     string
	log     Logger

	watcher     *fsnotify.Watcher
	debounceDur time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher constructs a watcher over the given pack directory.
func NewWatcher(c *Catalog, dir string, log Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Watcher{
		catalog:     c,
		dir:         dir,
		log:         log,
		watcher:     fsw,
		debounceDur: 500 * time.Millisecond,
		pending:     make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start performs an initial load, begins watching, and returns; the event
// loop runs in its own goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.reload(); err != nil {
		w.log.Warn("initial pack load failed", "dir", w.dir, "error", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.log.Warn("pack directory watch failed", "dir", w.dir, "error", err)
	} else {
		w.log.Info("watching species packs", "dir", w.dir)
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Error("close pack watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("pack watcher error", "error", err)
		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch filepath.Ext(event.Name) {
	case ".yaml", ".yml":
	default:
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// flushPending reloads once when every pending event has been quiet for the
// debounce window.
func (w *Watcher) flushPending() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	cutoff := time.Now().Add(-w.debounceDur)
	for _, last := range w.pending {
		if last.After(cutoff) {
			w.mu.Unlock()
			return
		}
	}
	changed := len(w.pending)
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	if err := w.reload(); err != nil {
		w.log.Error("pack reload failed", "dir", w.dir, "changed", changed, "error", err)
		return
	}
	w.log.Info("species packs reloaded", "dir", w.dir, "changed", changed, "species", w.catalog.Len())
}

// reload loads every pack and swaps the combined records into the catalog.
// Load failures leave the previous generation serving.
func (w *Watcher) reload() error {
	packs, err := LoadPackDir(w.dir)
	if err != nil {
		return err
	}
	var combined []domain.Species
	for _, pack := range packs {
		combined = append(combined, pack.SpeciesRecords()...)
	}
	w.catalog.ReplaceAll(combined)
	return nil
}
