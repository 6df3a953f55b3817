// Package watch turns writes made to the journal file by another process
// (the vininote CLI, a second server) into external change notifications.
//
// HOW IT TELLS OWN WRITES APART:
// The watcher subscribes to the journal. Every local mutation stamps the
// time, and filesystem events that settle within Quiet of that stamp are
// dropped. Anything else is another writer, and the journal is asked to
// broadcast an external change on every facade.
//
// Bursts are coalesced: SQLite touches the database, -wal and -shm files
// for a single commit, and all of that becomes one notification after
// Debounce of silence.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sakif/vininote/internal/metrics"
	"github.com/sakif/vininote/internal/store"
)

// Defaults for Config.
const (
	DefaultDebounce = 200 * time.Millisecond
	DefaultQuiet    = time.Second
)

// Journal is the part of store.Journal the watcher drives.
type Journal interface {
	Subscribe(fn func(store.Change)) (unsubscribe func())
	NotifyExternal()
}

// Config selects the file to watch.
type Config struct {
	// Path is the SQLite database file. Its directory is watched and
	// events on Path and its -wal/-shm/-journal siblings count.
	Path     string
	Debounce time.Duration
	Quiet    time.Duration
}

// Watcher reports external writes to Path.
type Watcher struct {
	dir      string
	base     string
	debounce time.Duration
	quiet    time.Duration
	journal  Journal
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	lastOwn time.Time
}

// New creates a Watcher. Nothing is watched until Run.
func New(cfg Config, journal Journal, logger *slog.Logger) *Watcher {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Quiet <= 0 {
		cfg.Quiet = DefaultQuiet
	}
	return &Watcher{
		dir:      filepath.Dir(cfg.Path),
		base:     filepath.Base(cfg.Path),
		debounce: cfg.Debounce,
		quiet:    cfg.Quiet,
		journal:  journal,
		logger:   logger.With(slog.String("component", "watch")),
		now:      time.Now,
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation and
// an error only when the watch cannot be set up.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch: adding %s: %w", w.dir, err)
	}

	unsubscribe := w.journal.Subscribe(w.markOwn)
	defer unsubscribe()

	w.logger.Info("watching journal for external writes",
		slog.String("dir", w.dir),
		slog.String("file", w.base),
	)

	// A nil channel blocks forever: no flush is pending.
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timerC:
			timerC = nil
			if pending {
				pending = false
				w.flush()
			}
		}
	}
}

// relevant reports whether ev touched the journal file or its SQLite
// side files with a content change.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	if name == w.base {
		return true
	}
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if name == w.base+suffix {
			return true
		}
	}
	return false
}

// markOwn stamps local mutations. External changes are ignored so the
// watcher's own broadcast does not count as a write.
func (w *Watcher) markOwn(c store.Change) {
	if c.External {
		return
	}
	w.mu.Lock()
	w.lastOwn = w.now()
	w.mu.Unlock()
}

// flush notifies the journal unless the burst belongs to a local write.
func (w *Watcher) flush() bool {
	w.mu.Lock()
	own := !w.lastOwn.IsZero() && w.now().Sub(w.lastOwn) < w.quiet+w.debounce
	w.mu.Unlock()

	if own {
		w.logger.Debug("ignoring own write")
		return false
	}

	w.logger.Info("journal changed on disk, notifying")
	metrics.ObserveExternalReload()
	w.journal.NotifyExternal()
	return true
}

// Watchable reports whether path names a file the watcher can follow.
func Watchable(path string) bool {
	return path != "" && path != ":memory:" && !strings.HasPrefix(path, "file:")
}
