package kv

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-faster/errors"

	"storefront/internal/logging"
)

// Watcher reports writes to a SQLite store file made by any process.
// Bursts of events inside the debounce window collapse into one notification.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	base        string
	debounceDur time.Duration
	pending     time.Time
	changes     chan struct{}
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher watches the database at dbPath (and its -wal/-journal siblings).
func NewWatcher(dbPath string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create watcher")
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		watcher:     fw,
		dir:         filepath.Dir(dbPath),
		base:        filepath.Base(dbPath),
		debounceDur: debounce,
		changes:     make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Changes delivers one value per settled burst of writes. The channel never blocks the watcher.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching. Non-blocking; events are processed in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return errors.Wrapf(err, "failed to watch %s", w.dir)
	}
	logging.Store("Watcher: watching %s in %s", w.base, w.dir)

	go w.run(ctx)
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.StoreDebug("Watcher: context cancelled")
			return

		case <-w.stopCh:
			logging.StoreDebug("Watcher: stop signal received")
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
			logging.Get(logging.CategoryStore).Error("Watcher error: %v", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasPrefix(filepath.Base(event.Name), w.base) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return // Ignore chmod, removal of stale journals, etc.
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	select {
	case w.changes <- struct{}{}:
		logging.StoreDebug("Watcher: change notification sent")
	default:
		// A notification is already queued.
	}
}
