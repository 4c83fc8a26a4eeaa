// Package watcher monitors a directory for document changes and emits
// debounced events for files the parsers can handle.
package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jdmorrow/docqa/internal/parser"
)

// Operation is the kind of change observed on a file.
type Operation string

const (
	OpCreated  Operation = "created"
	OpModified Operation = "modified"
	OpRemoved  Operation = "removed"
)

// Event is one debounced file change.
type Event struct {
	Path string
	Op   Operation
}

// Watcher wraps fsnotify with extension filtering and per-path debouncing.
// Editors produce bursts of writes for a single save; the debounce window
// collapses each burst into one event.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(debounce time.Duration, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		log:      log,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Watch monitors dir until the context is cancelled. The returned channel is
// closed when watching stops.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.fsw.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 100)
	// Debounce timers hand their events over here rather than sending on
	// events directly. Only the goroutine below sends on and closes events,
	// so a timer firing during shutdown can never hit a closed channel.
	expired := make(chan Event, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-expired:
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !parser.IsSupportedExtension(ev.Name) {
					continue
				}

				switch {
				case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
					// Removals are not bursty; emit immediately.
					w.cancelPending(ev.Name)
					select {
					case events <- Event{Path: ev.Name, Op: OpRemoved}:
					case <-ctx.Done():
						return
					}
				case ev.Op.Has(fsnotify.Create):
					w.schedule(ctx, expired, ev.Name, OpCreated)
				case ev.Op.Has(fsnotify.Write):
					w.schedule(ctx, expired, ev.Name, OpModified)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch error", "error", err)
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.fsw.Close()
}

// schedule resets the debounce timer for a path. A create followed by writes
// within the window emits a single event with the latest operation. The timer
// callback sends on expired, which is never closed; it must not touch the
// caller-facing channel.
func (w *Watcher) schedule(ctx context.Context, expired chan<- Event, path string, op Operation) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case expired <- Event{Path: path, Op: op}:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}
