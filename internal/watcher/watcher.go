// Package watcher polls library archives for changes so cached
// documentation metadata can be dropped when an SDK is updated in place.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"asdocs/internal/slogutil"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ChangeHandler is called with a debounced batch of events.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Second,
		Debounce:     500 * time.Millisecond,
	}
}

type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func (s fileState) same(o fileState) bool {
	return s.exists == o.exists && s.size == o.size && s.modTime.Equal(o.modTime)
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// Watcher polls a set of files and reports changes in size, modification
// time or existence.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	handler ChangeHandler
	batch   *BatchDebouncer

	mu     sync.Mutex
	files  map[string]fileState
	cancel context.CancelFunc
	run    uint64
	wg     sync.WaitGroup
}

// New creates a new watcher. A nil logger discards output.
func New(config Config, logger *slog.Logger, handler ChangeHandler) *Watcher {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}

	w := &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		files:   make(map[string]fileState),
	}
	w.batch = NewBatchDebouncer(config.Debounce, w.emit)
	return w
}

// Add starts watching paths from their current state.
func (w *Watcher) Add(paths ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range paths {
		if _, ok := w.files[path]; ok {
			continue
		}
		w.files[path] = statFile(path)
	}
}

// Remove stops watching path
func (w *Watcher) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

// Watched returns the watched paths, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Start polls in the background until ctx is done or Stop is called.
// Starting a running watcher is a no-op; a watcher whose context ended can
// be started again.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.run++
	w.logger.Debug("Starting archive watcher",
		"files", len(w.files),
		"pollInterval", w.config.PollInterval.String(),
	)

	w.wg.Add(1)
	go w.loop(ctx, w.run)
}

// Stop stops polling and drops pending events.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		w.wg.Wait()
	}
	w.batch.Cancel()
}

func (w *Watcher) loop(ctx context.Context, run uint64) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Poll()
		case <-ctx.Done():
			w.mu.Lock()
			if w.run == run && w.cancel != nil {
				w.cancel()
				w.cancel = nil
			}
			w.mu.Unlock()
			return
		}
	}
}

// Running reports whether the watcher is polling.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Poll checks every watched file once and queues the changes it finds.
// It returns the number of events queued.
func (w *Watcher) Poll() int {
	now := time.Now()
	var events []Event

	w.mu.Lock()
	for path, prev := range w.files {
		cur := statFile(path)
		if cur.same(prev) {
			continue
		}
		w.files[path] = cur

		ev := Event{Type: EventModify, Path: path, Timestamp: now}
		switch {
		case !prev.exists:
			ev.Type = EventCreate
		case !cur.exists:
			ev.Type = EventDelete
		}
		events = append(events, ev)
	}
	w.mu.Unlock()

	for _, ev := range events {
		w.batch.Add(ev)
	}
	return len(events)
}

// Flush delivers queued events now.
func (w *Watcher) Flush() {
	w.batch.Flush()
}

func (w *Watcher) emit(events []Event) {
	w.logger.Debug("Archive changes detected", "events", len(events))
	if w.handler != nil {
		w.handler(events)
	}
}

// ChangedPaths returns the distinct paths of events in order of first
// appearance.
func ChangedPaths(events []Event) []string {
	seen := make(map[string]bool, len(events))
	var paths []string
	for _, ev := range events {
		if !seen[ev.Path] {
			seen[ev.Path] = true
			paths = append(paths, ev.Path)
		}
	}
	return paths
}
