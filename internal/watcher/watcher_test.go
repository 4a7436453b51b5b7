package watcher

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      string
	}{
		{EventCreate, "create"},
		{EventModify, "modify"},
		{EventDelete, "delete"},
		{EventType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.eventType.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

type recorder struct {
	mu      sync.Mutex
	batches [][]Event
}

func (r *recorder) handle(events []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var events []Event
	for _, b := range r.batches {
		events = append(events, b...)
	}
	return events
}

func TestWatcherPoll(t *testing.T) {
	dir := t.TempDir()
	modified := filepath.Join(dir, "framework.swc")
	deleted := filepath.Join(dir, "spark.swc")
	created := filepath.Join(dir, "rpc.swc")
	untouched := filepath.Join(dir, "textLayout.swc")
	writeFile(t, modified, "v1")
	writeFile(t, deleted, "v1")
	writeFile(t, untouched, "v1")

	rec := &recorder{}
	w := New(Config{PollInterval: time.Hour, Debounce: time.Hour}, nil, rec.handle)
	w.Add(modified, deleted, created, untouched)

	if n := w.Poll(); n != 0 {
		t.Fatalf("Poll on unchanged files = %d events", n)
	}

	writeFile(t, modified, "version two")
	if err := os.Remove(deleted); err != nil {
		t.Fatal(err)
	}
	writeFile(t, created, "new")

	if n := w.Poll(); n != 3 {
		t.Fatalf("Poll = %d events, want 3", n)
	}
	if n := w.Poll(); n != 0 {
		t.Errorf("second Poll = %d events, want 0", n)
	}
	w.Flush()

	got := map[string]EventType{}
	for _, ev := range rec.all() {
		got[filepath.Base(ev.Path)] = ev.Type
	}
	want := map[string]EventType{
		"framework.swc": EventModify,
		"spark.swc":     EventDelete,
		"rpc.swc":       EventCreate,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestWatcherAddRemove(t *testing.T) {
	w := New(DefaultConfig(), nil, nil)
	w.Add("/b.swc", "/a.swc", "/b.swc")

	if got := w.Watched(); !reflect.DeepEqual(got, []string{"/a.swc", "/b.swc"}) {
		t.Errorf("Watched = %v", got)
	}
	w.Remove("/a.swc")
	w.Remove("/missing.swc")
	if got := w.Watched(); !reflect.DeepEqual(got, []string{"/b.swc"}) {
		t.Errorf("Watched = %v", got)
	}
}

func TestWatcherStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.swc")
	writeFile(t, path, "v1")

	changed := make(chan []Event, 1)
	w := New(Config{PollInterval: 10 * time.Millisecond, Debounce: 10 * time.Millisecond}, nil, func(events []Event) {
		select {
		case changed <- events:
		default:
		}
	})
	w.Add(path)

	w.Start(context.Background())
	w.Start(context.Background())
	defer w.Stop()

	writeFile(t, path, "version two")

	select {
	case events := <-changed:
		if len(events) == 0 || events[0].Path != path || events[0].Type != EventModify {
			t.Errorf("events = %+v", events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("change was not reported")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w := New(DefaultConfig(), nil, nil)
	w.Stop()
}

func TestWatcherContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := New(Config{PollInterval: time.Millisecond}, nil, nil)
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the context was canceled")
	}
}

func TestWatcherRestartAfterContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.swc")
	writeFile(t, path, "v1")

	changed := make(chan []Event, 1)
	w := New(Config{PollInterval: 10 * time.Millisecond, Debounce: 10 * time.Millisecond}, nil, func(events []Event) {
		select {
		case changed <- events:
		default:
		}
	})
	w.Add(path)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	if !w.Running() {
		t.Fatal("watcher should be running after Start")
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for w.Running() {
		if time.Now().After(deadline) {
			t.Fatal("watcher still running after its context was canceled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w.Start(context.Background())
	defer w.Stop()
	if !w.Running() {
		t.Fatal("watcher did not restart")
	}

	writeFile(t, path, "version two")
	select {
	case events := <-changed:
		if len(events) == 0 || events[0].Path != path {
			t.Errorf("events = %+v", events)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("change was not reported after restart")
	}
}

func TestChangedPaths(t *testing.T) {
	events := []Event{
		{Type: EventModify, Path: "/a.swc"},
		{Type: EventModify, Path: "/b.swc"},
		{Type: EventDelete, Path: "/a.swc"},
	}
	if got := ChangedPaths(events); !reflect.DeepEqual(got, []string{"/a.swc", "/b.swc"}) {
		t.Errorf("ChangedPaths = %v", got)
	}
	if got := ChangedPaths(nil); got != nil {
		t.Errorf("ChangedPaths(nil) = %v", got)
	}
}

func TestBatchDebouncerAdd(t *testing.T) {
	var received []Event
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		received = events
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "a.swc"})
	b.Add(Event{Type: EventModify, Path: "b.swc"})
	b.Add(Event{Type: EventDelete, Path: "c.swc"})

	if b.EventCount() != 3 {
		t.Errorf("EventCount() = %d, want 3", b.EventCount())
	}

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	if len(received) != 3 {
		t.Errorf("Should have received 3 events, got %d", len(received))
	}
	mu.Unlock()
}

func TestBatchDebouncerCancel(t *testing.T) {
	var called bool
	var mu sync.Mutex

	emit := func(events []Event) {
		mu.Lock()
		called = true
		mu.Unlock()
	}

	b := NewBatchDebouncer(50*time.Millisecond, emit)
	b.Add(Event{Type: EventCreate, Path: "a.swc"})
	b.Cancel()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if called {
		t.Error("Emit should not be called after cancel")
	}
	mu.Unlock()

	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d, want 0 after cancel", b.EventCount())
	}
}

func TestBatchDebouncerFlush(t *testing.T) {
	var received []Event

	b := NewBatchDebouncer(time.Hour, func(events []Event) { received = events })
	b.Add(Event{Type: EventCreate, Path: "a.swc"})
	b.Flush()

	if len(received) != 1 {
		t.Errorf("Should have received 1 event, got %d", len(received))
	}
	if b.EventCount() != 0 {
		t.Errorf("EventCount() = %d, want 0 after flush", b.EventCount())
	}
}

func TestBatchDebouncerNoEmitWithNoEvents(t *testing.T) {
	called := false
	b := NewBatchDebouncer(10*time.Millisecond, func(events []Event) { called = true })
	b.Flush()

	if called {
		t.Error("Emit should not be called with no events")
	}
}
