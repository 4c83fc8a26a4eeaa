package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed before an event arrived")
		}
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestWatch_CollapsesWriteBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := New(100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, "v1")
	writeFile(t, path, "v2")
	writeFile(t, path, "v3")

	ev := waitEvent(t, events)
	if ev.Path != path {
		t.Errorf("expected event for %s, got %s", path, ev.Path)
	}
	if ev.Op != OpModified {
		t.Errorf("expected modified after a create+write burst, got %s", ev.Op)
	}

	select {
	case extra := <-events:
		t.Errorf("burst produced a second event: %+v", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_RemovalBypassesDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "hello")

	// Debounce long enough that any scheduled timer could not fire in time.
	w, err := New(time.Hour, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ev := waitEvent(t, events)
	if ev.Op != OpRemoved {
		t.Errorf("expected removed, got %s", ev.Op)
	}
	if ev.Path != path {
		t.Errorf("expected event for %s, got %s", path, ev.Path)
	}
}

func TestWatch_IgnoresUnsupportedExtensions(t *testing.T) {
	dir := t.TempDir()
	w, err := New(50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	writeFile(t, filepath.Join(dir, "scratch.tmp"), "ignored")

	select {
	case ev := <-events:
		t.Errorf("unsupported file produced an event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_CancelWithPendingTimer(t *testing.T) {
	// Cancel right after a write so the debounce timer is still pending when
	// the event channel closes. The late-firing timer must not send on the
	// closed channel.
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		w, err := New(5*time.Millisecond, nil)
		if err != nil {
			t.Fatalf("new watcher: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		events, err := w.Watch(ctx, dir)
		if err != nil {
			cancel()
			t.Fatalf("watch: %v", err)
		}

		writeFile(t, filepath.Join(dir, fmt.Sprintf("doc%d.txt", i)), "content")
		time.Sleep(time.Millisecond)
		cancel()

		for range events {
		}
		w.Close()
	}

	// Give any stray timers a chance to fire before the test exits.
	time.Sleep(20 * time.Millisecond)
}
