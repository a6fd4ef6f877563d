package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNew_Validation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	if _, err := New("/tmp", time.Second, nil); err == nil {
		t.Error("expected error for nil callback")
	}
	if _, err := New("", time.Second, noop); err == nil {
		t.Error("expected error for empty dir")
	}
	if _, err := New("/tmp", 0, noop); err == nil {
		t.Error("expected error for zero debounce")
	}
	if _, err := New("/tmp", time.Second, noop); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStart_MissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "missing"), time.Second, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	w, err := New(dir, 200*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	for _, name := range []string{"proj-AAAAAAAA-py3.10", "proj-AAAAAAAA-py3.11", "proj-AAAAAAAA-py3.12"} {
		if err := os.Mkdir(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(800 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected 1 debounced callback, got %d", got)
	}
}

func TestWatcher_CallbackErrorKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	var calls int32

	w, err := New(dir, 50*time.Millisecond, func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("poetry exploded")
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Mkdir(filepath.Join(dir, "first"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if err := os.Mkdir(filepath.Join(dir, "second"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 callbacks, got %d", got)
	}
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), time.Second, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestStop_AfterRun(t *testing.T) {
	w, err := New(t.TempDir(), time.Second, func(context.Context) error { return nil })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() returned error: %v", err)
	}
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/v/proj-AAAAAAAA-py3.12", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/v/proj-AAAAAAAA-py3.12", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/v/proj-AAAAAAAA-py3.12", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "/v/envs.toml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/v/other.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/v/proj-AAAAAAAA-py3.12", Op: fsnotify.Chmod}, false},
	}

	for _, tt := range tests {
		if got := relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%s) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
