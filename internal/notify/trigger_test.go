package notify

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// A fire on the file trigger must reach a concurrent watcher.
func TestFileTriggerFireReachesWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh")
	trigger := NewFileTrigger(path, discardLogger())
	defer trigger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- trigger.Watch(ctx, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to install before firing.
	time.Sleep(100 * time.Millisecond)

	if err := trigger.Fire(ctx); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not observe the fire")
	}

	cancel()
	select {
	case err := <-watchErr:
		if err != context.Canceled {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

// Fires before any watcher exists are fine; the file just gets rewritten.
func TestFileTriggerFireWithoutWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "refresh")
	trigger := NewFileTrigger(path, discardLogger())
	defer trigger.Close()

	for i := 0; i < 3; i++ {
		if err := trigger.Fire(context.Background()); err != nil {
			t.Fatalf("Fire %d: %v", i, err)
		}
	}
}

func TestNullTrigger(t *testing.T) {
	trigger := NewNullTrigger(discardLogger())
	defer trigger.Close()

	if err := trigger.Fire(context.Background()); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	called := false
	err := trigger.Watch(ctx, func() { called = true })
	if err != context.DeadlineExceeded {
		t.Errorf("Watch returned %v, want deadline exceeded", err)
	}
	if called {
		t.Error("null trigger must never signal changes")
	}
}

// NewTrigger picks the file backend when Redis is not configured and the
// null backend when nothing is.
func TestNewTriggerSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refresh")

	if _, ok := NewTrigger("", path, discardLogger()).(*FileTrigger); !ok {
		t.Error("expected file trigger when only a path is configured")
	}
	if _, ok := NewTrigger("", "", discardLogger()).(*NullTrigger); !ok {
		t.Error("expected null trigger when nothing is configured")
	}
	// An unreachable Redis falls back to the file trigger.
	if _, ok := NewTrigger("redis://127.0.0.1:1/0", path, discardLogger()).(*FileTrigger); !ok {
		t.Error("expected file trigger fallback when Redis is unreachable")
	}
}
