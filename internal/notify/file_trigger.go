package notify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// FileTrigger signals refresh through a file on disk: Fire rewrites the
// file with a fresh nonce, Watch observes it with fsnotify. Works with no
// infrastructure beyond a shared filesystem.
type FileTrigger struct {
	path   string
	logger *log.Logger
}

// NewFileTrigger creates a file-backed trigger at path.
func NewFileTrigger(path string, logger *log.Logger) *FileTrigger {
	if logger == nil {
		logger = log.New(log.Writer(), "[trigger] ", log.LstdFlags)
	}
	return &FileTrigger{path: path, logger: logger}
}

// Fire rewrites the trigger file. The nonce makes every fire a distinct
// write event even when two fires land within the same clock tick.
func (ft *FileTrigger) Fire(ctx context.Context) error {
	if dir := filepath.Dir(ft.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create trigger directory: %w", err)
		}
	}
	payload := fmt.Sprintf("%s %d\n", uuid.NewString(), time.Now().UnixNano())
	if err := os.WriteFile(ft.path, []byte(payload), 0644); err != nil {
		return fmt.Errorf("write trigger file: %w", err)
	}
	return nil
}

// Watch observes the trigger file until ctx is cancelled. The parent
// directory is watched rather than the file itself so fires from before
// the file first exists are still caught.
func (ft *FileTrigger) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(ft.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create trigger directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(ft.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ft.logger.Printf("watch error: %v", err)
		}
	}
}

// Close is a no-op; the watcher lives inside Watch.
func (ft *FileTrigger) Close() error { return nil }
