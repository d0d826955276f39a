// Package notify implements the refresh trigger: an externally owned
// signal whose change (not its content) tells a running console to
// reload its incident collection. The trigger never carries incident
// data; the console always refetches from the service.
package notify

import (
	"context"
	"io"
	"log"
)

// Trigger is the refresh signal shared between the console and sibling
// flows such as `incidents create`.
type Trigger interface {
	// Fire signals that the collection changed elsewhere. Firing is
	// idempotent: rapid repeated fires collapse into at most a few
	// reloads on the watching side.
	Fire(ctx context.Context) error

	// Watch blocks, invoking onChange once per observed signal, until
	// ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error

	// Close releases the trigger's resources.
	Close() error
}

// NewTrigger selects a trigger backend. A reachable Redis wins, the
// trigger file is the usual fallback, and an empty file path disables
// external refresh entirely.
func NewTrigger(redisURL, filePath string, logger *log.Logger) Trigger {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	if redisURL != "" {
		if rt, err := NewRedisTrigger(redisURL, logger); err == nil {
			return rt
		} else {
			logger.Printf("Redis trigger unavailable (%v), falling back to file trigger", err)
		}
	}

	if filePath != "" {
		return NewFileTrigger(filePath, logger)
	}

	return NewNullTrigger(logger)
}
