package notify

import (
	"context"
	"log"
)

// NullTrigger is the no-op trigger used when external refresh is
// disabled.
type NullTrigger struct {
	logger *log.Logger
}

// NewNullTrigger creates a disabled trigger.
func NewNullTrigger(logger *log.Logger) *NullTrigger {
	if logger == nil {
		logger = log.New(log.Writer(), "[trigger] ", log.LstdFlags)
	}
	return &NullTrigger{logger: logger}
}

// Fire logs the fire but signals nobody.
func (nt *NullTrigger) Fire(ctx context.Context) error {
	nt.logger.Printf("refresh trigger disabled, fire dropped")
	return nil
}

// Watch blocks until ctx is cancelled; there is nothing to observe.
func (nt *NullTrigger) Watch(ctx context.Context, onChange func()) error {
	<-ctx.Done()
	return ctx.Err()
}

// Close is a no-op.
func (nt *NullTrigger) Close() error { return nil }
