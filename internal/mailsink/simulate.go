package mailsink

import (
	"context"
	"time"

	"github.com/shineum/mailsink-lite/internal/email"
)

// defaultDelay keeps every send observably asynchronous.
const defaultDelay = time.Millisecond

// simulate waits out the configured delay and returns the injected error,
// if any. A nil sim still incurs the default delay.
func simulate(ctx context.Context, sim *email.Simulate) error {
	delay := defaultDelay
	if sim != nil && sim.DelayMs > 0 {
		delay = time.Duration(sim.DelayMs) * time.Millisecond
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if sim == nil || sim.Error == nil {
		return nil
	}

	// Copy so callers holding the message cannot observe mutation.
	injected := *sim.Error
	return &injected
}
