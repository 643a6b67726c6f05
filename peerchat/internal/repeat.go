package internal

import (
	"context"
	"time"
)

// Repeat runs fn at a fixed interval until ctx is canceled. The first run
// happens after one full interval; there is no backoff, the next tick is the
// retry.
func Repeat(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}
