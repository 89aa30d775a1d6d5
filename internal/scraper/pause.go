package scraper

import (
	"context"
	"time"
)

// Sleeper ждёт d или отмену контекста.
type Sleeper func(ctx context.Context, d time.Duration) error

// Pause: Sleeper по умолчанию.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
