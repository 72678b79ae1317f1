package sequencer

import (
	"context"
	"time"
)

// Clock abstracts time so cycles can be driven without sleeping.
type Clock interface {
	Now() time.Time
	// WaitUntil blocks until t or until ctx is done, returning ctx.Err()
	// in the latter case.
	WaitUntil(ctx context.Context, t time.Time) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) WaitUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
