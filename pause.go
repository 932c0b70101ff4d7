package osometweet

import (
	"context"
	"time"
)

// minPauseStep is the shortest halving step; below it the remaining
// distance is slept in one go.
const minPauseStep = 10 * time.Millisecond

// PauseUntil blocks until t. It sleeps half the remaining distance at a
// time, so a clock adjustment or late wakeup never overshoots by much.
// It returns early with ctx.Err() when ctx is done.
func PauseUntil(ctx context.Context, t time.Time) error {
	return pauseUntil(ctx, t, time.Now, sleepCtx)
}

func pauseUntil(ctx context.Context, t time.Time, now func() time.Time,
	sleep func(context.Context, time.Duration) error) error {
	for {
		d := t.Sub(now())
		if d <= 0 {
			return nil
		}
		step := d / 2
		if step < minPauseStep {
			step = d
		}
		if err := sleep(ctx, step); err != nil {
			return err
		}
	}
}

// PauseUntilUnix is PauseUntil for an epoch timestamp in seconds.
func PauseUntilUnix(ctx context.Context, sec float64) error {
	return PauseUntil(ctx, time.Unix(0, int64(sec*float64(time.Second))))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
