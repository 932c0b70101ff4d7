package osometweet

import (
	"context"
	"testing"
	"time"
)

func TestPauseUntil(t *testing.T) {
	t.Run("past deadline returns immediately", func(t *testing.T) {
		start := time.Now()
		if err := PauseUntil(context.Background(), start.Add(-time.Hour)); err != nil {
			t.Fatal(err)
		}
		if time.Since(start) > 50*time.Millisecond {
			t.Fatal("expected no sleep for a past deadline")
		}
	})

	t.Run("blocks at least until the deadline", func(t *testing.T) {
		target := time.Now().Add(120 * time.Millisecond)
		if err := PauseUntil(context.Background(), target); err != nil {
			t.Fatal(err)
		}
		if time.Now().Before(target) {
			t.Fatal("returned before the deadline")
		}
	})

	t.Run("epoch seconds", func(t *testing.T) {
		target := time.Now().Add(60 * time.Millisecond)
		sec := float64(target.UnixNano()) / float64(time.Second)
		if err := PauseUntilUnix(context.Background(), sec); err != nil {
			t.Fatal(err)
		}
		if time.Now().Before(target.Add(-time.Millisecond)) {
			t.Fatal("returned before the deadline")
		}
	})

	t.Run("timezone does not matter", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*3600)
		target := time.Now().Add(40 * time.Millisecond).In(loc)
		if err := PauseUntil(context.Background(), target); err != nil {
			t.Fatal(err)
		}
		if time.Now().Before(target) {
			t.Fatal("returned before the deadline")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := PauseUntil(ctx, time.Now().Add(time.Hour))
		if err != context.DeadlineExceeded {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	})
}

func TestPauseUntil_HalvesTheRemainingDistance(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	target := clock.Add(time.Second)
	var steps []time.Duration
	sleep := func(_ context.Context, d time.Duration) error {
		steps = append(steps, d)
		clock = clock.Add(d)
		return nil
	}
	if err := pauseUntil(context.Background(), target, func() time.Time { return clock }, sleep); err != nil {
		t.Fatal(err)
	}

	want := []time.Duration{
		500 * time.Millisecond,
		250 * time.Millisecond,
		125 * time.Millisecond,
		62500 * time.Microsecond,
		31250 * time.Microsecond,
		15625 * time.Microsecond,
		15625 * time.Microsecond,
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps %v, want %v", len(steps), steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d: got %v, want %v", i, steps[i], want[i])
		}
	}
	if clock.Before(target) {
		t.Fatal("stopped before the deadline")
	}
}

func TestPauseUntil_SleepErrorStops(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	sleep := func(context.Context, time.Duration) error {
		calls++
		return context.Canceled
	}
	err := pauseUntil(context.Background(), clock.Add(time.Minute), func() time.Time { return clock }, sleep)
	if err != context.Canceled {
		t.Fatalf("expected canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one sleep, got %d", calls)
	}
}
