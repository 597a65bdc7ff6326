package runloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"cronjob/internal/timers"
	"cronjob/pkg/logx"
	"cronjob/pkg/trigger"
)

type countingChecker struct {
	mu   sync.Mutex
	nows []time.Time
}

func (c *countingChecker) CheckAll(now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nows = append(c.nows, now)
	return nil
}

func (c *countingChecker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nows)
}

func TestRunChecksImmediatelyAndStops(t *testing.T) {
	t.Parallel()
	c := &countingChecker{}
	l := New(c, WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for c.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.count() != 1 {
		t.Fatalf("checks = %d, want the immediate one", c.count())
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}
}

func TestRunDrivesRegistryWithClock(t *testing.T) {
	t.Parallel()
	reg := timers.New(nil, logx.Nop(), trigger.WithUTC())
	if err := reg.Add("s", "every second"); err != nil {
		t.Fatal(err)
	}

	// Synthetic clock: each tick advances half a second.
	var mu sync.Mutex
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur := now
		now = now.Add(500 * time.Millisecond)
		return cur
	}
	l := New(reg, WithClock(clock), WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if ticks, _ := l.Stats(); ticks >= 20 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	ticks, fired := l.Stats()
	if ticks < 20 {
		t.Fatalf("only %d ticks", ticks)
	}
	// One fire per whole second of synthetic time: ticks at 0, 0.5, 1, 1.5 ...
	if want := (ticks + 1) / 2; fired != want {
		t.Fatalf("fired = %d over %d ticks, want %d", fired, ticks, want)
	}
}

func TestSetInterval(t *testing.T) {
	t.Parallel()
	l := New(&countingChecker{})
	if l.Interval() != DefaultInterval {
		t.Fatalf("default interval = %v", l.Interval())
	}
	l.SetInterval(0)
	if l.Interval() != DefaultInterval {
		t.Fatal("zero interval must be ignored")
	}
	l.SetInterval(time.Second)
	l.SetInterval(2 * time.Second)
	if l.Interval() != 2*time.Second {
		t.Fatalf("interval = %v", l.Interval())
	}
}
