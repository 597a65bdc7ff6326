package runloop

import (
	"context"
	"sync/atomic"
	"time"

	"cronjob/pkg/logx"
)

// DefaultInterval is one frame at 60 Hz.
const DefaultInterval = time.Second / 60

// Checker polls every timer it owns once for now.
type Checker interface {
	CheckAll(now time.Time) []string
}

// Loop calls CheckAll at a fixed cadence. Missed ticks are not replayed;
// the trackers coalesce whatever elapsed in between.
type Loop struct {
	checker  Checker
	clock    func() time.Time
	log      logx.Logger
	interval atomic.Int64
	reset    chan struct{}

	ticks atomic.Uint64
	fired atomic.Uint64
}

type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option { return func(l *Loop) { l.clock = fn } }

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval.Store(int64(d))
		}
	}
}

func WithLogger(log logx.Logger) Option { return func(l *Loop) { l.log = log } }

func New(c Checker, opts ...Option) *Loop {
	l := &Loop{checker: c, clock: time.Now, reset: make(chan struct{}, 1)}
	l.interval.Store(int64(DefaultInterval))
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *Loop) Interval() time.Duration { return time.Duration(l.interval.Load()) }

// SetInterval changes the cadence of a running loop from the next tick.
func (l *Loop) SetInterval(d time.Duration) {
	if d <= 0 || d == l.Interval() {
		return
	}
	l.interval.Store(int64(d))
	select {
	case l.reset <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is done. The first check happens immediately.
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.Interval())
	defer t.Stop()
	l.log.Info("run loop started", logx.Duration("interval", l.Interval()))

	l.tick()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("run loop stopped", logx.Int64("ticks", int64(l.ticks.Load())), logx.Int64("fired", int64(l.fired.Load())))
			return nil
		case <-l.reset:
			t.Reset(l.Interval())
			l.log.Info("run loop interval changed", logx.Duration("interval", l.Interval()))
		case <-t.C:
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	l.ticks.Add(1)
	if names := l.checker.CheckAll(l.clock()); len(names) > 0 {
		l.fired.Add(uint64(len(names)))
		l.log.Debug("timers triggered", logx.Strings("timers", names))
	}
}

// Stats returns the number of ticks run and timers triggered so far.
func (l *Loop) Stats() (ticks, fired uint64) { return l.ticks.Load(), l.fired.Load() }
