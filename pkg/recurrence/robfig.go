package recurrence

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Seconds are mandatory; descriptors are translated upstream by cronexpr.
var robfigParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type robfigBackend struct {
	sched cron.Schedule
	loc   *time.Location
}

func newRobfig(sp spec, loc *time.Location) (backend, error) {
	sched, err := robfigParser.Parse(sp.sixFields())
	if err != nil {
		return nil, err
	}
	if ss, ok := sched.(*cron.SpecSchedule); ok {
		ss.Location = loc
	}
	return &robfigBackend{sched: sched, loc: loc}, nil
}

// after relies on SpecSchedule.Next rounding t up to the next whole second
// before matching, so the result is always strictly after t. A Local
// schedule evaluates in t's own zone, hence the explicit In.
func (b *robfigBackend) after(t time.Time) (time.Time, bool) {
	n := b.sched.Next(t.In(b.loc))
	if n.IsZero() {
		// Next gives up after five years without a match (e.g. "0 0 0 30 2 ?").
		return time.Time{}, false
	}
	return n, true
}
