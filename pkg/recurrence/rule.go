package recurrence

import (
	"fmt"
	"strings"
	"time"

	"cronjob/pkg/cronexpr"
)

// Rule answers "when is the next occurrence" over a one-second time axis.
//
// Sub-second parts of t are truncated: FirstAtOrAfter(10:00:05.300) may
// return 10:00:05, and FirstAfter of the same instant returns something
// after 10:00:05. Both queries are monotonic in t and always return
// whole-second instants. ok is false once the rule has no further
// occurrences (for example after the last year allowed by a year field).
type Rule interface {
	FirstAtOrAfter(t time.Time) (next time.Time, ok bool)
	FirstAfter(t time.Time) (next time.Time, ok bool)
}

// Engine selects the cron library that evaluates the six time fields.
type Engine string

const (
	EngineRobfig Engine = "robfig"
	EngineGronx  Engine = "gronx"
)

// ParseEngine maps a config string to an Engine. Empty means EngineRobfig.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(s))) {
	case "", EngineRobfig:
		return EngineRobfig, nil
	case EngineGronx:
		return EngineGronx, nil
	}
	return "", fmt.Errorf("unknown recurrence engine %q (use robfig or gronx)", s)
}

type options struct {
	engine Engine
	loc    *time.Location
}

type Option func(*options)

func WithEngine(e Engine) Option { return func(o *options) { o.engine = e } }

// WithLocation sets the wall clock the fields are evaluated in.
// nil means time.Local.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

// backend finds the first instant strictly after t matching the six time
// fields, ignoring years. Results are whole seconds.
type backend interface {
	after(t time.Time) (time.Time, bool)
}

// Parse compiles a canonical 6- or 7-field cron expression.
//
// Field order: second minute hour day-of-month month day-of-week [year].
// Day-of-week runs 1-7 with 1 = Sunday; SUN-SAT and JAN-DEC names are
// accepted. Errors are *cronexpr.ExpressionError with KindInvalidSyntax.
func Parse(expr string, opts ...Option) (Rule, error) {
	o := options{engine: EngineRobfig}
	for _, fn := range opts {
		fn(&o)
	}
	if o.loc == nil {
		o.loc = time.Local
	}

	sp, err := parseSpec(expr)
	if err != nil {
		return nil, err
	}

	var b backend
	switch o.engine {
	case EngineRobfig, "":
		b, err = newRobfig(sp, o.loc)
	case EngineGronx:
		b, err = newGronx(sp, o.loc)
	default:
		return nil, fmt.Errorf("unknown recurrence engine %q", o.engine)
	}
	if err != nil {
		return nil, cronexpr.InvalidSyntax(expr, "", err)
	}
	return &rule{expr: expr, loc: o.loc, years: sp.years, days: sp.days, b: b}, nil
}

// MustParse is Parse that panics on error. Intended for constants and tests.
func MustParse(expr string, opts ...Option) Rule {
	r, err := Parse(expr, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

type rule struct {
	expr  string
	loc   *time.Location
	years yearSet
	days  *dayFilter
	b     backend
}

func (r *rule) FirstAfter(t time.Time) (time.Time, bool) {
	t = t.Truncate(time.Second)
	// Every pass moves t forward by at least a day or to a later year, and
	// nothing past maxYear can match, so this ends.
	for {
		n, ok := r.b.after(t)
		if !ok {
			return time.Time{}, false
		}
		n = n.In(r.loc)
		y := n.Year()
		if y > maxYear {
			return time.Time{}, false
		}
		if !r.years.has(y) {
			ny, ok := r.years.next(y + 1)
			if !ok || ny <= y {
				return time.Time{}, false
			}
			// Resume just before midnight on Jan 1 of the next allowed year.
			t = time.Date(ny, time.January, 1, 0, 0, 0, 0, r.loc).Add(-time.Second)
			continue
		}
		if r.days != nil && !r.days.match(n) {
			t = time.Date(y, n.Month(), n.Day()+1, 0, 0, 0, 0, r.loc).Add(-time.Second)
			continue
		}
		return n, true
	}
}

func (r *rule) FirstAtOrAfter(t time.Time) (time.Time, bool) {
	return r.FirstAfter(t.Truncate(time.Second).Add(-time.Second))
}

func (r *rule) String() string { return r.expr }

// Upcoming lists up to n occurrences at or after from.
func Upcoming(r Rule, from time.Time, n int) []time.Time {
	if r == nil || n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	next, ok := r.FirstAtOrAfter(from)
	for ok && len(out) < n {
		out = append(out, next)
		next, ok = r.FirstAfter(next)
	}
	return out
}
