package trigger

import (
	"time"

	"cronjob/pkg/cronexpr"
	"cronjob/pkg/recurrence"
)

// State is the tracker's position in the due-detection state machine.
type State int

const (
	Unarmed State = iota
	Armed
)

func (s State) String() string {
	switch s {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	}
	return "unknown"
}

// ArmEpsilon is how far before a future first occurrence the tracker arms
// itself, so the strict FirstAfter query in the armed branch still lands on
// that occurrence.
const ArmEpsilon = time.Millisecond

type Option = recurrence.Option

var (
	WithEngine   = recurrence.WithEngine
	WithLocation = recurrence.WithLocation
)

// WithUTC evaluates the schedule on the UTC wall clock.
func WithUTC() Option { return recurrence.WithLocation(time.UTC) }

// Tracker turns a recurrence rule into a "has it fired since the last poll"
// detector. It is not safe for concurrent use; callers polling one tracker
// from several goroutines must serialize Poll themselves.
type Tracker struct {
	expr  string
	rule  recurrence.Rule
	last  time.Time
	armed bool
	fired bool
}

// New normalizes expr (English phrases included), parses it and returns an
// unarmed tracker. Errors are *cronexpr.ExpressionError.
func New(expr string, opts ...Option) (*Tracker, error) {
	canonical, err := cronexpr.Normalize(expr)
	if err != nil {
		return nil, err
	}
	r, err := recurrence.Parse(canonical, opts...)
	if err != nil {
		return nil, err
	}
	return &Tracker{expr: canonical, rule: r}, nil
}

func MustNew(expr string, opts ...Option) *Tracker {
	t, err := New(expr, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// NewFromRule wraps an already parsed rule.
func NewFromRule(r recurrence.Rule) *Tracker {
	t := &Tracker{rule: r}
	if s, ok := r.(interface{ String() string }); ok {
		t.expr = s.String()
	}
	return t
}

// Poll reports whether at least one occurrence at or before now has not
// been reported yet. Missed occurrences are coalesced into one report.
func (t *Tracker) Poll(now time.Time) bool {
	if !t.armed {
		next, ok := t.rule.FirstAtOrAfter(now)
		if !ok {
			return false
		}
		t.armed = true
		if !now.Before(next) {
			t.last = next
			t.fired = true
			return true
		}
		t.last = next.Add(-ArmEpsilon)
		return false
	}

	next, ok := t.rule.FirstAfter(t.last)
	if !ok || now.Before(next) {
		return false
	}
	t.last = latestAtOrBefore(t.rule, next, now)
	t.fired = true
	return true
}

// LastFired returns the most recently reported occurrence. ok is false until
// the first due report; while armed for a future first occurrence the
// stored instant is not an occurrence and is not exposed.
func (t *Tracker) LastFired() (time.Time, bool) {
	if !t.fired {
		return time.Time{}, false
	}
	return t.last, true
}

func (t *Tracker) State() State {
	if t.armed {
		return Armed
	}
	return Unarmed
}

// Expression is the canonical cron form the tracker was built from.
func (t *Tracker) Expression() string { return t.expr }

func (t *Tracker) Rule() recurrence.Rule { return t.rule }

// maxLookBack caps the probe window; far beyond any rule's period.
const maxLookBack = 200 * 365 * 24 * time.Hour

// latestAtOrBefore finds the last occurrence in [first, now]. first must be
// an occurrence at or before now.
func latestAtOrBefore(r recurrence.Rule, first, now time.Time) time.Time {
	cur := first
	for w := time.Second; w <= maxLookBack; w *= 2 {
		from := now.Add(-w)
		if !from.After(first) {
			break
		}
		if c, ok := r.FirstAtOrAfter(from); ok && !c.After(now) {
			if c.After(cur) {
				cur = c
			}
			break
		}
	}
	for {
		n, ok := r.FirstAfter(cur)
		if !ok || n.After(now) {
			return cur
		}
		cur = n
	}
}
