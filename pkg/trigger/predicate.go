package trigger

import "time"

// Predicate is the closure form of a Tracker: each call is one Poll on the
// same hidden tracker.
type Predicate func(now time.Time) bool

func NewPredicate(expr string, opts ...Option) (Predicate, error) {
	t, err := New(expr, opts...)
	if err != nil {
		return nil, err
	}
	return t.Poll, nil
}
