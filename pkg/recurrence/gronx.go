package recurrence

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// gronxBackend evaluates the six time fields with adhocore/gronx. The year
// segment is always "*" here; the rule applies its own year set on top.
type gronxBackend struct {
	expr string
	loc  *time.Location
}

func newGronx(sp spec, loc *time.Location) (backend, error) {
	expr := sp.sixFields() + " *"
	if !gronx.New().IsValid(expr) {
		return nil, fmt.Errorf("gronx rejected %q", expr)
	}
	return &gronxBackend{expr: expr, loc: loc}, nil
}

func (b *gronxBackend) after(t time.Time) (time.Time, bool) {
	ref := t.In(b.loc).Truncate(time.Second)
	n, err := gronx.NextTickAfter(b.expr, ref, false)
	if err != nil || !n.After(ref) {
		return time.Time{}, false
	}
	return n, true
}
