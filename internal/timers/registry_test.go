package timers

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"cronjob/internal/eventbus"
	"cronjob/pkg/cronexpr"
	"cronjob/pkg/logx"
	"cronjob/pkg/trigger"
)

var t0 = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []eventbus.ScheduleArrived
}

func (r *recorder) Publish(e eventbus.ScheduleArrived) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func newRegistry(pub Publisher) *Registry {
	return New(pub, logx.Nop(), trigger.WithUTC())
}

func TestCheckAllPublishesInRegistrationOrder(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := newRegistry(rec)
	for _, s := range []Spec{
		{"zeta", "every second"},
		{"alpha", "0/5 * * * * *"},
		{"hourly", "every hour"},
	} {
		if err := r.Add(s.Name, s.Expression); err != nil {
			t.Fatalf("Add(%s): %v", s.Name, err)
		}
	}

	got := r.CheckAll(t0)
	if want := []string{"zeta", "alpha", "hourly"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("CheckAll(t0) = %v, want %v", got, want)
	}
	got = r.CheckAll(t0.Add(time.Second))
	if want := []string{"zeta"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("CheckAll(t0+1s) = %v, want %v", got, want)
	}
	if got := r.CheckAll(t0.Add(time.Second)); got != nil {
		t.Fatalf("repeat CheckAll = %v", got)
	}

	if len(rec.events) != 4 {
		t.Fatalf("published %d events, want 4", len(rec.events))
	}
	e := rec.events[1]
	if e.Timer != "alpha" || e.Expression != "0/5 * * * * *" || !e.At.Equal(t0) || !e.Occurrence.Equal(t0) {
		t.Fatalf("event = %+v", e)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	t.Parallel()
	r := newRegistry(nil)
	if err := r.Add("  ", "every second"); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("Add(empty name) = %v", err)
	}
	err := r.Add("x", "every blue moon")
	if !errors.Is(err, cronexpr.ErrUntranslatable) {
		t.Fatalf("Add(bad expr) = %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestAddSameCanonicalKeepsState(t *testing.T) {
	t.Parallel()
	r := newRegistry(nil)
	if err := r.Add("hb", "every 5 seconds"); err != nil {
		t.Fatal(err)
	}
	r.CheckAll(t0)
	if err := r.Add("hb", "0/5 * * * * ? *"); err != nil {
		t.Fatal(err)
	}
	if got := r.CheckAll(t0.Add(time.Second)); got != nil {
		t.Fatalf("state was reset: %v", got)
	}
	if err := r.Add("hb", "every 10 seconds"); err != nil {
		t.Fatal(err)
	}
	if got := r.CheckAll(t0.Add(time.Second)); got != nil {
		t.Fatalf("fresh tracker fired between occurrences: %v", got)
	}
	snap := r.Snapshot(t0, 0)
	if snap[0].State != trigger.Armed || snap[0].Fires != 0 {
		t.Fatalf("snapshot = %+v", snap[0])
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()
	r := newRegistry(nil)
	if err := r.Replace([]Spec{{"a", "every second"}, {"b", "every minute"}}); err != nil {
		t.Fatal(err)
	}
	r.CheckAll(t0)

	err := r.Replace([]Spec{{"a", "every second"}, {"a", "every hour"}})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Replace(dup) = %v", err)
	}
	if err := r.Replace([]Spec{{"c", "61 * * * * *"}}); !errors.Is(err, cronexpr.ErrInvalidSyntax) {
		t.Fatalf("Replace(bad) = %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("failed Replace changed registry: Len = %d", r.Len())
	}

	if err := r.Replace([]Spec{{"c", "every hour"}, {"a", "* * * * * ? *"}}); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot(t0, 0)
	if len(snap) != 2 || snap[0].Name != "c" || snap[1].Name != "a" {
		t.Fatalf("snapshot order = %+v", snap)
	}
	if snap[1].Fires != 1 || snap[1].Source != "* * * * * ? *" {
		t.Fatalf("kept timer lost state: %+v", snap[1])
	}
	if r.Remove("b") {
		t.Fatal("b should be gone")
	}
	if !r.Remove("c") || r.Len() != 1 {
		t.Fatal("Remove(c) failed")
	}
}

func TestSnapshotPreview(t *testing.T) {
	t.Parallel()
	r := newRegistry(nil)
	if err := r.Add("q", "0 0/15 * * * ?"); err != nil {
		t.Fatal(err)
	}
	snap := r.Snapshot(t0, 3)
	want := []time.Time{t0.Add(15 * time.Minute), t0.Add(30 * time.Minute), t0.Add(45 * time.Minute)}
	if len(snap[0].Next) != 3 {
		t.Fatalf("preview = %v", snap[0].Next)
	}
	for i := range want {
		if !snap[0].Next[i].Equal(want[i]) {
			t.Fatalf("preview = %v, want %v", snap[0].Next, want)
		}
	}
	if snap[0].State != trigger.Unarmed {
		t.Fatalf("Snapshot must not poll, state = %v", snap[0].State)
	}
}

func TestCheckAllConcurrent(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	r := newRegistry(rec)
	if err := r.Add("s", "every second"); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.CheckAll(t0)
		}()
	}
	wg.Wait()
	if len(rec.events) != 1 {
		t.Fatalf("occurrence reported %d times", len(rec.events))
	}
}

func TestReconfigureRebuildsTrackers(t *testing.T) {
	t.Parallel()
	r := newRegistry(nil)
	if err := r.Replace([]Spec{{"noon", "0 0 12 * * ?"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got := r.CheckAll(t0); len(got) != 1 {
		t.Fatalf("noon UTC should fire at t0, got %v", got)
	}

	wib := time.FixedZone("WIB", 7*60*60)
	if err := r.Reconfigure([]Spec{{"noon", "0 0 12 * * ?"}}, trigger.WithLocation(wib)); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := r.CheckAll(t0); len(got) != 0 {
		t.Fatalf("noon WIB is not due at 12:00 UTC, got %v", got)
	}
	if got := r.CheckAll(t0.Add(17*time.Hour - time.Second)); len(got) != 0 {
		t.Fatalf("fired before noon WIB: %v", got)
	}
	if got := r.CheckAll(t0.Add(17 * time.Hour)); len(got) != 1 {
		t.Fatalf("expected fire at 05:00 UTC next day, got %v", got)
	}

	if err := r.Reconfigure([]Spec{{"bad", "nope"}}, trigger.WithUTC()); err == nil {
		t.Fatal("Reconfigure should reject bad specs")
	}
	if r.Len() != 1 {
		t.Fatalf("failed Reconfigure changed the registry, Len = %d", r.Len())
	}
}
