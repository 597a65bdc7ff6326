package timers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cronjob/internal/eventbus"
	"cronjob/pkg/logx"
	"cronjob/pkg/recurrence"
	"cronjob/pkg/trigger"
)

var (
	ErrEmptyName     = errors.New("timer name is empty")
	ErrDuplicateName = errors.New("duplicate timer name")
)

// Spec names one schedule.
type Spec struct {
	Name       string
	Expression string
}

// Publisher receives one event per triggered timer.
type Publisher interface {
	Publish(e eventbus.ScheduleArrived)
}

type entry struct {
	name    string
	source  string
	tracker *trigger.Tracker
	fires   uint64
}

// Registry owns a set of named trackers and polls them together.
//
// All methods are safe for concurrent use; one mutex serializes every
// poll, which is the only synchronization a Tracker needs.
type Registry struct {
	mu      sync.Mutex
	opts    []trigger.Option
	order   []string
	entries map[string]*entry
	pub     Publisher
	log     logx.Logger
}

// New returns an empty registry. pub may be nil, in which case CheckAll only
// returns the triggered names.
func New(pub Publisher, log logx.Logger, opts ...trigger.Option) *Registry {
	return &Registry{
		opts:    opts,
		entries: map[string]*entry{},
		pub:     pub,
		log:     log,
	}
}

func (r *Registry) options() []trigger.Option {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

func build(s Spec, opts []trigger.Option) (*entry, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, ErrEmptyName
	}
	tr, err := trigger.New(s.Expression, opts...)
	if err != nil {
		return nil, fmt.Errorf("timer %q: %w", name, err)
	}
	return &entry{name: name, source: s.Expression, tracker: tr}, nil
}

// Add registers or updates a timer. Updating with an expression that has
// the same canonical form keeps the existing tracker and its state.
func (r *Registry) Add(name, expr string) error {
	e, err := build(Spec{Name: name, Expression: expr}, r.options())
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(e)
	return nil
}

func (r *Registry) upsertLocked(e *entry) {
	old, ok := r.entries[e.name]
	if !ok {
		r.order = append(r.order, e.name)
		r.entries[e.name] = e
		return
	}
	if old.tracker.Expression() == e.tracker.Expression() {
		old.source = e.source
		return
	}
	r.entries[e.name] = e
}

func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Replace reconciles the registry with specs. Every spec is compiled first;
// on any error nothing changes. Timers whose canonical expression is
// unchanged keep their tracker state. Order follows specs.
func (r *Registry) Replace(specs []Spec) error {
	built, err := buildAll(specs, r.options())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make(map[string]*entry, len(built))
	order := make([]string, 0, len(built))
	kept := 0
	for _, e := range built {
		if old, ok := r.entries[e.name]; ok && old.tracker.Expression() == e.tracker.Expression() {
			old.source = e.source
			e = old
			kept++
		}
		next[e.name] = e
		order = append(order, e.name)
	}
	r.entries, r.order = next, order
	r.log.Info("timers replaced", logx.Int("count", len(order)), logx.Int("kept", kept))
	return nil
}

// Reconfigure swaps the tracker options (timezone, engine) and rebuilds
// every timer from specs. All tracker state is discarded.
func (r *Registry) Reconfigure(specs []Spec, opts ...trigger.Option) error {
	built, err := buildAll(specs, opts)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts
	r.entries = make(map[string]*entry, len(built))
	r.order = make([]string, 0, len(built))
	for _, e := range built {
		r.entries[e.name] = e
		r.order = append(r.order, e.name)
	}
	r.log.Info("timers rebuilt", logx.Int("count", len(built)))
	return nil
}

func buildAll(specs []Spec, opts []trigger.Option) ([]*entry, error) {
	built := make([]*entry, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		e, err := build(s, opts)
		if err != nil {
			return nil, err
		}
		if seen[e.name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.name)
		}
		seen[e.name] = true
		built = append(built, e)
	}
	return built, nil
}

// CheckAll polls every timer once with the same now, then publishes one
// ScheduleArrived per triggered timer in registration order. Publishing
// happens after the whole batch is collected.
func (r *Registry) CheckAll(now time.Time) []string {
	r.mu.Lock()
	var fired []eventbus.ScheduleArrived
	for _, name := range r.order {
		e := r.entries[name]
		if !e.tracker.Poll(now) {
			continue
		}
		e.fires++
		occ, _ := e.tracker.LastFired()
		fired = append(fired, eventbus.ScheduleArrived{
			Timer:      e.name,
			Expression: e.tracker.Expression(),
			At:         now,
			Occurrence: occ,
		})
	}
	pub := r.pub
	r.mu.Unlock()

	if len(fired) == 0 {
		return nil
	}
	names := make([]string, len(fired))
	for i, ev := range fired {
		names[i] = ev.Timer
		if pub != nil {
			pub.Publish(ev)
		}
	}
	return names
}

// Status describes one timer.
type Status struct {
	Name       string
	Source     string
	Expression string
	State      trigger.State
	LastFired  time.Time
	Fires      uint64
	Next       []time.Time
}

// Snapshot reports every timer with up to preview upcoming occurrences
// after now. It does not poll.
func (r *Registry) Snapshot(now time.Time, preview int) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		st := Status{
			Name:       e.name,
			Source:     e.source,
			Expression: e.tracker.Expression(),
			State:      e.tracker.State(),
			Fires:      e.fires,
		}
		st.LastFired, _ = e.tracker.LastFired()
		if preview > 0 {
			if next, ok := e.tracker.Rule().FirstAfter(now); ok {
				st.Next = recurrence.Upcoming(e.tracker.Rule(), next, preview)
			}
		}
		out = append(out, st)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
