package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// ScheduleArrived is emitted once for each timer whose tracker reported due
// during a CheckAll pass.
type ScheduleArrived struct {
	Timer      string
	Expression string
	// At is the poll instant that observed the arrival, not the occurrence.
	At time.Time
	// Occurrence is the coalesced occurrence the tracker reported.
	Occurrence time.Time
}

// Bus fans ScheduleArrived events out to subscribers.
//
// Publish never blocks. Each subscriber gets a buffered channel; when it is
// full the event is dropped for that subscriber and counted.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan ScheduleArrived
	seq     uint64
	dropped atomic.Uint64
}

func New() *Bus {
	return &Bus{subs: map[uint64]chan ScheduleArrived{}}
}

func (b *Bus) Publish(e ScheduleArrived) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	// Hold the read lock for the sends so unsubscribe cannot close a channel
	// under us; sends are non-blocking so this is short.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel; calling it more than once is safe.
func (b *Bus) Subscribe(buffer int) (<-chan ScheduleArrived, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan ScheduleArrived, buffer)

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 { return b.dropped.Load() }

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
