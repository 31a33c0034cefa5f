package views

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/clock"
)

// Debouncer runs only the last of a burst of triggers, once the burst has
// been quiet for the delay.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	firedAt uint64
	timer   *clock.Timer
}

func NewDebouncer(c clock.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: c, delay: delay}
}

// Trigger schedules f, replacing whatever was pending.
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	t := d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := gen == d.gen
		if current {
			d.timer = nil
			d.firedAt = gen
		}
		d.mu.Unlock()
		if current {
			f()
		}
	})

	d.mu.Lock()
	if gen == d.gen && d.firedAt != gen {
		d.timer = t
	}
	d.mu.Unlock()
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// sequence tags requests so that only the answer to the latest one is used.
type sequence struct {
	mu     sync.Mutex
	latest uint64
}

func (s *sequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

func (s *sequence) isLatest(n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return n == s.latest
}

// invalidate makes every outstanding tag stale.
func (s *sequence) invalidate() { s.next() }
