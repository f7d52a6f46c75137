package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Clock for tests. Time only moves when Advance is
// called; due callbacks run inline on the advancing goroutine, in deadline
// order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*manualTimer
}

type manualTimer struct {
	clock    *Manual
	id       int
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := &manualTimer{clock: m, id: m.nextID, deadline: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every pending timer whose
// deadline falls within the window. Callbacks may schedule further timers;
// those fire too if they land inside the same window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		next := m.nextDueLocked(target)
		if next == nil {
			break
		}
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		next.stopped = true
		fn := next.fn
		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}

	m.now = target
	m.mu.Unlock()
}

func (m *Manual) nextDueLocked(limit time.Time) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].deadline.Equal(m.timers[j].deadline) {
			return m.timers[i].id < m.timers[j].id
		}
		return m.timers[i].deadline.Before(m.timers[j].deadline)
	})

	if len(m.timers) == 0 || m.timers[0].deadline.After(limit) {
		return nil
	}
	return m.timers[0]
}
