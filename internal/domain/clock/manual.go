package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock and Scheduler driven entirely by the test. Time only
// moves when Advance is called; due timers fire in deadline order with the
// clock set to their deadline, then every frame subscriber fires once.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers map[int]*manualTimer
	frames map[int]func()
}

type manualTimer struct {
	deadline time.Duration
	fn       func()
	id       int
}

// NewManual creates a manual clock/scheduler starting at zero.
func NewManual() *Manual {
	return &Manual{
		timers: make(map[int]*manualTimer),
		frames: make(map[int]func()),
	}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// ScheduleOnce registers fn to fire when the clock reaches now+d.
func (m *Manual) ScheduleOnce(d time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.timers[id] = &manualTimer{deadline: m.now + d, fn: fn, id: id}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.timers, id)
	}
}

// EveryFrame registers fn to fire once per Advance call.
func (m *Manual) EveryFrame(fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.frames[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.frames, id)
	}
}

// Advance moves the clock forward by d. Timers due within the window fire
// in deadline order (the clock reads their deadline while they run), then
// the clock settles on the target and every frame subscriber fires once.
// Callbacks run without the internal lock held, so they may schedule or
// cancel freely.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		t := m.nextDueLocked(target)
		if t == nil {
			break
		}
		delete(m.timers, t.id)
		m.now = t.deadline
		m.mu.Unlock()
		t.fn()
		m.mu.Lock()
	}
	m.now = target
	frames := make([]func(), 0, len(m.frames))
	ids := make([]int, 0, len(m.frames))
	for id := range m.frames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		frames = append(frames, m.frames[id])
	}
	m.mu.Unlock()
	for _, fn := range frames {
		fn()
	}
}

// Tick fires every frame subscriber once without moving the clock.
func (m *Manual) Tick() {
	m.Advance(0)
}

// nextDueLocked returns the earliest timer due at or before target,
// breaking deadline ties by registration order.
func (m *Manual) nextDueLocked(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.deadline > target {
			continue
		}
		if best == nil || t.deadline < best.deadline ||
			(t.deadline == best.deadline && t.id < best.id) {
			best = t
		}
	}
	return best
}

// PendingTimers reports how many one-shot timers are outstanding.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// FrameSubscribers reports how many frame callbacks are registered.
func (m *Manual) FrameSubscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}
