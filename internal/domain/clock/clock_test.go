package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestMonotonicNeverDecreases(t *testing.T) {
	c := NewMonotonic()
	prev := c.Now()
	for i := 0; i < 1000; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("clock went backwards: %v -> %v", prev, now)
		}
		prev = now
	}
}

func TestTimerSchedulerScheduleOnce(t *testing.T) {
	s := NewTimerScheduler()
	fired := make(chan struct{})
	s.ScheduleOnce(5*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerSchedulerCancelPreventsFire(t *testing.T) {
	s := NewTimerScheduler()
	var fired atomic.Bool
	cancel := s.ScheduleOnce(20*time.Millisecond, func() { fired.Store(true) })
	cancel()
	cancel() // must be idempotent
	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Fatal("cancelled timer fired")
	}
}

func TestTimerSchedulerEveryFrame(t *testing.T) {
	s := NewTimerScheduler(WithFrameInterval(time.Millisecond))
	var ticks atomic.Int64
	cancel := s.EveryFrame(func() { ticks.Add(1) })
	time.Sleep(30 * time.Millisecond)
	cancel()
	got := ticks.Load()
	if got == 0 {
		t.Fatal("expected at least one frame tick")
	}
	time.Sleep(10 * time.Millisecond)
	if ticks.Load() != got {
		t.Fatal("frame callback fired after cancel")
	}
}

func TestManualTimersFireInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var order []int
	m.ScheduleOnce(30*time.Millisecond, func() { order = append(order, 3) })
	m.ScheduleOnce(10*time.Millisecond, func() { order = append(order, 1) })
	m.ScheduleOnce(20*time.Millisecond, func() { order = append(order, 2) })

	m.Advance(time.Second)
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected firing order: %v", order)
	}
	if m.PendingTimers() != 0 {
		t.Fatalf("expected no pending timers, got %d", m.PendingTimers())
	}
}

func TestManualClockReadsDeadlineDuringCallback(t *testing.T) {
	m := NewManual()
	var at time.Duration
	m.ScheduleOnce(250*time.Millisecond, func() { at = m.Now() })
	m.Advance(time.Second)
	if at != 250*time.Millisecond {
		t.Fatalf("callback saw %v, want 250ms", at)
	}
	if m.Now() != time.Second {
		t.Fatalf("clock settled at %v, want 1s", m.Now())
	}
}

func TestManualCancelledTimerNeverFires(t *testing.T) {
	m := NewManual()
	fired := false
	cancel := m.ScheduleOnce(10*time.Millisecond, func() { fired = true })
	cancel()
	m.Advance(time.Second)
	if fired {
		t.Fatal("cancelled timer fired")
	}
}

func TestManualFramesFireOncePerAdvance(t *testing.T) {
	m := NewManual()
	count := 0
	cancel := m.EveryFrame(func() { count++ })
	m.Advance(10 * time.Millisecond)
	m.Advance(10 * time.Millisecond)
	m.Tick()
	if count != 3 {
		t.Fatalf("expected 3 frame ticks, got %d", count)
	}
	cancel()
	m.Advance(10 * time.Millisecond)
	if count != 3 {
		t.Fatal("frame fired after cancel")
	}
}

func TestManualCallbackMayScheduleMore(t *testing.T) {
	m := NewManual()
	var second time.Duration
	m.ScheduleOnce(100*time.Millisecond, func() {
		m.ScheduleOnce(100*time.Millisecond, func() { second = m.Now() })
	})
	m.Advance(300 * time.Millisecond)
	if second != 200*time.Millisecond {
		t.Fatalf("chained timer fired at %v, want 200ms", second)
	}
}
