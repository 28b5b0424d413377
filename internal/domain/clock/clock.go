// Package clock provides the monotonic time source and the scheduling
// primitives the trial engine runs on: one-shot timers and per-frame ticks.
// Both come with manual implementations so engine behavior can be tested
// deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock reports elapsed time since an arbitrary fixed epoch. Readings are
// monotonically non-decreasing and immune to wall-clock adjustments.
type Clock interface {
	Now() time.Duration
}

// CancelFunc releases a scheduled callback. Safe to call more than once;
// after it returns the callback will not fire.
type CancelFunc func()

// Scheduler provides the two host primitives the engine needs: a one-shot
// delayed callback and a repeating per-frame callback.
type Scheduler interface {
	ScheduleOnce(d time.Duration, fn func()) CancelFunc
	EveryFrame(fn func()) CancelFunc
}

// Monotonic is the production Clock. Go's time package carries a monotonic
// reading in time.Time, so Since is unaffected by wall-clock changes.
type Monotonic struct {
	epoch time.Time
}

// NewMonotonic creates a Clock whose epoch is the moment of the call.
func NewMonotonic() *Monotonic {
	return &Monotonic{epoch: time.Now()}
}

// Now returns elapsed time since the epoch.
func (c *Monotonic) Now() time.Duration {
	return time.Since(c.epoch)
}

// defaultFrameInterval targets 60 Hz.
const defaultFrameInterval = 16667 * time.Microsecond

// TimerScheduler is the production Scheduler backed by time.AfterFunc and a
// ticker goroutine per frame subscription.
type TimerScheduler struct {
	frame time.Duration
}

// TimerOption applies a configuration option to the TimerScheduler.
type TimerOption func(*TimerScheduler)

// WithFrameInterval overrides the frame tick interval.
func WithFrameInterval(d time.Duration) TimerOption {
	return func(s *TimerScheduler) {
		if d > 0 {
			s.frame = d
		}
	}
}

// NewTimerScheduler creates a Scheduler with configuration options.
func NewTimerScheduler(opts ...TimerOption) *TimerScheduler {
	s := &TimerScheduler{frame: defaultFrameInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleOnce runs fn after d on a timer goroutine.
func (s *TimerScheduler) ScheduleOnce(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	var once sync.Once
	return func() {
		once.Do(func() { t.Stop() })
	}
}

// EveryFrame runs fn at the frame interval until cancelled.
func (s *TimerScheduler) EveryFrame(fn func()) CancelFunc {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.frame)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
