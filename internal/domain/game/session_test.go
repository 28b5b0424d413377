package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/reflex/internal/domain/clock"
)

const testSeed = 7

// testHarness drives a session deterministically: the manual scheduler
// controls time and a mirrored rand source predicts each lane's stimulus
// delay so inputs can be delivered at exact offsets from onset.
type testHarness struct {
	m      *clock.Manual
	sess   *Session
	mirror *rand.Rand
}

func newHarness(cb Callbacks) *testHarness {
	m := clock.NewManual()
	return &testHarness{
		m:      m,
		sess:   NewSession(m, m, WithRand(rand.New(rand.NewSource(testSeed))), WithCallbacks(cb)),
		mirror: rand.New(rand.NewSource(testSeed)),
	}
}

// nextDelay consumes the mirrored rand exactly like startLaneLocked does.
func (h *testHarness) nextDelay() time.Duration {
	return minWaitDelay + time.Duration(h.mirror.Int63n(int64(waitDelaySpread)))
}

// toMoving advances through the current lane's waiting phase so the clock
// sits exactly on the stimulus onset.
func (h *testHarness) toMoving() {
	h.m.Advance(h.nextDelay())
}

// stopAfter delivers the qualifying input exactly d after stimulus onset.
func (h *testHarness) stopAfter(d time.Duration) {
	h.m.Advance(d)
	h.sess.Input()
}

func TestSessionCompletesWithRoundedAverage(t *testing.T) {
	var trialsDone []TrialResult
	var completed *SessionResult
	h := newHarness(Callbacks{
		OnTrialDone: func(tr TrialResult) { trialsDone = append(trialsDone, tr) },
		OnCompleted: func(res SessionResult) { completed = &res },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	reactions := []time.Duration{
		200 * time.Millisecond, 210 * time.Millisecond, 220 * time.Millisecond,
		230 * time.Millisecond, 240 * time.Millisecond, 250 * time.Millisecond,
	}
	for i, d := range reactions {
		h.toMoving()
		h.stopAfter(d)
		if i < LaneCount-1 {
			h.m.Advance(interTrialPause)
		}
	}

	if completed == nil {
		t.Fatal("session never completed")
	}
	if completed.Terminal != TerminalCompleted {
		t.Fatalf("terminal = %v, want completed", completed.Terminal)
	}
	if completed.FailedAtLane != -1 {
		t.Fatalf("failedAtLane = %d, want -1", completed.FailedAtLane)
	}
	if completed.AverageMs != 225.00 {
		t.Fatalf("averageMs = %v, want 225.00", completed.AverageMs)
	}
	if len(trialsDone) != LaneCount {
		t.Fatalf("got %d trial callbacks, want %d", len(trialsDone), LaneCount)
	}
	for i, tr := range completed.Trials {
		if tr.Outcome != OutcomeStopped {
			t.Errorf("lane %d outcome = %v, want stopped", i, tr.Outcome)
		}
		want := float64(200 + 10*i)
		if tr.ReactionMs != want {
			t.Errorf("lane %d reaction = %v, want %v", i, tr.ReactionMs, want)
		}
	}

	// All handles must be released once terminal.
	if h.m.PendingTimers() != 0 || h.m.FrameSubscribers() != 0 {
		t.Fatalf("leaked handles: %d timers, %d frames",
			h.m.PendingTimers(), h.m.FrameSubscribers())
	}
}

func TestFalseStartDuringWaitingFailsWholeSession(t *testing.T) {
	var failed *SessionResult
	h := newHarness(Callbacks{
		OnFailed: func(res SessionResult) { failed = &res },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Two clean lanes, then an input during lane 2's waiting phase.
	for i := 0; i < 2; i++ {
		h.toMoving()
		h.stopAfter(150 * time.Millisecond)
		h.m.Advance(interTrialPause)
	}
	h.m.Advance(500 * time.Millisecond) // inside lane 2's waiting window
	h.sess.Input()

	if failed == nil {
		t.Fatal("session did not fail")
	}
	if failed.Terminal != TerminalFalseStart {
		t.Fatalf("terminal = %v, want false_start", failed.Terminal)
	}
	if failed.FailedAtLane != 2 {
		t.Fatalf("failedAtLane = %d, want 2", failed.FailedAtLane)
	}
	for lane := 3; lane < LaneCount; lane++ {
		if failed.Trials[lane].Outcome != OutcomePending {
			t.Errorf("lane %d ran after session failure", lane)
		}
	}

	// Nothing left scheduled, and further time passing changes nothing.
	if h.m.PendingTimers() != 0 {
		t.Fatalf("pending timers after failure: %d", h.m.PendingTimers())
	}
	h.m.Advance(10 * time.Second)
	res, ok := h.sess.Result()
	if !ok || res.Terminal != TerminalFalseStart {
		t.Fatal("terminal result changed after failure")
	}
}

func TestTimeoutAtExactBoundaryIsNeverStopped(t *testing.T) {
	var failed *SessionResult
	h := newHarness(Callbacks{
		OnFailed: func(res SessionResult) { failed = &res },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()
	h.m.Advance(growthWindow) // progress reaches exactly 1.0

	if failed == nil {
		t.Fatal("session did not fail")
	}
	if failed.Terminal != TerminalTimeout {
		t.Fatalf("terminal = %v, want timeout", failed.Terminal)
	}
	if failed.Trials[0].Outcome != OutcomeTimedOut {
		t.Fatalf("lane 0 outcome = %v, want timed_out", failed.Trials[0].Outcome)
	}
	if failed.Trials[0].ReactionMs != 0 {
		t.Fatal("timed-out lane must not carry a reaction time")
	}
}

func TestFirstInputWinsAndLaterInputsAreIgnored(t *testing.T) {
	var trialsDone []TrialResult
	h := newHarness(Callbacks{
		OnTrialDone: func(tr TrialResult) { trialsDone = append(trialsDone, tr) },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()
	h.stopAfter(300 * time.Millisecond)

	// Rapid repeat input in the same instant and during the pause.
	h.sess.Input()
	h.m.Advance(100 * time.Millisecond)
	h.sess.Input()

	if len(trialsDone) != 1 {
		t.Fatalf("got %d trial callbacks, want 1", len(trialsDone))
	}
	if trialsDone[0].ReactionMs != 300.00 {
		t.Fatalf("reaction = %v, want 300.00", trialsDone[0].ReactionMs)
	}
}

func TestInputAtExactWindowEndBeatsTimeout(t *testing.T) {
	var done *TrialResult
	h := newHarness(Callbacks{
		OnTrialDone: func(tr TrialResult) { done = &tr },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()

	// A one-shot timer fires before frame callbacks in the manual
	// scheduler, so the input lands with the clock exactly at
	// onset+growthWindow, before the frame can observe progress >= 1.
	h.m.ScheduleOnce(growthWindow, func() { h.sess.Input() })
	h.m.Advance(growthWindow)

	if done == nil {
		t.Fatal("lane did not stop")
	}
	if done.ReactionMs != 2000.00 {
		t.Fatalf("reaction = %v, want 2000.00", done.ReactionMs)
	}
}

func TestTimeoutWinsWhenInputArrivesAfterWindow(t *testing.T) {
	var failed *SessionResult
	stopped := false
	h := newHarness(Callbacks{
		OnTrialDone: func(TrialResult) { stopped = true },
		OnFailed:    func(res SessionResult) { failed = &res },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()

	h.m.ScheduleOnce(growthWindow+500*time.Microsecond, func() { h.sess.Input() })
	h.m.Advance(growthWindow + time.Millisecond)

	if stopped {
		t.Fatal("late input must not stop the lane")
	}
	if failed == nil || failed.Terminal != TerminalTimeout {
		t.Fatal("expected timeout failure")
	}
}

func TestAbortBackgroundsLiveSession(t *testing.T) {
	var failed []SessionResult
	h := newHarness(Callbacks{
		OnFailed: func(res SessionResult) { failed = append(failed, res) },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()
	h.m.Advance(700 * time.Millisecond)

	h.sess.Abort(TerminalBackgrounded)
	h.sess.Abort(TerminalBackgrounded) // idempotent

	if len(failed) != 1 {
		t.Fatalf("got %d failure callbacks, want 1", len(failed))
	}
	if failed[0].Terminal != TerminalBackgrounded {
		t.Fatalf("terminal = %v, want backgrounded", failed[0].Terminal)
	}
	if h.m.PendingTimers() != 0 || h.m.FrameSubscribers() != 0 {
		t.Fatal("abort must synchronously clear pending handles")
	}

	// A stale frame or timer must not resurrect the session.
	h.m.Advance(10 * time.Second)
	if len(failed) != 1 {
		t.Fatal("stale callback fired after abort")
	}
}

func TestAbortBeforeStartIsNoop(t *testing.T) {
	h := newHarness(Callbacks{})
	h.sess.Abort(TerminalBackgrounded)
	if _, ok := h.sess.Result(); ok {
		t.Fatal("unstarted session must have no result")
	}
	if h.sess.Live() {
		t.Fatal("unstarted session must not be live")
	}
}

func TestStartTwiceFails(t *testing.T) {
	h := newHarness(Callbacks{})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := h.sess.Start(); err != ErrAlreadyStarted {
		t.Fatalf("second start returned %v, want ErrAlreadyStarted", err)
	}
}

func TestProgressDerivesFromElapsedTime(t *testing.T) {
	var progress []float64
	h := newHarness(Callbacks{
		OnProgress: func(_ int, p float64) { progress = append(progress, p) },
	})
	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()

	// Irregular tick spacing: progress must track elapsed time, not the
	// number of ticks.
	h.m.Advance(500 * time.Millisecond)
	h.m.Tick()
	h.m.Tick()
	h.m.Advance(1000 * time.Millisecond)

	if len(progress) < 4 {
		t.Fatalf("expected at least 4 progress samples, got %d", len(progress))
	}
	last := progress[len(progress)-1]
	if last != 0.75 {
		t.Fatalf("progress after 1500ms = %v, want 0.75", last)
	}
	// The two zero-advance ticks must repeat the same value.
	if progress[1] != 0.25 || progress[2] != 0.25 {
		t.Fatalf("tick-count dependence detected: %v", progress[:3])
	}
}

func TestFocusMonitorAbortsOnBackgrounding(t *testing.T) {
	var failed *SessionResult
	h := newHarness(Callbacks{
		OnFailed: func(res SessionResult) { failed = &res },
	})

	var handler func(visible bool)
	src := FocusSourceFunc(func(fn func(visible bool)) clock.CancelFunc {
		handler = fn
		return func() { handler = nil }
	})
	mon := WatchFocus(src, h.sess)
	defer mon.Stop()

	// Backgrounding before start has no effect.
	handler(false)
	if _, ok := h.sess.Result(); ok {
		t.Fatal("monitor acted on idle session")
	}

	if err := h.sess.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	h.toMoving()
	handler(false)

	if failed == nil || failed.Terminal != TerminalBackgrounded {
		t.Fatal("expected backgrounded failure")
	}

	mon.Stop()
	if handler != nil {
		t.Fatal("stop must unsubscribe the monitor")
	}
}
