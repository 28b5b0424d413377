package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/okian/reflex/internal/domain/clock"
	"github.com/okian/reflex/internal/domain/score"
)

// trialState tracks the sequencer position within the current lane.
type trialState int

const (
	stateIdle trialState = iota
	stateWaiting
	stateMoving
	stateStopped
)

// Callbacks are the host hooks the session reports through. All callbacks
// run outside the session lock, so a host may call back into the session.
type Callbacks struct {
	// OnStimulus fires when a lane enters Moving.
	OnStimulus func(lane int)
	// OnProgress fires every frame while a lane is Moving, with the
	// growth progress in [0, 1).
	OnProgress func(lane int, progress float64)
	// OnTrialDone fires when a lane stops with a recorded reaction time.
	OnTrialDone func(TrialResult)
	// OnCompleted fires when all six lanes stopped.
	OnCompleted func(SessionResult)
	// OnFailed fires on false start, timeout, or abort.
	OnFailed func(SessionResult)
}

// Session runs six trials in strict sequence on a cooperative, tick-driven
// model: one-shot timers drive Waiting, frame callbacks drive Moving, and a
// single mutex serializes every transition. Cancellation bumps an epoch
// counter so a stale timer or frame callback observes the bump and becomes
// a no-op.
type Session struct {
	mu    sync.Mutex
	clk   clock.Clock
	sched clock.Scheduler
	rng   *rand.Rand
	cb    Callbacks

	started  bool
	lane     int
	state    trialState
	terminal Terminal
	failedAt int
	avgMs    float64
	trials   [LaneCount]TrialResult

	epoch       int
	cancelWait  clock.CancelFunc
	cancelFrame clock.CancelFunc
	cancelPause clock.CancelFunc
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithCallbacks sets the host hooks.
func WithCallbacks(cb Callbacks) Option {
	return func(s *Session) { s.cb = cb }
}

// WithRand sets the randomness source for stimulus-onset delays.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSession creates a session bound to a clock and scheduler.
func NewSession(clk clock.Clock, sched clock.Scheduler, opts ...Option) *Session {
	s := &Session{
		clk:      clk,
		sched:    sched,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // stimulus jitter, not security
		failedAt: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins lane 0. It may be called once per session.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	for i := range s.trials {
		s.trials[i] = TrialResult{Lane: i}
	}
	s.startLaneLocked(0)
	s.mu.Unlock()
	return nil
}

// Input delivers the qualifying input. During Waiting it fails the whole
// session (false start); during Moving the first input stops the lane and
// later inputs are ignored; in any other state it is a no-op.
func (s *Session) Input() {
	s.mu.Lock()
	if !s.started || s.terminal != TerminalNone {
		s.mu.Unlock()
		return
	}
	var notify func()
	switch s.state {
	case stateWaiting:
		notify = s.failLocked(TerminalFalseStart)
	case stateMoving:
		at := s.clk.Now()
		// Timeout wins only when progress reached 1 strictly before
		// the input timestamp; both sides are compared numerically.
		if at-s.trials[s.lane].StimulusOnset > growthWindow {
			notify = s.timeoutLocked()
		} else {
			notify = s.stopLocked(at)
		}
	default:
		// Between lanes or already stopped: ignored.
	}
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Abort terminates a live session with the given failure reason,
// defaulting to backgrounded for non-failure values. Idempotent once the
// session is terminal; a no-op before Start.
func (s *Session) Abort(reason Terminal) {
	if !reason.Failure() {
		reason = TerminalBackgrounded
	}
	s.mu.Lock()
	if !s.started || s.terminal != TerminalNone {
		s.mu.Unlock()
		return
	}
	notify := s.failLocked(reason)
	s.mu.Unlock()
	notify()
}

// Live reports whether a session is started and not yet terminal.
func (s *Session) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && s.terminal == TerminalNone
}

// Result returns the final session result once the session is terminal.
func (s *Session) Result() (SessionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal == TerminalNone {
		return SessionResult{}, false
	}
	return s.resultLocked(), true
}

func (s *Session) startLaneLocked(lane int) {
	s.lane = lane
	s.state = stateWaiting
	s.trials[lane] = TrialResult{Lane: lane}
	delay := minWaitDelay + time.Duration(s.rng.Int63n(int64(waitDelaySpread)))
	e := s.epoch
	s.cancelWait = s.sched.ScheduleOnce(delay, func() { s.onWaitElapsed(e) })
}

// onWaitElapsed moves the current lane from Waiting to Moving.
func (s *Session) onWaitElapsed(e int) {
	s.mu.Lock()
	if e != s.epoch || s.state != stateWaiting {
		s.mu.Unlock()
		return
	}
	s.cancelWait = nil
	s.state = stateMoving
	s.trials[s.lane].StimulusOnset = s.clk.Now()
	lane := s.lane
	s.cancelFrame = s.sched.EveryFrame(func() { s.onFrame(e) })
	onStimulus := s.cb.OnStimulus
	s.mu.Unlock()
	if onStimulus != nil {
		onStimulus(lane)
	}
}

// onFrame recomputes growth progress from elapsed time, never tick count,
// and resolves the timeout when progress reaches 1 with no input recorded.
func (s *Session) onFrame(e int) {
	s.mu.Lock()
	if e != s.epoch || s.state != stateMoving {
		s.mu.Unlock()
		return
	}
	now := s.clk.Now()
	onset := s.trials[s.lane].StimulusOnset
	p := progressAt(now, onset)
	if p >= 1 {
		notify := s.timeoutLocked()
		s.mu.Unlock()
		notify()
		return
	}
	lane := s.lane
	onProgress := s.cb.OnProgress
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(lane, p)
	}
}

// stopLocked records the qualifying input for the current lane and either
// schedules the next lane or completes the session.
func (s *Session) stopLocked(at time.Duration) func() {
	s.state = stateStopped
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	tr := &s.trials[s.lane]
	tr.Response = at
	tr.ReactionMs = score.Round(float64(at-tr.StimulusOnset) / float64(time.Millisecond))
	tr.Outcome = OutcomeStopped
	done := *tr
	onTrialDone := s.cb.OnTrialDone

	if s.lane == LaneCount-1 {
		times := make([]float64, LaneCount)
		for i := range s.trials {
			times[i] = s.trials[i].ReactionMs
		}
		s.avgMs = score.Average(times)
		s.terminal = TerminalCompleted
		s.failedAt = -1
		s.epoch++
		res := s.resultLocked()
		onCompleted := s.cb.OnCompleted
		return func() {
			if onTrialDone != nil {
				onTrialDone(done)
			}
			if onCompleted != nil {
				onCompleted(res)
			}
		}
	}

	e := s.epoch
	s.cancelPause = s.sched.ScheduleOnce(interTrialPause, func() { s.onPauseElapsed(e) })
	return func() {
		if onTrialDone != nil {
			onTrialDone(done)
		}
	}
}

// onPauseElapsed starts the next lane after the inter-trial pause.
func (s *Session) onPauseElapsed(e int) {
	s.mu.Lock()
	if e != s.epoch || s.state != stateStopped || s.terminal != TerminalNone {
		s.mu.Unlock()
		return
	}
	s.cancelPause = nil
	s.startLaneLocked(s.lane + 1)
	s.mu.Unlock()
}

// timeoutLocked resolves the current lane as timed out and fails the
// session.
func (s *Session) timeoutLocked() func() {
	s.trials[s.lane].Outcome = OutcomeTimedOut
	return s.failLocked(TerminalTimeout)
}

// failLocked terminates the session. Pending timer and frame handles are
// cancelled synchronously and the epoch is bumped so any callback already
// in flight becomes a no-op.
func (s *Session) failLocked(reason Terminal) func() {
	s.cancelPendingLocked()
	s.epoch++
	s.terminal = reason
	s.failedAt = s.lane
	res := s.resultLocked()
	onFailed := s.cb.OnFailed
	return func() {
		if onFailed != nil {
			onFailed(res)
		}
	}
}

func (s *Session) cancelPendingLocked() {
	if s.cancelWait != nil {
		s.cancelWait()
		s.cancelWait = nil
	}
	if s.cancelFrame != nil {
		s.cancelFrame()
		s.cancelFrame = nil
	}
	if s.cancelPause != nil {
		s.cancelPause()
		s.cancelPause = nil
	}
}

func (s *Session) resultLocked() SessionResult {
	return SessionResult{
		Trials:       s.trials,
		AverageMs:    s.avgMs,
		Terminal:     s.terminal,
		FailedAtLane: s.failedAt,
	}
}

// progressAt is the growth function: clamp((now-onset)/growthWindow, 0, 1).
func progressAt(now, onset time.Duration) float64 {
	if now <= onset {
		return 0
	}
	p := float64(now-onset) / float64(growthWindow)
	if p > 1 {
		return 1
	}
	return p
}
