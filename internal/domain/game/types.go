// Package game implements the reaction-trial engine: a six-lane sequencer
// that presents randomized stimuli, captures response latency against the
// monotonic clock, and enforces the session-level fail conditions.
package game

import "time"

// LaneCount is the number of sequential trials in one session.
const LaneCount = 6

// Domain timing constants.
const (
	// minWaitDelay and waitDelaySpread define the randomized stimulus
	// onset: uniform in [1000, 3000) ms.
	minWaitDelay    = 1000 * time.Millisecond
	waitDelaySpread = 2000 * time.Millisecond

	// growthWindow is the stimulus animation window; progress reaches 1
	// exactly growthWindow after onset and the lane times out.
	growthWindow = 2000 * time.Millisecond

	// interTrialPause separates a stopped lane from the next lane's
	// waiting phase. Cosmetic, not timing-critical.
	interTrialPause = 500 * time.Millisecond
)

// Outcome is the terminal disposition of a single trial.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeStopped
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStopped:
		return "stopped"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "pending"
	}
}

// Terminal is the session-level end state.
type Terminal int

const (
	// TerminalNone means the session has not finished.
	TerminalNone Terminal = iota
	TerminalCompleted
	TerminalFalseStart
	TerminalTimeout
	TerminalBackgrounded
)

func (t Terminal) String() string {
	switch t {
	case TerminalCompleted:
		return "completed"
	case TerminalFalseStart:
		return "false_start"
	case TerminalTimeout:
		return "timeout"
	case TerminalBackgrounded:
		return "backgrounded"
	default:
		return "in_progress"
	}
}

// Failure reports whether t is one of the failed end states.
func (t Terminal) Failure() bool {
	switch t {
	case TerminalFalseStart, TerminalTimeout, TerminalBackgrounded:
		return true
	default:
		return false
	}
}

// TrialResult is one lane's outcome. It is frozen once Outcome leaves
// OutcomePending.
type TrialResult struct {
	Lane          int
	StimulusOnset time.Duration
	Response      time.Duration
	ReactionMs    float64
	Outcome       Outcome
}

// SessionResult aggregates the six trials. AverageMs is only meaningful
// when Terminal is TerminalCompleted; FailedAtLane is -1 in that case.
type SessionResult struct {
	Trials       [LaneCount]TrialResult
	AverageMs    float64
	Terminal     Terminal
	FailedAtLane int
}
