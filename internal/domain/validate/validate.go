// Package validate implements the score legitimacy checks a submission
// must pass before it may enter the ranking engine. Validation is pure:
// no I/O, no state, same verdict for the same submission every time.
package validate

import (
	"fmt"
	"math"
	"regexp"

	"github.com/okian/reflex/internal/domain/score"
)

// Validation bounds.
const (
	MinNameLen = 3
	MaxNameLen = 20

	// TrialCount is the required number of reaction times.
	TrialCount = 6

	// MinReactionMs rejects biologically implausible entries.
	MinReactionMs = 100.0
	// MaxReactionMs rejects timeout artifacts.
	MaxReactionMs = 10000.0

	// averageTolerance is half a rounding-grid step: the recomputed
	// average and the submitted one must land on the same grid point.
	averageTolerance = score.Grid / 2
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Submission is the value crossing the system boundary.
type Submission struct {
	DisplayName   string
	AverageMs     float64
	ReactionTimes []float64
	// ClientTag identifies the submitting device for abuse-rate
	// bucketing only; it carries no identity and is never validated
	// beyond presence.
	ClientTag string
}

// Result is the validator verdict. Reasons lists every violated rule in
// rule order; an accepted submission has none.
type Result struct {
	Accepted bool
	Reasons  []string
}

// Validate checks a submission against all legitimacy rules and returns
// every violation found.
func Validate(sub Submission) Result {
	var reasons []string

	// Rule 1: display name shape.
	switch {
	case len(sub.DisplayName) < MinNameLen:
		reasons = append(reasons, fmt.Sprintf("display name must be at least %d characters", MinNameLen))
	case len(sub.DisplayName) > MaxNameLen:
		reasons = append(reasons, fmt.Sprintf("display name must be at most %d characters", MaxNameLen))
	case !namePattern.MatchString(sub.DisplayName):
		reasons = append(reasons, "display name may only contain letters, digits and underscores")
	}

	// Rule 2: exactly six reaction times.
	if len(sub.ReactionTimes) != TrialCount {
		reasons = append(reasons, fmt.Sprintf("exactly %d reaction times are required", TrialCount))
		return Result{Accepted: false, Reasons: reasons}
	}

	// Rule 3: each entry finite and within the plausible band.
	entriesOK := true
	for i, rt := range sub.ReactionTimes {
		switch {
		case math.IsNaN(rt) || math.IsInf(rt, 0):
			reasons = append(reasons, fmt.Sprintf("reaction time %d is not a finite number", i))
			entriesOK = false
		case rt < MinReactionMs:
			reasons = append(reasons, fmt.Sprintf("reaction time %d is below the %v ms plausibility floor", i, MinReactionMs))
			entriesOK = false
		case rt >= MaxReactionMs:
			reasons = append(reasons, fmt.Sprintf("reaction time %d is at or above the %v ms ceiling", i, MaxReactionMs))
			entriesOK = false
		}
	}

	// Rule 4: average in range and consistent with the entries. The
	// average is recomputed here rather than trusted from the client.
	if sub.AverageMs <= 0 || sub.AverageMs >= MaxReactionMs ||
		math.IsNaN(sub.AverageMs) || math.IsInf(sub.AverageMs, 0) {
		reasons = append(reasons, fmt.Sprintf("average must be between 0 and %v ms", MaxReactionMs))
	} else if entriesOK {
		recomputed := score.Average(sub.ReactionTimes)
		if math.Abs(sub.AverageMs-recomputed) > averageTolerance {
			reasons = append(reasons, "average does not match the submitted reaction times")
		}
	}

	return Result{Accepted: len(reasons) == 0, Reasons: reasons}
}
