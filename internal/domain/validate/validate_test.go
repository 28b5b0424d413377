package validate_test

import (
	"math"
	"strings"
	"testing"

	"github.com/okian/reflex/internal/domain/validate"
	. "github.com/smartystreets/goconvey/convey"
)

func validSubmission() validate.Submission {
	return validate.Submission{
		DisplayName:   "speedy_fox",
		AverageMs:     225.00,
		ReactionTimes: []float64{200.00, 210.00, 220.00, 230.00, 240.00, 250.00},
		ClientTag:     "browser-abc123",
	}
}

func hasReason(r validate.Result, fragment string) bool {
	for _, reason := range r.Reasons {
		if strings.Contains(reason, fragment) {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	Convey("Given a well-formed submission", t, func() {
		sub := validSubmission()

		Convey("It is accepted with no reasons", func() {
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeTrue)
			So(res.Reasons, ShouldBeEmpty)
		})

		Convey("When the display name is too short", func() {
			sub.DisplayName = "ab"
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "at least 3 characters"), ShouldBeTrue)
		})

		Convey("When the display name is too long", func() {
			sub.DisplayName = strings.Repeat("a", 21)
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "at most 20 characters"), ShouldBeTrue)
		})

		Convey("When the display name has illegal characters", func() {
			for _, name := range []string{"has space", "semi;colon", "ünïcode", "dash-ed"} {
				sub.DisplayName = name
				res := validate.Validate(sub)
				So(res.Accepted, ShouldBeFalse)
				So(hasReason(res, "letters, digits and underscores"), ShouldBeTrue)
			}
		})

		Convey("When the reaction time count is wrong", func() {
			sub.ReactionTimes = sub.ReactionTimes[:5]
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "exactly 6 reaction times"), ShouldBeTrue)
		})

		Convey("When one entry is below the plausibility floor", func() {
			sub.ReactionTimes = []float64{90, 200, 200, 200, 200, 200}
			sub.AverageMs = 181.67
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "plausibility floor"), ShouldBeTrue)
		})

		Convey("When entries sit exactly on the boundaries", func() {
			sub.ReactionTimes = []float64{100.00, 100.00, 100.00, 9999.95, 9999.95, 9999.95}
			sub.AverageMs = 5049.975
			res := validate.Validate(sub)
			// 100.0 is inclusive, 9999.95 is below the exclusive ceiling.
			So(hasReason(res, "plausibility floor"), ShouldBeFalse)
			So(hasReason(res, "ceiling"), ShouldBeFalse)

			sub.ReactionTimes[0] = 99.999
			res = validate.Validate(sub)
			So(hasReason(res, "plausibility floor"), ShouldBeTrue)

			sub.ReactionTimes[0] = 10000.0
			res = validate.Validate(sub)
			So(hasReason(res, "ceiling"), ShouldBeTrue)
		})

		Convey("When an entry is not finite", func() {
			sub.ReactionTimes[2] = math.NaN()
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "not a finite number"), ShouldBeTrue)
		})

		Convey("When the average is out of range", func() {
			for _, avg := range []float64{0, -5, 10000, math.Inf(1), math.NaN()} {
				sub = validSubmission()
				sub.AverageMs = avg
				res := validate.Validate(sub)
				So(res.Accepted, ShouldBeFalse)
				So(hasReason(res, "between 0 and"), ShouldBeTrue)
			}
		})

		Convey("When the average does not match the entries", func() {
			sub.AverageMs = 150.00 // real mean is 225.00
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(hasReason(res, "does not match"), ShouldBeTrue)
		})

		Convey("A client-computed rounded average within half a grid step passes", func() {
			sub.ReactionTimes = []float64{100.05, 100.05, 100.05, 100.05, 100.05, 100.10}
			sub.AverageMs = 100.05 // rounded mean of 100.058333...
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeTrue)
		})

		Convey("Multiple violations are all reported", func() {
			sub.DisplayName = "x"
			sub.ReactionTimes = []float64{50, 200, 200, 200, 200, 200}
			sub.AverageMs = -1
			res := validate.Validate(sub)
			So(res.Accepted, ShouldBeFalse)
			So(len(res.Reasons), ShouldBeGreaterThanOrEqualTo, 3)
		})
	})
}
