package seed

import (
	"fmt"
	"math/rand"

	"github.com/okian/reflex/internal/domain/score"
	"github.com/okian/reflex/internal/domain/validate"
)

// Reaction-time distribution bands in milliseconds. Most synthetic players
// land in the human 180-350 ms range, with a few outliers on both sides.
const (
	bandSharpMin   = 150.0
	bandSharpRange = 60.0
	bandTypicalMin = 210.0
	bandTypicalRng = 140.0
	bandSlowMin    = 350.0
	bandSlowRange  = 400.0
)

// adjectives and animals combine into plausible display names.
var (
	adjectives = []string{"quick", "calm", "sly", "bold", "lazy", "wired", "sharp", "zen"}
	animals    = []string{"fox", "owl", "lynx", "mole", "hare", "crow", "newt", "wolf"}
)

// Generate produces n valid submissions with varied skill levels.
func Generate(n int, rng *rand.Rand) []validate.Submission {
	subs := make([]validate.Submission, n)
	for i := range subs {
		subs[i] = generateOne(i, rng)
	}
	return subs
}

func generateOne(i int, rng *rand.Rand) validate.Submission {
	base := playerBaseline(rng)

	times := make([]float64, validate.TrialCount)
	for t := range times {
		// Per-trial jitter around the player's baseline.
		jitter := rng.NormFloat64() * 25
		ms := base + jitter
		if ms < validate.MinReactionMs {
			ms = validate.MinReactionMs
		}
		times[t] = score.Round(ms)
	}

	name := fmt.Sprintf("%s_%s_%d",
		adjectives[rng.Intn(len(adjectives))],
		animals[rng.Intn(len(animals))],
		i,
	)
	if len(name) > validate.MaxNameLen {
		name = name[:validate.MaxNameLen]
	}

	return validate.Submission{
		DisplayName:   name,
		AverageMs:     score.Average(times),
		ReactionTimes: times,
		ClientTag:     fmt.Sprintf("seed-%d", i),
	}
}

// playerBaseline draws a player's mean reaction time from three bands.
func playerBaseline(rng *rand.Rand) float64 {
	switch rng.Intn(10) {
	case 0:
		return bandSharpMin + rng.Float64()*bandSharpRange
	case 8, 9:
		return bandSlowMin + rng.Float64()*bandSlowRange
	default:
		return bandTypicalMin + rng.Float64()*bandTypicalRng
	}
}
