package assessment

import "math"

const (
	MinScore = 0.0
	MaxScore = 100.0

	// pointsPerStep rescales a 1..5 rating linearly onto 0..100.
	pointsPerStep = 25.0
)

// Maturity thresholds, lower bound inclusive.
const (
	developingThreshold   = 35.0
	intermediateThreshold = 55.0
	advancedThreshold     = 70.0
	expertThreshold       = 85.0
)

// Scores is the deterministic scoring of one validated submission.
type Scores struct {
	Categories map[Category]CategoryScore
	Overall    float64
}

// Score averages the rescaled ratings per category and then averages the five categories
// with equal weight. A category without responses scores 0.
func Score(responses ValidatedResponses) Scores {
	sums := make(map[Category]float64, len(Categories))
	counts := make(map[Category]int, len(Categories))
	for _, r := range responses {
		sums[r.Category] += float64(r.Rating-MinRating) * pointsPerStep
		counts[r.Category]++
	}

	out := Scores{Categories: make(map[Category]CategoryScore, len(Categories))}
	var total float64
	for _, c := range Categories {
		var value float64
		if n := counts[c]; n > 0 {
			value = sums[c] / float64(n)
		}
		value = Clamp(value)
		out.Categories[c] = CategoryScore{Category: c, Value: value, Responses: counts[c]}
		total += value
	}
	out.Overall = Clamp(total / float64(len(Categories)))
	return out
}

// Classify maps an overall score to its maturity level. Input is clamped first, so every
// real value (NaN included) classifies.
func Classify(score float64) MaturityLevel {
	score = Clamp(score)
	switch {
	case score >= expertThreshold:
		return Expert
	case score >= advancedThreshold:
		return Advanced
	case score >= intermediateThreshold:
		return Intermediate
	case score >= developingThreshold:
		return Developing
	default:
		return Novice
	}
}

// Clamp bounds v to [0,100]. NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

// InRange reports whether v is a usable score without clamping.
func InRange(v float64) bool {
	return !math.IsNaN(v) && v >= MinScore && v <= MaxScore
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
