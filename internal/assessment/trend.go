package assessment

import (
	"fmt"
	"math"
)

// trendDeadZone filters scoring jitter between runs: changes within ±5 points are stable.
const trendDeadZone = 5.0

const rapidProgress = 10.0

type TrendDirection string

const (
	TrendBaseline         TrendDirection = "baseline"
	TrendImproving        TrendDirection = "improving"
	TrendStable           TrendDirection = "stable"
	TrendDeclining        TrendDirection = "declining"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// TrendResult compares a new score with the most recent prior assessment.
type TrendResult struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
	Message   string         `json:"message"`
}

// direction classifies an already rounded delta so that float noise from averaging cannot
// push an exact ±5 change out of the dead zone.
func direction(delta float64) TrendDirection {
	switch {
	case delta > trendDeadZone:
		return TrendImproving
	case delta < -trendDeadZone:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// AnalyzeTrend compares current against history[0], the newest prior assessment.
func AnalyzeTrend(current float64, history []Assessment) TrendResult {
	if len(history) == 0 {
		return TrendResult{Direction: TrendBaseline, Message: "First assessment - establishing baseline"}
	}

	delta := round1(current - history[0].OverallScore)
	result := TrendResult{Direction: direction(delta), Delta: delta}
	switch result.Direction {
	case TrendImproving:
		result.Message = fmt.Sprintf("Great progress! You've improved by %.1f points", delta)
	case TrendDeclining:
		result.Message = fmt.Sprintf("Score decreased by %.1f points - let's focus on improvement areas", math.Abs(delta))
	default:
		result.Message = fmt.Sprintf("Maintaining steady progress (%+.1f points) - consistency is key", delta)
	}
	return result
}

type ProgressRate string

const (
	ProgressSteady ProgressRate = "steady"
	ProgressRapid  ProgressRate = "rapid"
)

// ProgressReport summarizes movement across a subject's recent history.
type ProgressReport struct {
	Direction       TrendDirection `json:"direction"`
	RecentChange    float64        `json:"recent_change"`
	OverallChange   float64        `json:"overall_change"`
	ProgressRate    ProgressRate   `json:"progress_rate,omitempty"`
	Message         string         `json:"message"`
	AssessmentCount int            `json:"assessment_count"`
}

// AnalyzeProgress reads history newest first. The recent change is between the two newest
// records and the overall change spans newest to oldest.
func AnalyzeProgress(history []Assessment) ProgressReport {
	if len(history) < 2 {
		return ProgressReport{
			Direction:       TrendInsufficientData,
			Message:         "Need at least 2 assessments to analyze trends",
			AssessmentCount: len(history),
		}
	}

	newest := history[0].OverallScore
	recent := round1(newest - history[1].OverallScore)
	overall := round1(newest - history[len(history)-1].OverallScore)

	report := ProgressReport{
		Direction:       direction(recent),
		RecentChange:    recent,
		OverallChange:   overall,
		ProgressRate:    ProgressSteady,
		AssessmentCount: len(history),
	}
	if math.Abs(recent) >= rapidProgress {
		report.ProgressRate = ProgressRapid
	}
	switch report.Direction {
	case TrendImproving:
		report.Message = fmt.Sprintf("Great progress! Recent improvement of %.1f points", recent)
	case TrendDeclining:
		report.Message = fmt.Sprintf("Recent decline of %.1f points - focus on fundamentals", math.Abs(recent))
	default:
		report.Message = "Maintaining steady progress"
	}
	return report
}
