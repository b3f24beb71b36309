package assessment

import (
	"context"
	"time"
)

// HistoryEntry is the compact view of a past assessment handed to AI services.
type HistoryEntry struct {
	AssessmentID   string               `json:"assessment_id"`
	OverallScore   float64              `json:"overall_score"`
	MaturityLevel  string               `json:"maturity_level"`
	CategoryScores map[Category]float64 `json:"category_scores"`
	CreatedAt      time.Time            `json:"created_at"`
}

// Summarize converts history for an AI request.
func Summarize(history []Assessment) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history))
	for _, a := range history {
		scores := make(map[Category]float64, len(a.CategoryScores))
		for c, s := range a.CategoryScores {
			scores[c] = s.Value
		}
		out = append(out, HistoryEntry{
			AssessmentID:   a.ID,
			OverallScore:   a.OverallScore,
			MaturityLevel:  a.MaturityLevel.String(),
			CategoryScores: scores,
			CreatedAt:      a.CreatedAt,
		})
	}
	return out
}

// AugmentRequest is the input of the AI Assessment Service.
type AugmentRequest struct {
	SubjectID string         `json:"user_id"`
	Responses map[string]int `json:"assessment_responses"`
	History   []HistoryEntry `json:"user_history"`
}

// Payload is a parsed AI assessment. Optional fields are nil or empty when the service
// omitted them; the engine resolves every default.
type Payload struct {
	MaturityScore      *float64
	MaturityLevel      string
	CategoryScores     map[Category]float64
	Strengths          []string
	ImprovementAreas   []string
	Recommendations    []Recommendation
	DORAPrediction     *DORAPrediction
	NextSteps          []string
	TransformationTime string
}

// Augmenter is the AI Assessment Service. Implementations make one attempt and report
// every failure as an *AugmentationFailure.
type Augmenter interface {
	Assess(ctx context.Context, req AugmentRequest) (Payload, error)
}

// QuestionRequest is the input of the AI Question Service.
type QuestionRequest struct {
	SubjectID  string         `json:"user_id"`
	SkillLevel string         `json:"current_level"`
	History    []HistoryEntry `json:"user_history"`
	FocusAreas []Category     `json:"focus_areas,omitempty"`
	Count      int            `json:"question_count"`
}

// QuestionGenerator is the AI Question Service, with the same failure contract as Augmenter.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error)
}

// Observer receives engine outcomes, typically to record metrics.
type Observer interface {
	AugmentationFailed(kind FailureKind)
	AssessmentCompleted(source Source, elapsed time.Duration)
	QuestionsSelected(source Source, count int)
}

type nopObserver struct{}

func (nopObserver) AugmentationFailed(FailureKind) {}
func (nopObserver) AssessmentCompleted(Source, time.Duration) {}
func (nopObserver) QuestionsSelected(Source, int) {}
