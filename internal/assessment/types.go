package assessment

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category is one of the five fixed DevOps dimensions.
type Category string

const (
	Collaboration Category = "Collaboration"
	Automation    Category = "Automation"
	Monitoring    Category = "Monitoring"
	Culture       Category = "Culture"
	Delivery      Category = "Delivery"
)

// Categories lists every category in canonical order. Iteration over scores always follows it.
var Categories = []Category{Collaboration, Automation, Monitoring, Culture, Delivery}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// MaturityLevel is the ordered classification derived from an overall score.
type MaturityLevel int

const (
	Novice MaturityLevel = iota
	Developing
	Intermediate
	Advanced
	Expert
)

var levelNames = [...]string{"Novice", "Developing", "Intermediate", "Advanced", "Expert"}

func (l MaturityLevel) String() string {
	if l < Novice || l > Expert {
		return fmt.Sprintf("MaturityLevel(%d)", int(l))
	}
	return levelNames[l]
}

// ParseMaturityLevel matches a level name case-insensitively.
func ParseMaturityLevel(s string) (MaturityLevel, bool) {
	s = strings.TrimSpace(s)
	for i, name := range levelNames {
		if strings.EqualFold(name, s) {
			return MaturityLevel(i), true
		}
	}
	return Novice, false
}

func (l MaturityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *MaturityLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseMaturityLevel(s)
	if !ok {
		return fmt.Errorf("unknown maturity level %q", s)
	}
	*l = parsed
	return nil
}

// Source records which path produced an assessment or question set.
type Source string

const (
	SourceAIAugmented Source = "ai_augmented"
	SourceFallback    Source = "fallback"
)

// CategoryScore is a clamped 0..100 score. Responses is the number of answers that fed it,
// so an unanswered category (Responses == 0) can be told apart from one that scored zero.
type CategoryScore struct {
	Category  Category `json:"category"`
	Value     float64  `json:"value"`
	Responses int      `json:"responses"`
}

type Recommendation struct {
	Area     string `json:"area"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Effort   string `json:"effort"`
}

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// DORAPrediction estimates the four DORA metrics for a maturity score.
type DORAPrediction struct {
	DeploymentFrequency string `json:"deployment_frequency"`
	LeadTime            string `json:"lead_time"`
	MTTR                string `json:"mttr"`
	ChangeFailureRate   string `json:"change_failure_rate"`
}

// Assessment is the immutable result of one submission.
type Assessment struct {
	ID                 string                     `json:"id"`
	SubjectID          string                     `json:"subject_id"`
	OverallScore       float64                    `json:"overall_score"`
	MaturityLevel      MaturityLevel              `json:"maturity_level"`
	CategoryScores     map[Category]CategoryScore `json:"category_scores"`
	Strengths          []string                   `json:"strengths"`
	ImprovementAreas   []string                   `json:"improvement_areas"`
	Recommendations    []Recommendation           `json:"recommendations"`
	DORAPrediction     DORAPrediction             `json:"dora_prediction"`
	NextSteps          []string                   `json:"next_steps"`
	TransformationTime string                     `json:"transformation_time"`
	RawResponses       map[string]int             `json:"raw_responses"`
	Source             Source                     `json:"source"`
	CreatedAt          time.Time                  `json:"created_at"`
}

// CategoryValue returns the score of c, or 0 when the category is absent.
func (a Assessment) CategoryValue(c Category) float64 {
	return a.CategoryScores[c].Value
}

type QuestionType string

const (
	QuestionMultiple QuestionType = "multiple"
	QuestionRating   QuestionType = "rating"
)

// Question is a question-bank entry. Multiple-choice options are ordered worst to best;
// rating questions carry no options and are answered on a 1-10 scale.
type Question struct {
	ID         string       `json:"id"`
	Category   Category     `json:"category"`
	Prompt     string       `json:"question"`
	Options    []string     `json:"options,omitempty"`
	Type       QuestionType `json:"type"`
	Weight     float64      `json:"weight"`
	Focus      string       `json:"focus,omitempty"`
	Difficulty string       `json:"difficulty,omitempty"`
}
