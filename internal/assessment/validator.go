package assessment

import (
	"maps"
	"math"
	"slices"
)

const (
	MinRating = 1
	MaxRating = 5
)

// CoreQuestions maps the standard questionnaire onto categories, three questions each.
var CoreQuestions = map[string]Category{
	"collaboration_tools":       Collaboration,
	"cross_team_communication":  Collaboration,
	"shared_responsibilities":   Collaboration,
	"ci_cd_pipeline":            Automation,
	"infrastructure_automation": Automation,
	"automated_testing":         Automation,
	"monitoring_alerting":       Monitoring,
	"observability":             Monitoring,
	"incident_response":         Monitoring,
	"psychological_safety":      Culture,
	"continuous_learning":       Culture,
	"failure_learning":          Culture,
	"deployment_frequency":      Delivery,
	"lead_time":                 Delivery,
	"customer_feedback":         Delivery,
}

// DefaultLookup returns the core questionnaire plus every entry of bank, so answers to
// personalized question sets score too.
func DefaultLookup(bank QuestionBank) map[string]Category {
	lookup := maps.Clone(CoreQuestions)
	for _, pool := range bank {
		for _, q := range pool {
			if _, ok := lookup[q.ID]; !ok {
				lookup[q.ID] = q.Category
			}
		}
	}
	return lookup
}

// Response is one validated answer.
type Response struct {
	QuestionID string
	Category   Category
	Rating     int
}

// ValidatedResponses is sorted by question id.
type ValidatedResponses []Response

// Ratings returns the validated answers as question_id -> rating.
func (v ValidatedResponses) Ratings() map[string]int {
	out := make(map[string]int, len(v))
	for _, r := range v {
		out[r.QuestionID] = r.Rating
	}
	return out
}

// Validator restricts a submission to known questions and checks the Likert range.
type Validator struct {
	lookup map[string]Category
}

func NewValidator(lookup map[string]Category) *Validator {
	if lookup == nil {
		lookup = CoreQuestions
	}
	return &Validator{lookup: maps.Clone(lookup)}
}

// Categorize returns the category a question id scores into.
func (v *Validator) Categorize(questionID string) (Category, bool) {
	c, ok := v.lookup[questionID]
	return c, ok
}

// Validate drops unknown question ids and rejects the first (by id) rating outside 1..5.
func (v *Validator) Validate(raw map[string]int) (ValidatedResponses, error) {
	ids := slices.Sorted(maps.Keys(raw))

	out := make(ValidatedResponses, 0, len(ids))
	for _, id := range ids {
		category, ok := v.lookup[id]
		if !ok {
			continue
		}
		rating := raw[id]
		if rating < MinRating || rating > MaxRating {
			return nil, &ValidationError{QuestionID: id, Rating: rating}
		}
		out = append(out, Response{QuestionID: id, Category: category, Rating: rating})
	}
	return out, nil
}

// NormalizeRating10 maps a 1-10 rating-type answer onto the 1..5 scale.
func NormalizeRating10(v int) int {
	if v < 1 {
		return MinRating
	}
	if v > 10 {
		return MaxRating
	}
	return int(math.Ceil(float64(v) / 2))
}
