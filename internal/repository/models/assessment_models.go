package models

// AssessmentRow is one stored assessment. Document is the full record as JSON; the other
// columns exist for filtering and ordering.
type AssessmentRow struct {
	ID            string
	SubjectID     string
	OverallScore  float64
	MaturityLevel string
	Source        string
	Document      []byte
	CreatedAt     int64
}

type CategoryScoreRow struct {
	AssessmentID string
	Category     string
	Score        float64
	Responses    int
}

// CategoryAverage is a category's mean score over a subject's assessments.
type CategoryAverage struct {
	Category    string
	Average     float64
	Assessments int64
}
