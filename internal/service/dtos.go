package service

import "github.com/godilite/maturity-engine/internal/assessment"

const (
	notAssessed = "Not Assessed"
	noCategory  = "None"
)

type Summary struct {
	SubjectID         string                  `json:"subject_id"`
	TotalAssessments  int64                   `json:"total_assessments"`
	LatestScore       float64                 `json:"latest_score"`
	LatestLevel       string                  `json:"latest_level"`
	Improvement       float64                 `json:"improvement"`
	StrongestCategory string                  `json:"strongest_category"`
	CategoryAverages  map[string]float64      `json:"category_averages"`
	Recent            []assessment.Assessment `json:"recent_assessments"`
}

type QuestionRequest struct {
	SubjectID  string
	Level      *assessment.MaturityLevel
	Count      int
	FocusAreas []assessment.Category
}
