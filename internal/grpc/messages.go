package grpc

import (
	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/service"
)

type SubmitAssessmentRequest struct {
	SubjectID string         `json:"subject_id"`
	Responses map[string]int `json:"responses"`
}

type SubmitAssessmentResponse struct {
	Assessment assessment.Assessment  `json:"assessment"`
	Trend      assessment.TrendResult `json:"trend"`
}

type GetAssessmentRequest struct {
	AssessmentID string `json:"assessment_id"`
}

type GetAssessmentResponse struct {
	Assessment assessment.Assessment `json:"assessment"`
}

type SubjectRequest struct {
	SubjectID string `json:"subject_id"`
}

type GetSubjectSummaryResponse struct {
	Summary service.Summary `json:"summary"`
}

// GenerateQuestionsRequest leaves Level empty to use the subject's current level.
type GenerateQuestionsRequest struct {
	SubjectID  string   `json:"subject_id"`
	Level      string   `json:"level,omitempty"`
	Count      int      `json:"count,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

type GenerateQuestionsResponse struct {
	QuestionSet assessment.QuestionSet `json:"question_set"`
}

type AnalyzeProgressResponse struct {
	Progress assessment.ProgressReport `json:"progress"`
}
