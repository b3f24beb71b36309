package mocks

import (
	"context"
	"errors"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/service"
)

// MockAssessmentService is a mock implementation of the AssessmentService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockAssessmentService struct {
	SubmitFunc            func(ctx context.Context, subjectID string, responses map[string]int) (assessment.Outcome, error)
	GetAssessmentFunc     func(ctx context.Context, id string) (assessment.Assessment, error)
	SummaryFunc           func(ctx context.Context, subjectID string) (service.Summary, error)
	GenerateQuestionsFunc func(ctx context.Context, req service.QuestionRequest) (assessment.QuestionSet, error)
	AnalyzeProgressFunc   func(ctx context.Context, subjectID string) (assessment.ProgressReport, error)
}

// Submit implements the AssessmentService interface
func (m *MockAssessmentService) Submit(ctx context.Context, subjectID string, responses map[string]int) (assessment.Outcome, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, subjectID, responses)
	}
	return assessment.Outcome{}, errors.New("SubmitFunc not implemented")
}

// GetAssessment implements the AssessmentService interface
func (m *MockAssessmentService) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	if m.GetAssessmentFunc != nil {
		return m.GetAssessmentFunc(ctx, id)
	}
	return assessment.Assessment{}, errors.New("GetAssessmentFunc not implemented")
}

// Summary implements the AssessmentService interface
func (m *MockAssessmentService) Summary(ctx context.Context, subjectID string) (service.Summary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, subjectID)
	}
	return service.Summary{}, errors.New("SummaryFunc not implemented")
}

// GenerateQuestions implements the AssessmentService interface
func (m *MockAssessmentService) GenerateQuestions(ctx context.Context, req service.QuestionRequest) (assessment.QuestionSet, error) {
	if m.GenerateQuestionsFunc != nil {
		return m.GenerateQuestionsFunc(ctx, req)
	}
	return assessment.QuestionSet{}, errors.New("GenerateQuestionsFunc not implemented")
}

// AnalyzeProgress implements the AssessmentService interface
func (m *MockAssessmentService) AnalyzeProgress(ctx context.Context, subjectID string) (assessment.ProgressReport, error) {
	if m.AnalyzeProgressFunc != nil {
		return m.AnalyzeProgressFunc(ctx, subjectID)
	}
	return assessment.ProgressReport{}, errors.New("AnalyzeProgressFunc not implemented")
}
