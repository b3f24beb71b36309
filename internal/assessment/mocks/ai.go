package mocks

import (
	"context"
	"errors"

	"github.com/godilite/maturity-engine/internal/assessment"
)

// MockAugmenter is a function-based mock of the AI Assessment Service.
type MockAugmenter struct {
	AssessFunc func(ctx context.Context, req assessment.AugmentRequest) (assessment.Payload, error)
}

// Assess implements assessment.Augmenter
func (m *MockAugmenter) Assess(ctx context.Context, req assessment.AugmentRequest) (assessment.Payload, error) {
	if m.AssessFunc != nil {
		return m.AssessFunc(ctx, req)
	}
	return assessment.Payload{}, errors.New("AssessFunc not implemented")
}

// MockQuestionGenerator is a function-based mock of the AI Question Service.
type MockQuestionGenerator struct {
	GenerateQuestionsFunc func(ctx context.Context, req assessment.QuestionRequest) ([]assessment.Question, error)
}

// GenerateQuestions implements assessment.QuestionGenerator
func (m *MockQuestionGenerator) GenerateQuestions(ctx context.Context, req assessment.QuestionRequest) ([]assessment.Question, error) {
	if m.GenerateQuestionsFunc != nil {
		return m.GenerateQuestionsFunc(ctx, req)
	}
	return nil, errors.New("GenerateQuestionsFunc not implemented")
}
