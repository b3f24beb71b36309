package aiclient

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/godilite/maturity-engine/internal/assessment"
)

// Completer sends one system + user prompt pair to a language model and returns the raw
// text reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMService implements the AI Assessment and Question services on top of a chat model.
type LLMService struct {
	completer Completer
	logger    *zap.Logger
}

// NewLLMService panics if completer is nil.
func NewLLMService(completer Completer, logger *zap.Logger) *LLMService {
	if completer == nil {
		panic("completer cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMService{completer: completer, logger: logger.Named("llm-service")}
}

// Assess implements assessment.Augmenter.
func (s *LLMService) Assess(ctx context.Context, req assessment.AugmentRequest) (assessment.Payload, error) {
	reply, err := s.completer.Complete(ctx, systemPrompt, assessmentPrompt(req))
	if err != nil {
		return assessment.Payload{}, classifyCallError(err)
	}
	s.logger.Debug("assessment reply received", zap.String("subject_id", req.SubjectID), zap.Int("bytes", len(reply)))
	return ParsePayload([]byte(reply))
}

// GenerateQuestions implements assessment.QuestionGenerator.
func (s *LLMService) GenerateQuestions(ctx context.Context, req assessment.QuestionRequest) ([]assessment.Question, error) {
	reply, err := s.completer.Complete(ctx, systemPrompt, questionPrompt(req))
	if err != nil {
		return nil, classifyCallError(err)
	}
	s.logger.Debug("question reply received", zap.String("subject_id", req.SubjectID), zap.Int("bytes", len(reply)))
	return ParseQuestions([]byte(reply))
}

func classifyCallError(err error) error {
	if f := (*assessment.AugmentationFailure)(nil); errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return assessment.NewFailure(assessment.FailureTimeout, err)
	}
	return assessment.NewFailure(assessment.FailureTransport, err)
}
