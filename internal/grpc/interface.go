package grpc

import (
	"context"
	"time"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

type AssessmentService interface {
	Submit(ctx context.Context, subjectID string, responses map[string]int) (assessment.Outcome, error)
	GetAssessment(ctx context.Context, id string) (assessment.Assessment, error)
	Summary(ctx context.Context, subjectID string) (service.Summary, error)
	GenerateQuestions(ctx context.Context, req service.QuestionRequest) (assessment.QuestionSet, error)
	AnalyzeProgress(ctx context.Context, subjectID string) (assessment.ProgressReport, error)
}
