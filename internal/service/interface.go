package service

import (
	"context"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/repository/models"
)

// AssessmentRepository defines the storage operations the service needs.
type AssessmentRepository interface {
	Save(ctx context.Context, a assessment.Assessment) error
	GetRecent(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error)
	GetByID(ctx context.Context, id string) (assessment.Assessment, error)
	CountBySubject(ctx context.Context, subjectID string) (int64, error)
	GetCategoryAverages(ctx context.Context, subjectID string) ([]models.CategoryAverage, error)
}
