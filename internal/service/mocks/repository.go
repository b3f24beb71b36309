package mocks

import (
	"context"
	"errors"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/repository/models"
)

// MockAssessmentRepository is a mock implementation of the AssessmentRepository interface
// for testing the service layer.
type MockAssessmentRepository struct {
	SaveFunc                func(ctx context.Context, a assessment.Assessment) error
	GetRecentFunc           func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error)
	GetByIDFunc             func(ctx context.Context, id string) (assessment.Assessment, error)
	CountBySubjectFunc      func(ctx context.Context, subjectID string) (int64, error)
	GetCategoryAveragesFunc func(ctx context.Context, subjectID string) ([]models.CategoryAverage, error)
}

// Save implements the AssessmentRepository interface
func (m *MockAssessmentRepository) Save(ctx context.Context, a assessment.Assessment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, a)
	}
	return errors.New("SaveFunc not implemented")
}

// GetRecent implements the AssessmentRepository interface
func (m *MockAssessmentRepository) GetRecent(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, subjectID, limit)
	}
	return nil, errors.New("GetRecentFunc not implemented")
}

// GetByID implements the AssessmentRepository interface
func (m *MockAssessmentRepository) GetByID(ctx context.Context, id string) (assessment.Assessment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return assessment.Assessment{}, errors.New("GetByIDFunc not implemented")
}

// CountBySubject implements the AssessmentRepository interface
func (m *MockAssessmentRepository) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	if m.CountBySubjectFunc != nil {
		return m.CountBySubjectFunc(ctx, subjectID)
	}
	return 0, errors.New("CountBySubjectFunc not implemented")
}

// GetCategoryAverages implements the AssessmentRepository interface
func (m *MockAssessmentRepository) GetCategoryAverages(ctx context.Context, subjectID string) ([]models.CategoryAverage, error) {
	if m.GetCategoryAveragesFunc != nil {
		return m.GetCategoryAveragesFunc(ctx, subjectID)
	}
	return nil, errors.New("GetCategoryAveragesFunc not implemented")
}
