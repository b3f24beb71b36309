package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/godilite/maturity-engine/internal/assessment"
	aimocks "github.com/godilite/maturity-engine/internal/assessment/mocks"
	"github.com/godilite/maturity-engine/internal/repository"
	"github.com/godilite/maturity-engine/internal/repository/models"
	"github.com/godilite/maturity-engine/internal/service/mocks"
)

func newTestEngine() *assessment.Engine {
	return assessment.NewEngine(
		assessment.WithClock(func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }),
		assessment.WithIDGenerator(func() string { return "new-id" }),
	)
}

func submission() map[string]int {
	return map[string]int{
		"collaboration_tools":  3,
		"ci_cd_pipeline":       2,
		"monitoring_alerting":  4,
		"psychological_safety": 3,
		"deployment_frequency": 2,
	}
}

func scored(id string, score float64, values map[assessment.Category]float64) assessment.Assessment {
	cs := make(map[assessment.Category]assessment.CategoryScore, len(values))
	for c, v := range values {
		cs[c] = assessment.CategoryScore{Category: c, Value: v}
	}
	return assessment.Assessment{ID: id, OverallScore: score, MaturityLevel: assessment.Classify(score), CategoryScores: cs}
}

// TestNewAssessmentService tests the constructor
func TestNewAssessmentService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{}
		logger := zap.NewNop()

		service := NewAssessmentService(mockRepo, newTestEngine(), logger, WithHistoryLimit(8), WithQuestionCount(0))

		assert.NotNil(t, service)
		assert.Equal(t, mockRepo, service.storage)
		assert.Equal(t, logger, service.logger)
		assert.Equal(t, 8, service.historyLimit)
		assert.Equal(t, assessment.DefaultQuestionCount, service.questionCount)
	})

	t.Run("nil storage panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAssessmentService(nil, newTestEngine(), zap.NewNop())
		})
	})

	t.Run("nil engine panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewAssessmentService(&mocks.MockAssessmentRepository{}, nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		service := NewAssessmentService(&mocks.MockAssessmentRepository{}, newTestEngine(), nil)
		assert.NotNil(t, service.logger)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("scores against history and saves", func(t *testing.T) {
		var saved assessment.Assessment
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				assert.Equal(t, "team-a", subjectID)
				assert.Equal(t, DefaultHistoryLimit, limit)
				return []assessment.Assessment{{OverallScore: 38}}, nil
			},
			SaveFunc: func(ctx context.Context, a assessment.Assessment) error {
				saved = a
				return nil
			},
		}
		service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop())

		out, err := service.Submit(ctx, "  team-a ", submission())
		require.NoError(t, err)

		assert.Equal(t, "new-id", out.Assessment.ID)
		assert.Equal(t, "team-a", out.Assessment.SubjectID)
		assert.Equal(t, 45.0, out.Assessment.OverallScore)
		assert.Equal(t, assessment.TrendImproving, out.Trend.Direction)
		assert.Equal(t, 7.0, out.Trend.Delta)
		assert.Equal(t, out.Assessment, saved)
	})

	t.Run("history failure yields baseline", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, errors.New("database locked")
			},
			SaveFunc: func(ctx context.Context, a assessment.Assessment) error { return nil },
		}
		service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop())

		out, err := service.Submit(ctx, "team-a", submission())
		require.NoError(t, err)
		assert.Equal(t, assessment.TrendBaseline, out.Trend.Direction)
	})

	t.Run("slow ai exhausting the caller deadline still saves", func(t *testing.T) {
		var saveErr error
		saved := false
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, nil
			},
			SaveFunc: func(ctx context.Context, a assessment.Assessment) error {
				saveErr = ctx.Err()
				saved = true
				return nil
			},
		}
		engine := assessment.NewEngine(
			assessment.WithTimeout(time.Minute),
			assessment.WithAugmenter(&aimocks.MockAugmenter{
				AssessFunc: func(ctx context.Context, req assessment.AugmentRequest) (assessment.Payload, error) {
					<-ctx.Done()
					return assessment.Payload{}, ctx.Err()
				},
			}),
		)
		service := NewAssessmentService(mockRepo, engine, zap.NewNop())

		reqCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		out, err := service.Submit(reqCtx, "team-a", submission())
		require.NoError(t, err)
		assert.Equal(t, assessment.SourceFallback, out.Assessment.Source)
		assert.True(t, saved)
		assert.NoError(t, saveErr)
	})

	t.Run("save failure", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, nil
			},
			SaveFunc: func(ctx context.Context, a assessment.Assessment) error { return errors.New("disk full") },
		}
		service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop())

		_, err := service.Submit(ctx, "team-a", submission())
		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("validation error is not saved", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, nil
			},
		}
		service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop())

		_, err := service.Submit(ctx, "team-a", map[string]int{"lead_time": 9})
		assert.ErrorIs(t, err, assessment.ErrInvalidRating)
	})

	t.Run("empty subject", func(t *testing.T) {
		service := NewAssessmentService(&mocks.MockAssessmentRepository{}, newTestEngine(), zap.NewNop())

		_, err := service.Submit(ctx, "   ", submission())
		assert.ErrorIs(t, err, ErrInvalidSubject)
	})
}

func TestGetAssessment(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetByIDFunc: func(ctx context.Context, id string) (assessment.Assessment, error) {
				return assessment.Assessment{ID: id}, nil
			},
		}
		got, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).GetAssessment(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetByIDFunc: func(ctx context.Context, id string) (assessment.Assessment, error) {
				return assessment.Assessment{}, repository.ErrNotFound
			},
		}
		service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop())

		_, err := service.GetAssessment(ctx, "a1")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = service.GetAssessment(ctx, " ")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{}
		_, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).GetAssessment(ctx, "a1")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("with history", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			CountBySubjectFunc: func(ctx context.Context, subjectID string) (int64, error) { return 9, nil },
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				assert.Equal(t, 5, limit)
				return []assessment.Assessment{
					scored("a2", 61.26, map[assessment.Category]float64{
						assessment.Collaboration: 50, assessment.Automation: 80, assessment.Culture: 80,
					}),
					scored("a1", 50.0, nil),
				}, nil
			},
			GetCategoryAveragesFunc: func(ctx context.Context, subjectID string) ([]models.CategoryAverage, error) {
				return []models.CategoryAverage{{Category: "Automation", Average: 66.666, Assessments: 9}}, nil
			},
		}

		sum, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).Summary(ctx, "team-a")
		require.NoError(t, err)

		assert.Equal(t, "team-a", sum.SubjectID)
		assert.Equal(t, int64(9), sum.TotalAssessments)
		assert.Equal(t, 61.3, sum.LatestScore)
		assert.Equal(t, "Intermediate", sum.LatestLevel)
		assert.Equal(t, 11.3, sum.Improvement)
		assert.Equal(t, "Automation", sum.StrongestCategory)
		assert.Equal(t, map[string]float64{"Automation": 66.7}, sum.CategoryAverages)
		assert.Len(t, sum.Recent, 2)
	})

	t.Run("no history", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			CountBySubjectFunc: func(ctx context.Context, subjectID string) (int64, error) { return 0, nil },
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, nil
			},
			GetCategoryAveragesFunc: func(ctx context.Context, subjectID string) ([]models.CategoryAverage, error) {
				return nil, nil
			},
		}

		sum, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).Summary(ctx, "team-a")
		require.NoError(t, err)
		assert.Equal(t, "Not Assessed", sum.LatestLevel)
		assert.Equal(t, "None", sum.StrongestCategory)
		assert.Zero(t, sum.Improvement)
		assert.NotNil(t, sum.Recent)
		assert.NotNil(t, sum.CategoryAverages)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			CountBySubjectFunc: func(ctx context.Context, subjectID string) (int64, error) { return 0, errors.New("boom") },
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return nil, nil
			},
			GetCategoryAveragesFunc: func(ctx context.Context, subjectID string) ([]models.CategoryAverage, error) {
				return nil, nil
			},
		}

		_, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).Summary(ctx, "team-a")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}

func TestGenerateQuestions(t *testing.T) {
	ctx := context.Background()
	mockRepo := &mocks.MockAssessmentRepository{
		GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
			assert.Equal(t, DefaultQuestionHistoryLimit, limit)
			return []assessment.Assessment{scored("a1", 40, map[assessment.Category]float64{
				assessment.Collaboration: 70, assessment.Automation: 10, assessment.Monitoring: 70,
				assessment.Culture: 70, assessment.Delivery: 70,
			})}, nil
		},
	}
	service := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop(), WithQuestionCount(4))

	set, err := service.GenerateQuestions(ctx, QuestionRequest{SubjectID: "team-a"})
	require.NoError(t, err)

	assert.Equal(t, assessment.SourceFallback, set.Source)
	assert.Equal(t, assessment.Developing, set.Level)
	require.Len(t, set.Questions, 4)
	assert.Equal(t, assessment.Automation, set.Questions[0].Category)
	assert.True(t, set.BasedOnHistory)

	_, err = service.GenerateQuestions(ctx, QuestionRequest{})
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestAnalyzeProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("trend across history", func(t *testing.T) {
		mockRepo := &mocks.MockAssessmentRepository{
			GetRecentFunc: func(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
				return []assessment.Assessment{{OverallScore: 70}, {OverallScore: 55}, {OverallScore: 40}}, nil
			},
		}
		report, err := NewAssessmentService(mockRepo, newTestEngine(), zap.NewNop()).AnalyzeProgress(ctx, "team-a")
		require.NoError(t, err)
		assert.Equal(t, assessment.TrendImproving, report.Direction)
		assert.Equal(t, 15.0, report.RecentChange)
		assert.Equal(t, 30.0, report.OverallChange)
		assert.Equal(t, assessment.ProgressRapid, report.ProgressRate)
	})

	t.Run("storage failure", func(t *testing.T) {
		_, err := NewAssessmentService(&mocks.MockAssessmentRepository{}, newTestEngine(), zap.NewNop()).AnalyzeProgress(ctx, "team-a")
		assert.ErrorIs(t, err, ErrStorageFailure)
	})
}
