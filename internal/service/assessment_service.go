package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/repository"
)

const (
	dbTimeout = 1 * time.Second

	DefaultHistoryLimit         = 5
	DefaultQuestionHistoryLimit = 3
	summaryRecentLimit          = 5
)

var (
	ErrNotFound       = errors.New("assessment not found")
	ErrStorageFailure = errors.New("storage failure")
	ErrInvalidSubject = errors.New("subject id is required")
)

// AssessmentService runs submissions through the engine and owns every storage access
// around it.
type AssessmentService struct {
	storage              AssessmentRepository
	engine               *assessment.Engine
	logger               *zap.Logger
	historyLimit         int
	questionHistoryLimit int
	questionCount        int
}

type Option func(*AssessmentService)

// WithHistoryLimit bounds the history used for trends and progress reports.
func WithHistoryLimit(n int) Option {
	return func(s *AssessmentService) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithQuestionHistoryLimit bounds the history used to personalize question sets.
func WithQuestionHistoryLimit(n int) Option {
	return func(s *AssessmentService) {
		if n > 0 {
			s.questionHistoryLimit = n
		}
	}
}

// WithQuestionCount sets the question set size used when a request does not name one.
func WithQuestionCount(n int) Option {
	return func(s *AssessmentService) {
		if n > 0 {
			s.questionCount = n
		}
	}
}

// NewAssessmentService creates a new AssessmentService instance.
func NewAssessmentService(storage AssessmentRepository, engine *assessment.Engine, logger *zap.Logger, opts ...Option) *AssessmentService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if engine == nil {
		panic("engine must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &AssessmentService{
		storage:              storage,
		engine:               engine,
		logger:               logger,
		historyLimit:         DefaultHistoryLimit,
		questionHistoryLimit: DefaultQuestionHistoryLimit,
		questionCount:        assessment.DefaultQuestionCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit scores responses against the subject's recent history and stores the result.
// A history read failure yields a baseline trend; a save failure is returned. The save is
// bounded by its own timeout and survives an expired caller deadline, so a completed
// assessment is never dropped after the AI call used up the request budget.
func (s *AssessmentService) Submit(ctx context.Context, subjectID string, responses map[string]int) (assessment.Outcome, error) {
	subjectID, err := normalizeSubject(subjectID)
	if err != nil {
		return assessment.Outcome{}, err
	}

	history := s.history(ctx, subjectID, s.historyLimit)

	out, err := s.engine.Assess(ctx, subjectID, responses, history)
	if err != nil {
		s.logger.Info("rejected submission",
			zap.String("subject_id", subjectID),
			zap.Error(err))
		return assessment.Outcome{}, err
	}

	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dbTimeout)
	defer cancel()

	if err := s.storage.Save(dbCtx, out.Assessment); err != nil {
		return assessment.Outcome{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("stored assessment",
		zap.String("subject_id", subjectID),
		zap.String("assessment_id", out.Assessment.ID),
		zap.Float64("score", out.Assessment.OverallScore),
		zap.String("level", out.Assessment.MaturityLevel.String()),
		zap.String("source", string(out.Assessment.Source)),
		zap.String("trend", string(out.Trend.Direction)))

	return out, nil
}

// GetAssessment returns a stored assessment by id.
func (s *AssessmentService) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return assessment.Assessment{}, ErrNotFound
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	a, err := s.storage.GetByID(dbCtx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return assessment.Assessment{}, ErrNotFound
		}
		return assessment.Assessment{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return a, nil
}

// Summary reports a subject's assessment count, latest result, improvement and strongest
// category. The three reads run concurrently.
func (s *AssessmentService) Summary(ctx context.Context, subjectID string) (Summary, error) {
	subjectID, err := normalizeSubject(subjectID)
	if err != nil {
		return Summary{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var (
		count   int64
		recent  []assessment.Assessment
		average map[string]float64
	)
	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		var err error
		count, err = s.storage.CountBySubject(gctx, subjectID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.storage.GetRecent(gctx, subjectID, summaryRecentLimit)
		return err
	})
	g.Go(func() error {
		rows, err := s.storage.GetCategoryAverages(gctx, subjectID)
		if err != nil {
			return err
		}
		average = make(map[string]float64, len(rows))
		for _, r := range rows {
			average[r.Category] = round1(r.Average)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return buildSummary(subjectID, count, recent, average), nil
}

func buildSummary(subjectID string, count int64, recent []assessment.Assessment, averages map[string]float64) Summary {
	sum := Summary{
		SubjectID:         subjectID,
		TotalAssessments:  count,
		LatestLevel:       notAssessed,
		StrongestCategory: noCategory,
		CategoryAverages:  averages,
		Recent:            recent,
	}
	if sum.Recent == nil {
		sum.Recent = []assessment.Assessment{}
	}
	if sum.CategoryAverages == nil {
		sum.CategoryAverages = map[string]float64{}
	}
	if len(recent) == 0 {
		return sum
	}

	latest := recent[0]
	sum.LatestScore = round1(latest.OverallScore)
	sum.LatestLevel = latest.MaturityLevel.String()
	if len(recent) > 1 {
		sum.Improvement = round1(latest.OverallScore - recent[1].OverallScore)
	}

	best := math.Inf(-1)
	for _, c := range assessment.Categories {
		cs, ok := latest.CategoryScores[c]
		if ok && cs.Value > best {
			best = cs.Value
			sum.StrongestCategory = string(c)
		}
	}
	return sum
}

// GenerateQuestions returns a personalized question set. It never fails on AI or history
// unavailability.
func (s *AssessmentService) GenerateQuestions(ctx context.Context, req QuestionRequest) (assessment.QuestionSet, error) {
	subjectID, err := normalizeSubject(req.SubjectID)
	if err != nil {
		return assessment.QuestionSet{}, err
	}

	count := req.Count
	if count <= 0 {
		count = s.questionCount
	}

	set := s.engine.SelectQuestions(ctx, assessment.QuestionParams{
		SubjectID:  subjectID,
		History:    s.history(ctx, subjectID, s.questionHistoryLimit),
		Level:      req.Level,
		Count:      count,
		FocusAreas: req.FocusAreas,
	})

	s.logger.Info("generated question set",
		zap.String("subject_id", subjectID),
		zap.String("level", set.Level.String()),
		zap.String("source", string(set.Source)),
		zap.Int("count", len(set.Questions)))

	return set, nil
}

// AnalyzeProgress reports the trend across the subject's recent history.
func (s *AssessmentService) AnalyzeProgress(ctx context.Context, subjectID string) (assessment.ProgressReport, error) {
	subjectID, err := normalizeSubject(subjectID)
	if err != nil {
		return assessment.ProgressReport{}, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	history, err := s.storage.GetRecent(dbCtx, subjectID, s.historyLimit)
	if err != nil {
		return assessment.ProgressReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return assessment.AnalyzeProgress(history), nil
}

// history reads recent assessments and degrades to none on failure.
func (s *AssessmentService) history(ctx context.Context, subjectID string, limit int) []assessment.Assessment {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	history, err := s.storage.GetRecent(dbCtx, subjectID, limit)
	if err != nil {
		s.logger.Warn("history unavailable, treating subject as new",
			zap.String("subject_id", subjectID),
			zap.Error(err))
		return nil
	}
	return history
}

func normalizeSubject(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrInvalidSubject
	}
	return id, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
