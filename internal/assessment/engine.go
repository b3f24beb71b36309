package assessment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultAITimeout     = 30 * time.Second
	DefaultQuestionCount = 15
)

// Engine scores submissions and selects question sets. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	lookup    map[string]Category
	validator *Validator
	bank      QuestionBank
	augmenter Augmenter
	generator QuestionGenerator
	timeout   time.Duration
	observer  Observer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Engine)

// WithAugmenter enables the AI-augmented scoring path.
func WithAugmenter(a Augmenter) Option {
	return func(e *Engine) { e.augmenter = a }
}

// WithQuestionGenerator enables AI question generation.
func WithQuestionGenerator(g QuestionGenerator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithTimeout bounds each AI call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithQuestionBank(b QuestionBank) Option {
	return func(e *Engine) { e.bank = b }
}

// WithLookup replaces the question -> category table used for validation.
func WithLookup(lookup map[string]Category) Option {
	return func(e *Engine) { e.lookup = lookup }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		bank:     DefaultBank(),
		timeout:  DefaultAITimeout,
		observer: nopObserver{},
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.lookup == nil {
		e.lookup = DefaultLookup(e.bank)
	}
	e.validator = NewValidator(e.lookup)
	e.logger = e.logger.Named("assessment-engine")
	return e
}

// Outcome is a completed assessment and its trend against the prior record.
type Outcome struct {
	Assessment Assessment
	Trend      TrendResult
}

// Assess validates raw, scores it and returns a complete assessment. history is the
// subject's prior assessments, newest first. The only error is a *ValidationError: any
// AI failure falls back to deterministic scoring.
func (e *Engine) Assess(ctx context.Context, subjectID string, raw map[string]int, history []Assessment) (Outcome, error) {
	started := time.Now()

	responses, err := e.validator.Validate(raw)
	if err != nil {
		return Outcome{}, err
	}
	scores := Score(responses)

	a := Assessment{
		ID:           e.newID(),
		SubjectID:    subjectID,
		RawResponses: responses.Ratings(),
		CreatedAt:    e.now().UTC(),
	}

	payload, failure := e.augment(ctx, AugmentRequest{
		SubjectID: subjectID,
		Responses: a.RawResponses,
		History:   Summarize(history),
	})
	if failure != nil {
		e.reportFailure("assessment", subjectID, failure)
		applyFallback(&a, scores)
	} else {
		e.applyPayload(&a, scores, payload)
		e.logger.Info("ai assessment applied",
			zap.String("subject_id", subjectID),
			zap.Float64("score", a.OverallScore),
			zap.String("level", a.MaturityLevel.String()))
	}

	e.observer.AssessmentCompleted(a.Source, time.Since(started))
	return Outcome{Assessment: a, Trend: AnalyzeTrend(a.OverallScore, history)}, nil
}

func applyFallback(a *Assessment, scores Scores) {
	a.Source = SourceFallback
	a.CategoryScores = scores.Categories
	a.OverallScore = scores.Overall
	a.MaturityLevel = Classify(scores.Overall)
	a.Strengths = Strengths(scores.Categories)
	a.ImprovementAreas = ImprovementAreas(scores.Categories)
	a.Recommendations = Recommend(scores.Categories)
	a.NextSteps = NextSteps(a.Recommendations)
	a.DORAPrediction = PredictDORA(a.OverallScore)
	a.TransformationTime = EstimateTransformationTime(a.OverallScore)
}

func (e *Engine) applyPayload(a *Assessment, scores Scores, p Payload) {
	a.Source = SourceAIAugmented

	a.CategoryScores = make(map[Category]CategoryScore, len(Categories))
	for _, c := range Categories {
		cs := scores.Categories[c]
		if v, ok := p.CategoryScores[c]; ok {
			cs.Value = Clamp(v)
		}
		a.CategoryScores[c] = cs
	}

	if p.MaturityScore != nil && InRange(*p.MaturityScore) {
		a.OverallScore = *p.MaturityScore
		level, ok := ParseMaturityLevel(p.MaturityLevel)
		if !ok {
			level = Classify(a.OverallScore)
		}
		a.MaturityLevel = level
	} else {
		e.logger.Warn("ai maturity score missing or out of range, recomputing",
			zap.String("subject_id", a.SubjectID))
		a.OverallScore = scores.Overall
		a.MaturityLevel = Classify(scores.Overall)
	}

	a.Strengths = orElse(p.Strengths, func() []string { return Strengths(a.CategoryScores) })
	a.ImprovementAreas = orElse(p.ImprovementAreas, func() []string { return ImprovementAreas(a.CategoryScores) })
	a.Recommendations = orElse(p.Recommendations, func() []Recommendation { return Recommend(a.CategoryScores) })
	a.NextSteps = orElse(p.NextSteps, func() []string { return NextSteps(a.Recommendations) })

	if p.DORAPrediction != nil {
		a.DORAPrediction = *p.DORAPrediction
	} else {
		a.DORAPrediction = PredictDORA(a.OverallScore)
	}
	a.TransformationTime = p.TransformationTime
	if a.TransformationTime == "" {
		a.TransformationTime = EstimateTransformationTime(a.OverallScore)
	}
}

func orElse[T any](v []T, fallback func() []T) []T {
	if len(v) > 0 {
		return slices.Clone(v)
	}
	return fallback()
}

// QuestionParams describes a question-set request. A nil Level means the level of the
// newest assessment in History.
type QuestionParams struct {
	SubjectID  string
	History    []Assessment
	Level      *MaturityLevel
	Count      int
	FocusAreas []Category
}

// QuestionSet is a personalized questionnaire.
type QuestionSet struct {
	Questions      []Question    `json:"questions"`
	Level          MaturityLevel `json:"level"`
	FocusAreas     []Category    `json:"focus_areas"`
	Source         Source        `json:"source"`
	BasedOnHistory bool          `json:"based_on_history"`
}

// SelectQuestions asks the AI question service first and uses the static bank on any
// failure. It never fails.
func (e *Engine) SelectQuestions(ctx context.Context, params QuestionParams) QuestionSet {
	level := CurrentLevel(params.History)
	if params.Level != nil {
		level = *params.Level
	}
	count := params.Count
	if count <= 0 {
		count = DefaultQuestionCount
	}

	set := QuestionSet{Level: level, BasedOnHistory: len(params.History) > 0}

	questions, failure := e.generate(ctx, QuestionRequest{
		SubjectID:  params.SubjectID,
		SkillLevel: strings.ToLower(level.String()),
		History:    Summarize(params.History),
		FocusAreas: params.FocusAreas,
		Count:      count,
	})
	if failure == nil {
		set.Questions = questions
		set.FocusAreas = mergeTargets(WeakCategories(params.History), params.FocusAreas)
		set.Source = SourceAIAugmented
	} else {
		e.reportFailure("questions", params.SubjectID, failure)
		sel := SelectFromBank(e.bank, params.History, level, count, params.FocusAreas)
		set.Questions = sel.Questions
		set.FocusAreas = sel.Targeted
		set.Source = SourceFallback
	}
	if set.Questions == nil {
		set.Questions = []Question{}
	}

	e.observer.QuestionsSelected(set.Source, len(set.Questions))
	return set
}

func (e *Engine) augment(ctx context.Context, req AugmentRequest) (Payload, *AugmentationFailure) {
	if e.augmenter == nil {
		return Payload{}, NewFailure(FailureUnavailable, nil)
	}
	return callOnce(ctx, e.timeout, func(ctx context.Context) (Payload, error) {
		return e.augmenter.Assess(ctx, req)
	})
}

func (e *Engine) generate(ctx context.Context, req QuestionRequest) ([]Question, *AugmentationFailure) {
	if e.generator == nil {
		return nil, NewFailure(FailureUnavailable, nil)
	}
	questions, failure := callOnce(ctx, e.timeout, func(ctx context.Context) ([]Question, error) {
		return e.generator.GenerateQuestions(ctx, req)
	})
	if failure != nil {
		return nil, failure
	}
	questions = SanitizeQuestions(questions, req.Count)
	if len(questions) == 0 {
		return nil, NewFailure(FailureMalformed, ErrNoQuestions)
	}
	return questions, nil
}

func (e *Engine) reportFailure(op, subjectID string, f *AugmentationFailure) {
	e.observer.AugmentationFailed(f.Kind)
	if f.Kind == FailureUnavailable {
		e.logger.Debug("ai service not configured, using fallback",
			zap.String("op", op),
			zap.String("subject_id", subjectID))
		return
	}
	e.logger.Warn("ai augmentation failed, using fallback",
		zap.String("op", op),
		zap.String("subject_id", subjectID),
		zap.String("kind", string(f.Kind)),
		zap.Error(f.Err))
}

type callResult[T any] struct {
	value T
	err   error
}

// callOnce runs fn a single time under timeout. It returns when fn does or when the
// deadline passes, whichever is first, and converts panics into failures.
func callOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, *AugmentationFailure) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult[T]{err: NewFailure(FailurePanic, fmt.Errorf("%v", r))}
			}
		}()
		v, err := fn(ctx)
		done <- callResult[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return zero, classify(res.err)
		}
		return res.value, nil
	case <-ctx.Done():
		return zero, classify(ctx.Err())
	}
}

func classify(err error) *AugmentationFailure {
	f := AsFailure(err)
	if errors.Is(err, context.DeadlineExceeded) && f.Kind == FailureTransport {
		return NewFailure(FailureTimeout, err)
	}
	return f
}
