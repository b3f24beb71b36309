package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	// storageMargin covers the history read and save around one AI call.
	storageMargin = 15 * time.Second
)

type CacheKeyType string

const (
	cacheKeyAssessment CacheKeyType = "grpc:assessment"
	cacheKeySummary    CacheKeyType = "grpc:subject_summary"
	cacheKeyProgress   CacheKeyType = "grpc:progress"
	// cacheKeyVersion holds a per-subject generation. Summary and progress keys embed it,
	// so a background write that raced a submit lands on a key no reader uses.
	cacheKeyVersion CacheKeyType = "grpc:subject_version"
)

type GRPCHandlers struct {
	assessments AssessmentService
	cache       Cacher
	logger      *zap.Logger
	sfGroup     singleflight.Group
	cacheTTL    time.Duration
	// aiCallTimeout bounds SubmitAssessment and GenerateQuestions, which wait on the AI
	// backend.
	aiCallTimeout time.Duration
}

type HandlerOption func(*GRPCHandlers)

// WithAITimeout sizes the deadline of AI-backed calls to the engine's AI timeout plus
// room for storage. Non-positive values keep the default.
func WithAITimeout(d time.Duration) HandlerOption {
	return func(h *GRPCHandlers) {
		if d > 0 {
			h.aiCallTimeout = d + storageMargin
		}
	}
}

var _ AssessmentEngineServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(assessments AssessmentService, cache Cacher, logger *zap.Logger, ttl time.Duration, opts ...HandlerOption) *GRPCHandlers {
	if assessments == nil {
		panic("nil AssessmentService provided to NewGRPCHandlers")
	}
	if cache == nil {
		panic("nil Cacher provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	h := &GRPCHandlers{
		assessments:   assessments,
		cache:         cache,
		logger:        logger.Named("grpc-handler"),
		cacheTTL:      ttl,
		aiCallTimeout: assessment.DefaultAITimeout + storageMargin,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func cacheKey(prefix CacheKeyType, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}

// subjectKey returns the key of a subject-scoped entry under the subject's current
// generation. An unreadable generation counts as 0.
func (s *GRPCHandlers) subjectKey(ctx context.Context, prefix CacheKeyType, subject string) string {
	var generation int64
	if err := s.cache.Get(ctx, cacheKey(cacheKeyVersion, subject), &generation); err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("cache generation unavailable", zap.String("subject_id", subject), zap.Error(err))
	}
	return fmt.Sprintf("%s:%s:v%d", prefix, subject, generation)
}

// retireSubject moves the subject to a new cache generation. When the counter cannot be
// bumped the current entries are deleted instead.
func (s *GRPCHandlers) retireSubject(ctx context.Context, subject string) {
	_, err := s.cache.Incr(ctx, cacheKey(cacheKeyVersion, subject))
	if err == nil {
		return
	}
	s.logger.Warn("cache generation bump failed", zap.String("subject_id", subject), zap.Error(err))
	invalidate(ctx, s.cache, s.logger,
		s.subjectKey(ctx, cacheKeySummary, subject),
		s.subjectKey(ctx, cacheKeyProgress, subject))
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var verr *assessment.ValidationError
	switch {
	case errors.As(err, &verr):
		s.logger.Info("invalid responses", zap.String("op", op), zap.String("question_id", verr.QuestionID))
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, service.ErrInvalidSubject):
		return status.Error(codes.InvalidArgument, "subject_id is required")
	case errors.Is(err, service.ErrNotFound):
		s.logger.Info("assessment not found", zap.String("op", op))
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) SubmitAssessment(ctx context.Context, req *SubmitAssessmentRequest) (*SubmitAssessmentResponse, error) {
	if len(req.Responses) == 0 {
		return nil, status.Error(codes.InvalidArgument, "responses are required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.aiCallTimeout)
	defer cancel()

	out, err := s.assessments.Submit(ctx, req.SubjectID, req.Responses)
	if err != nil {
		return nil, s.handleError(ctx, "SubmitAssessment", err)
	}

	s.retireSubject(ctx, out.Assessment.SubjectID)
	storeInBackground(s.cache, cacheKey(cacheKeyAssessment, out.Assessment.ID), s.cacheTTL, s.logger, out.Assessment)

	return &SubmitAssessmentResponse{Assessment: out.Assessment, Trend: out.Trend}, nil
}

func (s *GRPCHandlers) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if req.AssessmentID == "" {
		return nil, status.Error(codes.InvalidArgument, "assessment_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	a, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey(cacheKeyAssessment, req.AssessmentID),
		cachePolicy{ttl: s.cacheTTL}, s.logger,
		func(fetchCtx context.Context) (assessment.Assessment, error) {
			return s.assessments.GetAssessment(fetchCtx, req.AssessmentID)
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetAssessment", err)
	}
	return &GetAssessmentResponse{Assessment: a}, nil
}

func (s *GRPCHandlers) GetSubjectSummary(ctx context.Context, req *SubjectRequest) (*GetSubjectSummaryResponse, error) {
	if req.SubjectID == "" {
		return nil, status.Error(codes.InvalidArgument, "subject_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	sum, err := FindAndCache(ctx, s.cache, &s.sfGroup, s.subjectKey(ctx, cacheKeySummary, req.SubjectID),
		cachePolicy{ttl: s.cacheTTL, refreshAhead: true}, s.logger,
		func(fetchCtx context.Context) (service.Summary, error) {
			return s.assessments.Summary(fetchCtx, req.SubjectID)
		})
	if err != nil {
		return nil, s.handleError(ctx, "GetSubjectSummary", err)
	}
	return &GetSubjectSummaryResponse{Summary: sum}, nil
}

func (s *GRPCHandlers) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*GenerateQuestionsResponse, error) {
	if req.Count < 0 {
		return nil, status.Error(codes.InvalidArgument, "count must not be negative")
	}
	params := service.QuestionRequest{SubjectID: req.SubjectID, Count: req.Count}
	if req.Level != "" {
		level, ok := assessment.ParseMaturityLevel(req.Level)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown level %q", req.Level)
		}
		params.Level = &level
	}
	for _, name := range req.FocusAreas {
		c, ok := assessment.ParseCategory(name)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown focus area %q", name)
		}
		params.FocusAreas = append(params.FocusAreas, c)
	}

	ctx, cancel := context.WithTimeout(ctx, s.aiCallTimeout)
	defer cancel()

	set, err := s.assessments.GenerateQuestions(ctx, params)
	if err != nil {
		return nil, s.handleError(ctx, "GenerateQuestions", err)
	}
	return &GenerateQuestionsResponse{QuestionSet: set}, nil
}

func (s *GRPCHandlers) AnalyzeProgress(ctx context.Context, req *SubjectRequest) (*AnalyzeProgressResponse, error) {
	if req.SubjectID == "" {
		return nil, status.Error(codes.InvalidArgument, "subject_id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	report, err := FindAndCache(ctx, s.cache, &s.sfGroup, s.subjectKey(ctx, cacheKeyProgress, req.SubjectID),
		cachePolicy{ttl: s.cacheTTL}, s.logger,
		func(fetchCtx context.Context) (assessment.ProgressReport, error) {
			return s.assessments.AnalyzeProgress(fetchCtx, req.SubjectID)
		})
	if err != nil {
		return nil, s.handleError(ctx, "AnalyzeProgress", err)
	}
	return &AnalyzeProgressResponse{Progress: report}, nil
}
