//go:build e2e

package e2e

import (
	"context"
	"net"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/grpc"
	"github.com/godilite/maturity-engine/internal/repository"
	"github.com/godilite/maturity-engine/internal/service"
	"github.com/godilite/maturity-engine/pkg/database"
	"github.com/godilite/maturity-engine/pkg/grpc/server"
	"github.com/godilite/maturity-engine/tests/e2e/mocks"
)

type harness struct {
	client *grpc.Client
	cache  *mocks.InMemoryCache
}

func setup(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	db, err := database.New(ctx,
		database.WithDataSource(":memory:"),
		database.WithBootstrap(repository.Schema...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := assessment.NewEngine(assessment.WithLogger(logger))
	svc := service.NewAssessmentService(repository.NewAssessmentRepository(db), engine, logger)
	cache := mocks.NewInMemoryCache()
	handlers := grpc.NewGRPCHandlers(svc, cache, logger, 5*time.Minute)

	lis := bufconn.Listen(1 << 20)
	srv, err := server.New(server.WithListener(lis), server.WithLogger(logger), server.WithRecovery(true))
	require.NoError(t, err)
	srv.RegisterServiceWithHealth(grpc.ServiceName, func(s *grpclib.Server) {
		grpc.RegisterAssessmentEngineServer(s, handlers)
	})
	srv.Start()
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{client: grpc.NewClient(conn), cache: cache}
}

func uniform(rating int) map[string]int {
	return map[string]int{
		"collaboration_tools":  rating,
		"ci_cd_pipeline":       rating,
		"monitoring_alerting":  rating,
		"psychological_safety": rating,
		"deployment_frequency": rating,
	}
}

func TestE2E_AssessmentLifecycle(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	first, err := h.client.SubmitAssessment(ctx, &grpc.SubmitAssessmentRequest{
		SubjectID: "team-a",
		Responses: map[string]int{
			"collaboration_tools":  3,
			"ci_cd_pipeline":       2,
			"monitoring_alerting":  4,
			"psychological_safety": 3,
			"deployment_frequency": 2,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 45.0, first.Assessment.OverallScore)
	assert.Equal(t, assessment.Developing, first.Assessment.MaturityLevel)
	assert.Equal(t, assessment.SourceFallback, first.Assessment.Source)
	assert.Equal(t, assessment.TrendBaseline, first.Trend.Direction)
	assert.NotEmpty(t, first.Assessment.ID)

	summary, err := h.client.GetSubjectSummary(ctx, &grpc.SubjectRequest{SubjectID: "team-a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.Summary.TotalAssessments)
	require.Eventually(t, func() bool { return h.cache.Has("grpc:subject_summary:team-a:v0") },
		time.Second, 10*time.Millisecond)

	second, err := h.client.SubmitAssessment(ctx, &grpc.SubmitAssessmentRequest{
		SubjectID: "team-a",
		Responses: uniform(4),
	})
	require.NoError(t, err)
	assert.Equal(t, 75.0, second.Assessment.OverallScore)
	assert.Equal(t, assessment.Advanced, second.Assessment.MaturityLevel)
	assert.Equal(t, assessment.TrendImproving, second.Trend.Direction)
	assert.InDelta(t, 30.0, second.Trend.Delta, 0.001)
	assert.True(t, h.cache.Has("grpc:subject_version:team-a"))

	summary, err = h.client.GetSubjectSummary(ctx, &grpc.SubjectRequest{SubjectID: "team-a"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Summary.TotalAssessments)
	assert.Equal(t, 75.0, summary.Summary.LatestScore)
	assert.Equal(t, "Advanced", summary.Summary.LatestLevel)
	assert.InDelta(t, 30.0, summary.Summary.Improvement, 0.001)
	require.Len(t, summary.Summary.Recent, 2)
	assert.Equal(t, second.Assessment.ID, summary.Summary.Recent[0].ID)

	got, err := h.client.GetAssessment(ctx, &grpc.GetAssessmentRequest{AssessmentID: first.Assessment.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Assessment.OverallScore, got.Assessment.OverallScore)
	assert.Equal(t, first.Assessment.RawResponses, got.Assessment.RawResponses)

	progress, err := h.client.AnalyzeProgress(ctx, &grpc.SubjectRequest{SubjectID: "team-a"})
	require.NoError(t, err)
	assert.Equal(t, assessment.TrendImproving, progress.Progress.Direction)
	assert.Equal(t, 2, progress.Progress.AssessmentCount)

	questions, err := h.client.GenerateQuestions(ctx, &grpc.GenerateQuestionsRequest{SubjectID: "team-a"})
	require.NoError(t, err)
	assert.Equal(t, assessment.Advanced, questions.QuestionSet.Level)
	assert.Equal(t, assessment.SourceFallback, questions.QuestionSet.Source)
	assert.True(t, questions.QuestionSet.BasedOnHistory)
	assert.NotEmpty(t, questions.QuestionSet.Questions)
}

func TestE2E_ErrorScenarios(t *testing.T) {
	h := setup(t)
	ctx := context.Background()

	t.Run("rating out of range", func(t *testing.T) {
		responses := uniform(3)
		responses["ci_cd_pipeline"] = 6
		_, err := h.client.SubmitAssessment(ctx, &grpc.SubmitAssessmentRequest{SubjectID: "team-b", Responses: responses})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "ci_cd_pipeline")
	})

	t.Run("blank subject", func(t *testing.T) {
		_, err := h.client.SubmitAssessment(ctx, &grpc.SubmitAssessmentRequest{SubjectID: "  ", Responses: uniform(3)})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("unknown assessment", func(t *testing.T) {
		_, err := h.client.GetAssessment(ctx, &grpc.GetAssessmentRequest{AssessmentID: "missing"})
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := h.client.GenerateQuestions(ctx, &grpc.GenerateQuestionsRequest{SubjectID: "team-b", Level: "wizard"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("summary for subject without history", func(t *testing.T) {
		resp, err := h.client.GetSubjectSummary(ctx, &grpc.SubjectRequest{SubjectID: "team-new"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.Summary.TotalAssessments)
		assert.Equal(t, "Not Assessed", resp.Summary.LatestLevel)
	})
}
