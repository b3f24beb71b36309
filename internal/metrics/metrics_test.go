package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/maturity-engine/internal/assessment"
)

func TestManager_Observer(t *testing.T) {
	m := NewManager(WithRegistry(prometheus.NewRegistry()))

	m.AugmentationFailed(assessment.FailureTimeout)
	m.AugmentationFailed(assessment.FailureTimeout)
	m.AugmentationFailed(assessment.FailureMalformed)
	m.AssessmentCompleted(assessment.SourceFallback, 20*time.Millisecond)
	m.AssessmentCompleted(assessment.SourceAIAugmented, time.Second)
	m.QuestionsSelected(assessment.SourceFallback, 15)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.augmentationFailures.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.augmentationFailures.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("ai_augmented")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.questionSets.WithLabelValues("fallback")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.questionsServed))
}

func TestManager_ObserveRequest(t *testing.T) {
	m := NewManager(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.ObserveRequest("/maturity.v1.AssessmentEngine/GetAssessment", "NotFound", time.Millisecond)

	expected := `
# HELP test_grpc_requests_total Unary gRPC requests by method and status code
# TYPE test_grpc_requests_total counter
test_grpc_requests_total{code="NotFound",method="/maturity.v1.AssessmentEngine/GetAssessment"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.grpcRequests, strings.NewReader(expected)))
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.AssessmentCompleted(assessment.SourceFallback, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `maturity_engine_assessments_total{source="fallback"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer(t *testing.T) {
	m := NewManager()
	srv, err := NewServer(m, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	srv.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
	}()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", srv.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(b), "maturity_engine")
}
