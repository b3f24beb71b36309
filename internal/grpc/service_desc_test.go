package grpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/grpc/mocks"
)

func dialHandlers(t *testing.T, svc *mocks.MockAssessmentService) (*Client, grpclib.ClientConnInterface) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpclib.NewServer()
	RegisterAssessmentEngineServer(srv, NewGRPCHandlers(svc, &mocks.MockCacher{}, zap.NewNop(), 0))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn), conn
}

func TestStructRoundTrip(t *testing.T) {
	in := SubmitAssessmentRequest{SubjectID: "team-a", Responses: map[string]int{"lead_time": 3}}

	s, err := ToStruct(in)
	require.NoError(t, err)
	assert.Equal(t, "team-a", s.Fields["subject_id"].GetStringValue())

	var out SubmitAssessmentRequest
	require.NoError(t, FromStruct(s, &out))
	assert.Equal(t, in, out)

	var empty GetAssessmentRequest
	assert.NoError(t, FromStruct(nil, &empty))
}

func TestServiceDesc_OverTheWire(t *testing.T) {
	svc := &mocks.MockAssessmentService{
		SubmitFunc: func(ctx context.Context, subjectID string, responses map[string]int) (assessment.Outcome, error) {
			return assessment.Outcome{
				Assessment: assessment.Assessment{
					ID:            "a1",
					SubjectID:     subjectID,
					OverallScore:  62.5,
					MaturityLevel: assessment.Intermediate,
					RawResponses:  responses,
				},
				Trend: assessment.TrendResult{Direction: assessment.TrendBaseline, Message: "First assessment"},
			}, nil
		},
	}
	client, conn := dialHandlers(t, svc)
	ctx := context.Background()

	t.Run("typed client", func(t *testing.T) {
		resp, err := client.SubmitAssessment(ctx, &SubmitAssessmentRequest{
			SubjectID: "team-a",
			Responses: map[string]int{"lead_time": 3, "observability": 4},
		})
		require.NoError(t, err)
		assert.Equal(t, "a1", resp.Assessment.ID)
		assert.Equal(t, 62.5, resp.Assessment.OverallScore)
		assert.Equal(t, assessment.Intermediate, resp.Assessment.MaturityLevel)
		assert.Equal(t, map[string]int{"lead_time": 3, "observability": 4}, resp.Assessment.RawResponses)
		assert.Equal(t, assessment.TrendBaseline, resp.Trend.Direction)
	})

	t.Run("status codes survive", func(t *testing.T) {
		_, err := client.GetAssessment(ctx, &GetAssessmentRequest{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("undecodable request", func(t *testing.T) {
		in, err := structpb.NewStruct(map[string]any{"responses": "not-a-map"})
		require.NoError(t, err)

		err = conn.Invoke(ctx, fullMethod("SubmitAssessment"), in, new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}
