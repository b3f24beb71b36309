package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the assessment engine service over a client connection.
type Client struct {
	conn grpclib.ClientConnInterface
}

func NewClient(conn grpclib.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) SubmitAssessment(ctx context.Context, req *SubmitAssessmentRequest, opts ...grpclib.CallOption) (*SubmitAssessmentResponse, error) {
	return invoke[SubmitAssessmentResponse](ctx, c.conn, "SubmitAssessment", req, opts)
}

func (c *Client) GetAssessment(ctx context.Context, req *GetAssessmentRequest, opts ...grpclib.CallOption) (*GetAssessmentResponse, error) {
	return invoke[GetAssessmentResponse](ctx, c.conn, "GetAssessment", req, opts)
}

func (c *Client) GetSubjectSummary(ctx context.Context, req *SubjectRequest, opts ...grpclib.CallOption) (*GetSubjectSummaryResponse, error) {
	return invoke[GetSubjectSummaryResponse](ctx, c.conn, "GetSubjectSummary", req, opts)
}

func (c *Client) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest, opts ...grpclib.CallOption) (*GenerateQuestionsResponse, error) {
	return invoke[GenerateQuestionsResponse](ctx, c.conn, "GenerateQuestions", req, opts)
}

func (c *Client) AnalyzeProgress(ctx context.Context, req *SubjectRequest, opts ...grpclib.CallOption) (*AnalyzeProgressResponse, error) {
	return invoke[AnalyzeProgressResponse](ctx, c.conn, "AnalyzeProgress", req, opts)
}

func invoke[Resp any](ctx context.Context, conn grpclib.ClientConnInterface, method string, req any, opts []grpclib.CallOption) (*Resp, error) {
	in, err := ToStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := conn.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := FromStruct(out, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
