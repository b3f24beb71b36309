package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name. Every method takes and returns a
// google.protobuf.Struct holding the JSON form of its message type.
const ServiceName = "maturity.v1.AssessmentEngine"

// AssessmentEngineServer is implemented by *GRPCHandlers.
type AssessmentEngineServer interface {
	SubmitAssessment(ctx context.Context, req *SubmitAssessmentRequest) (*SubmitAssessmentResponse, error)
	GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error)
	GetSubjectSummary(ctx context.Context, req *SubjectRequest) (*GetSubjectSummaryResponse, error)
	GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*GenerateQuestionsResponse, error)
	AnalyzeProgress(ctx context.Context, req *SubjectRequest) (*AnalyzeProgressResponse, error)
}

var AssessmentEngineServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssessmentEngineServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("SubmitAssessment", AssessmentEngineServer.SubmitAssessment),
		unary("GetAssessment", AssessmentEngineServer.GetAssessment),
		unary("GetSubjectSummary", AssessmentEngineServer.GetSubjectSummary),
		unary("GenerateQuestions", AssessmentEngineServer.GenerateQuestions),
		unary("AnalyzeProgress", AssessmentEngineServer.AnalyzeProgress),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "maturity/v1/assessment_engine.proto",
}

// RegisterAssessmentEngineServer registers srv on s.
func RegisterAssessmentEngineServer(s grpclib.ServiceRegistrar, srv AssessmentEngineServer) {
	s.RegisterService(&AssessmentEngineServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(AssessmentEngineServer, context.Context, *Req) (*Resp, error)) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				var r Req
				if err := FromStruct(req.(*structpb.Struct), &r); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "invalid %s request: %v", name, err)
				}
				resp, err := call(srv.(AssessmentEngineServer), ctx, &r)
				if err != nil {
					return nil, err
				}
				out, err := ToStruct(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "encode %s response: %v", name, err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ToStruct converts any JSON-object-shaped value to a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("not a json object: %w", err)
	}
	return out, nil
}

// FromStruct decodes s into dest through its JSON form. A nil s decodes as {}.
func FromStruct(s *structpb.Struct, dest any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
