package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "resumeparser.v1.ResumeParser"

// Full method names
const (
	ParseResumeMethod     = "/" + ServiceName + "/ParseResume"
	ConvertDocumentMethod = "/" + ServiceName + "/ConvertDocument"
	ExtractResumeMethod   = "/" + ServiceName + "/ExtractResume"
)

// ResumeParserServer is the server API for the ResumeParser service. Messages are
// google.protobuf.Struct so clients need no generated stubs.
type ResumeParserServer interface {
	ParseResume(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConvertDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractResume(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ResumeParserServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ResumeParserServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ResumeParserServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ResumeParserServiceDesc describes the ResumeParser service for grpc.Server.RegisterService
var ResumeParserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ResumeParserServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ParseResume",
			Handler:    unaryHandler(ParseResumeMethod, ResumeParserServer.ParseResume),
		},
		{
			MethodName: "ConvertDocument",
			Handler:    unaryHandler(ConvertDocumentMethod, ResumeParserServer.ConvertDocument),
		},
		{
			MethodName: "ExtractResume",
			Handler:    unaryHandler(ExtractResumeMethod, ResumeParserServer.ExtractResume),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "resumeparser/v1/resume_parser.proto",
}

// RegisterResumeParserServer registers srv on s
func RegisterResumeParserServer(s grpc.ServiceRegistrar, srv ResumeParserServer) {
	s.RegisterService(&ResumeParserServiceDesc, srv)
}

// ResumeParserClient calls the ResumeParser service
type ResumeParserClient struct {
	cc grpc.ClientConnInterface
}

// NewResumeParserClient wraps a client connection
func NewResumeParserClient(cc grpc.ClientConnInterface) *ResumeParserClient {
	return &ResumeParserClient{cc: cc}
}

func (c *ResumeParserClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseResume converts and extracts a document in one call
func (c *ResumeParserClient) ParseResume(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ParseResumeMethod, in, opts...)
}

// ConvertDocument converts a document to Markdown
func (c *ResumeParserClient) ConvertDocument(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ConvertDocumentMethod, in, opts...)
}

// ExtractResume extracts ResumeData from Markdown
func (c *ResumeParserClient) ExtractResume(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExtractResumeMethod, in, opts...)
}
