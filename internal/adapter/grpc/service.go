package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The valuation service is described with well-known types only, so it needs no generated code:
// the request carries the owner id, the response mirrors the HTTP JSON body.
const (
	ServiceName   = "wealthflow.valuation.v1.ValuationService"
	ValuateMethod = "/" + ServiceName + "/Valuate"
)

// ValuationServiceServer is the server API for the valuation service
type ValuationServiceServer interface {
	Valuate(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

func valuateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValuationServiceServer).Valuate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValuateMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValuationServiceServer).Valuate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ValuationServiceDesc is the grpc.ServiceDesc of the valuation service
var ValuationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValuationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Valuate",
			Handler:    valuateHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
	// No file descriptor backs this hand-written desc, so the service is not reflectable
	Metadata: "",
}

// RegisterValuationServiceServer registers srv on s
func RegisterValuationServiceServer(s grpc.ServiceRegistrar, srv ValuationServiceServer) {
	s.RegisterService(&ValuationServiceDesc, srv)
}

// ValuationServiceClient is the client API for the valuation service
type ValuationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewValuationServiceClient(cc grpc.ClientConnInterface) *ValuationServiceClient {
	return &ValuationServiceClient{cc: cc}
}

// Valuate values every account of the owner whose id is in req
func (c *ValuationServiceClient) Valuate(ctx context.Context, req *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValuateMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
