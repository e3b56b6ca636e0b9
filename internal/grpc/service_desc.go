package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "laborinsights.v1.LaborInsights"

// Method names of the LaborInsights service.
const (
	MethodGetDescriptiveStats  = "GetDescriptiveStats"
	MethodGetRegionStats       = "GetRegionStats"
	MethodGetRegionStateMeans  = "GetRegionStateMeans"
	MethodGetCorrelationMatrix = "GetCorrelationMatrix"
	MethodGetStateRanking      = "GetStateRanking"
	MethodGetLockdownImpact    = "GetLockdownImpact"
)

// LaborInsightsServer is the server API. Every method takes an empty request
// and answers with a table encoded as a google.protobuf.Struct.
type LaborInsightsServer interface {
	GetDescriptiveStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRegionStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetRegionStateMeans(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetCorrelationMatrix(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetStateRanking(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetLockdownImpact(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type tableMethod func(LaborInsightsServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)

func unaryHandler(method string, call tableMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LaborInsightsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LaborInsightsServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FullMethod returns "/laborinsights.v1.LaborInsights/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ServiceDesc describes the LaborInsights service to grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LaborInsightsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodGetDescriptiveStats, Handler: unaryHandler(MethodGetDescriptiveStats, LaborInsightsServer.GetDescriptiveStats)},
		{MethodName: MethodGetRegionStats, Handler: unaryHandler(MethodGetRegionStats, LaborInsightsServer.GetRegionStats)},
		{MethodName: MethodGetRegionStateMeans, Handler: unaryHandler(MethodGetRegionStateMeans, LaborInsightsServer.GetRegionStateMeans)},
		{MethodName: MethodGetCorrelationMatrix, Handler: unaryHandler(MethodGetCorrelationMatrix, LaborInsightsServer.GetCorrelationMatrix)},
		{MethodName: MethodGetStateRanking, Handler: unaryHandler(MethodGetStateRanking, LaborInsightsServer.GetStateRanking)},
		{MethodName: MethodGetLockdownImpact, Handler: unaryHandler(MethodGetLockdownImpact, LaborInsightsServer.GetLockdownImpact)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "laborinsights/v1/insights.proto",
}

// RegisterLaborInsightsServer registers srv on s.
func RegisterLaborInsightsServer(s grpc.ServiceRegistrar, srv LaborInsightsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls the LaborInsights service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes one of the table methods.
func (c *Client) Call(ctx context.Context, method string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
