// File: internal/service/grpc.go
//
// Hand-written gRPC bindings for the PluginService. The wire schema is an
// external contract (see api/schemas); the service descriptor and client
// below are maintained by hand against it, with messages carried by the
// JSON codec in codec.go.
package service

import (
	"context"

	"google.golang.org/grpc"

	"github.com/wisdark/tsunami-security-scanner/api/schemas"
)

// ServiceName is the fully qualified name of the plugin service.
const ServiceName = "tsunami.plugin_server.PluginService"

const (
	runMethod         = "/" + ServiceName + "/Run"
	listPluginsMethod = "/" + ServiceName + "/ListPlugins"
)

// PluginServiceServer is the server contract of the plugin service.
type PluginServiceServer interface {
	Run(ctx context.Context, req *schemas.RunRequest) (*schemas.RunResponse, error)
	ListPlugins(ctx context.Context, req *schemas.ListPluginsRequest) (*schemas.ListPluginsResponse, error)
}

// RegisterPluginServiceServer registers srv on s under the plugin service
// descriptor.
func RegisterPluginServiceServer(s grpc.ServiceRegistrar, srv PluginServiceServer) {
	s.RegisterService(&pluginServiceDesc, srv)
}

var pluginServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PluginServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Run",
			Handler:    runHandler,
		},
		{
			MethodName: "ListPlugins",
			Handler:    listPluginsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "plugin_service.proto",
}

func runHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(schemas.RunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PluginServiceServer).Run(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: runMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PluginServiceServer).Run(ctx, req.(*schemas.RunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listPluginsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(schemas.ListPluginsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PluginServiceServer).ListPlugins(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listPluginsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PluginServiceServer).ListPlugins(ctx, req.(*schemas.ListPluginsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// PluginServiceClient is the client contract of the plugin service.
type PluginServiceClient interface {
	Run(ctx context.Context, req *schemas.RunRequest, opts ...grpc.CallOption) (*schemas.RunResponse, error)
	ListPlugins(ctx context.Context, req *schemas.ListPluginsRequest, opts ...grpc.CallOption) (*schemas.ListPluginsResponse, error)
}

type pluginServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPluginServiceClient returns a client speaking the plugin service's JSON
// content-subtype over cc.
func NewPluginServiceClient(cc grpc.ClientConnInterface) PluginServiceClient {
	return &pluginServiceClient{cc: cc}
}

func (c *pluginServiceClient) Run(ctx context.Context, req *schemas.RunRequest, opts ...grpc.CallOption) (*schemas.RunResponse, error) {
	out := new(schemas.RunResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, runMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pluginServiceClient) ListPlugins(ctx context.Context, req *schemas.ListPluginsRequest, opts ...grpc.CallOption) (*schemas.ListPluginsResponse, error) {
	out := new(schemas.ListPluginsResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, listPluginsMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
