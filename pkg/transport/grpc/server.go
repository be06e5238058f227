package grpc

import (
    "context"
    "crypto/tls"
    "net"
    "time"

    "google.golang.org/grpc"
    "google.golang.org/grpc/credentials"
    "google.golang.org/grpc/health"
    healthpb "google.golang.org/grpc/health/grpc_health_v1"
    "google.golang.org/grpc/keepalive"

    "github.com/amirimatin/go-raftclient/pkg/observability/tracing"
    "github.com/amirimatin/go-raftclient/pkg/transport"
)

// Server implements transport.RPCServer over gRPC using a JSON codec. The
// injected handlers decide the actual reply (success, rejection or NotLeader
// redirect); the server only carries them onto the wire.
type Server struct {
    bind   string
    lis    net.Listener
    srv    *grpc.Server
    tlsCfg *tls.Config
}

func NewServer(bind string) *Server { return &Server{bind: bind} }

// UseTLS enables TLS for the gRPC server using the provided config.
func (s *Server) UseTLS(cfg *tls.Config) *Server { s.tlsCfg = cfg; return s }

// clientProtocolServer defines the methods we expose.
type clientProtocolServer interface {
    Submit(ctx context.Context, in *transport.ClientRequest) (*transport.ClientReply, error)
    SetConfiguration(ctx context.Context, in *transport.SetConfigurationRequest) (*transport.ClientReply, error)
}

type protocolImpl struct {
    submit  transport.SubmitFunc
    setConf transport.SetConfigurationFunc
}

func (p *protocolImpl) Submit(ctx context.Context, in *transport.ClientRequest) (*transport.ClientReply, error) {
    if in == nil { in = &transport.ClientRequest{} }
    ctx, end := tracing.StartSpan(ctx, "grpc.submit")
    defer end()
    out, err := p.submit(ctx, *in)
    if err != nil { return nil, err }
    return &out, nil
}

func (p *protocolImpl) SetConfiguration(ctx context.Context, in *transport.SetConfigurationRequest) (*transport.ClientReply, error) {
    if in == nil { in = &transport.SetConfigurationRequest{} }
    ctx, end := tracing.StartSpan(ctx, "grpc.set_configuration")
    defer end()
    out, err := p.setConf(ctx, *in)
    if err != nil { return nil, err }
    return &out, nil
}

// Service descriptor and handlers (hand-written, no codegen required)
var _Client_serviceDesc = grpc.ServiceDesc{
    ServiceName: "raft.v1.Client",
    HandlerType: (*clientProtocolServer)(nil),
    Methods: []grpc.MethodDesc{
        { MethodName: "Submit", Handler: _Client_Submit_Handler },
        { MethodName: "SetConfiguration", Handler: _Client_SetConfiguration_Handler },
    },
}

func _Client_Submit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
    in := new(transport.ClientRequest)
    if err := dec(in); err != nil { return nil, err }
    if interceptor == nil { return srv.(clientProtocolServer).Submit(ctx, in) }
    info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/raft.v1.Client/Submit"}
    handler := func(ctx context.Context, req interface{}) (interface{}, error) {
        return srv.(clientProtocolServer).Submit(ctx, req.(*transport.ClientRequest))
    }
    return interceptor(ctx, in, info, handler)
}

func _Client_SetConfiguration_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
    in := new(transport.SetConfigurationRequest)
    if err := dec(in); err != nil { return nil, err }
    if interceptor == nil { return srv.(clientProtocolServer).SetConfiguration(ctx, in) }
    info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/raft.v1.Client/SetConfiguration"}
    handler := func(ctx context.Context, req interface{}) (interface{}, error) {
        return srv.(clientProtocolServer).SetConfiguration(ctx, req.(*transport.SetConfigurationRequest))
    }
    return interceptor(ctx, in, info, handler)
}

func (s *Server) Start(ctx context.Context, submit transport.SubmitFunc, setConf transport.SetConfigurationFunc) error {
    lis, err := net.Listen("tcp", s.bind)
    if err != nil { return err }
    s.lis = lis
    // Force JSON codec to avoid requiring protobuf types
    var opts []grpc.ServerOption
    opts = append(opts, grpc.ForceServerCodec(jsonCodec{}))
    opts = append(opts, grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{MinTime: 5 * time.Second, PermitWithoutStream: true}))
    opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{Time: 30 * time.Second, Timeout: 10 * time.Second}))
    if s.tlsCfg != nil { opts = append(opts, grpc.Creds(credentials.NewTLS(s.tlsCfg))) }
    srv := grpc.NewServer(opts...)
    s.srv = srv
    // Health service (always serving for now)
    healthSrv := health.NewServer()
    healthpb.RegisterHealthServer(srv, healthSrv)
    // Register the client protocol service
    srv.RegisterService(&_Client_serviceDesc, &protocolImpl{submit: submit, setConf: setConf})

    go func() {
        <-ctx.Done()
        // Graceful stop with a small timeout fallback
        ch := make(chan struct{})
        go func() { srv.GracefulStop(); close(ch) }()
        select {
        case <-ch:
        case <-time.After(2 * time.Second):
            srv.Stop()
        }
    }()
    go func() { _ = srv.Serve(lis) }()
    return nil
}

// Addr returns the bound listen address. After Start it reflects the actual
// port, which matters when binding to ":0" in tests.
func (s *Server) Addr() string {
    if s.lis != nil { return s.lis.Addr().String() }
    return s.bind
}

func (s *Server) Stop(ctx context.Context) error {
    if s.srv == nil { return nil }
    ch := make(chan struct{})
    go func() { s.srv.GracefulStop(); close(ch) }()
    select {
    case <-ch:
    case <-ctx.Done():
        s.srv.Stop()
    }
    s.srv = nil
    if s.lis != nil { _ = s.lis.Close(); s.lis = nil }
    return nil
}

var _ transport.RPCServer = (*Server)(nil)
