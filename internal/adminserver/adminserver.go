// ============================================================================
// Corosched Admin Server - gRPC Introspection & Control
// ============================================================================
//
// Package: internal/adminserver
// File: adminserver.go
// Purpose: Expose scheduler introspection and lifecycle control over gRPC
//
// Service Surface:
//   Stats(Empty) returns (google.protobuf.Struct)
//     Snapshot of worker_count, free_workers, temp_workers and queue_depth.
//   Shutdown(Empty) returns (Empty)
//     Requests a graceful scheduler shutdown; does not block for it to finish.
//
// Wire Format:
//   Only the well-known protobuf types (emptypb.Empty, structpb.Struct) are
//   used on the wire, so the service can be wired up with a hand-written
//   grpc.ServiceDesc instead of protoc-generated stubs -- there is no
//   custom message schema to compile.
//
// ============================================================================

package adminserver

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/beaversched/corosched/pkg/coro"
)

// Server implements the Admin gRPC service against a single Scheduler.
type Server struct {
	sched *coro.Scheduler
	log   *slog.Logger
}

// New creates an admin server backed by sched.
func New(sched *coro.Scheduler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{sched: sched, log: log}
}

// Stats returns a point-in-time snapshot of scheduler occupancy.
func (s *Server) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"worker_count": float64(s.sched.WorkerCount()),
		"free_workers": float64(s.sched.FreeWorkerCount()),
		"temp_workers": float64(s.sched.TempWorkerCount()),
		"queue_depth":  float64(s.sched.QueueDepth()),
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Shutdown requests a graceful scheduler shutdown in the background and
// returns immediately; the caller is expected to poll Stats or simply
// disconnect.
func (s *Server) Shutdown(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.log.Info("admin: shutdown requested")
	go func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.sched.Shutdown(shutdownCtx); err != nil {
			s.log.Error("admin: scheduler shutdown failed", "error", err)
		}
	}()
	return &emptypb.Empty{}, nil
}

// serviceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit for an "Admin" service defined only in terms of well-known
// types; there is no .proto file to compile since the message schema is
// entirely google.protobuf.Empty / google.protobuf.Struct.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: "corosched.admin.v1.Admin",
	HandlerType: (*adminServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Stats",
			Handler:    statsHandler,
		},
		{
			MethodName: "Shutdown",
			Handler:    shutdownHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "corosched/admin/v1/admin.proto",
}

// adminServer is the interface the generated handlers dispatch through;
// *Server satisfies it.
type adminServer interface {
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Shutdown(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func statsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(adminServer).Stats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/corosched.admin.v1.Admin/Stats"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(adminServer).Stats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func shutdownHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(adminServer).Shutdown(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/corosched.admin.v1.Admin/Shutdown"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(adminServer).Shutdown(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Register attaches the Admin service to a gRPC server.
func Register(grpcServer *grpc.Server, s *Server) {
	grpcServer.RegisterService(&serviceDesc, s)
}

// Client is a hand-written counterpart to what protoc-gen-go-grpc would
// emit as AdminClient, calling through grpc.ClientConn.Invoke directly
// since there is no generated stub to wrap.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection for calling the Admin service.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Stats calls the Admin service's Stats RPC.
func (c *Client) Stats(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/corosched.admin.v1.Admin/Stats", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Shutdown calls the Admin service's Shutdown RPC.
func (c *Client) Shutdown(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, "/corosched.admin.v1.Admin/Shutdown", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
