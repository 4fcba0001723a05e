package remote

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/golang/glog"
	"github.com/sbezverk/msort/sort"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	MaxRcvMsgSize = 64 * 1024 * 1024
	// MaxWorkers caps the workers a single request may ask for
	MaxWorkers = 256
)

// Server is a running msort.Sorter gRPC service.
type Server interface {
	Addr() net.Addr
	Stop()
}

// ServerOption configures a Server.
type ServerOption func(*grpcSrv)

// WithMaxRecvMsgSize sets the largest request the server accepts, in bytes.
func WithMaxRecvMsgSize(n int) ServerOption {
	return func(srv *grpcSrv) { srv.maxRecvMsgSize = n }
}

// WithMaxWorkers caps the number of workers a request may ask for.
func WithMaxWorkers(n int) ServerOption {
	return func(srv *grpcSrv) { srv.maxWorkers = n }
}

var _ Server = &grpcSrv{}
var _ SorterServer = &grpcSrv{}

type grpcSrv struct {
	conn           net.Listener
	gSrv           *grpc.Server
	maxRecvMsgSize int
	maxWorkers     int
}

func (srv *grpcSrv) Addr() net.Addr {
	return srv.conn.Addr()
}

func (srv *grpcSrv) Stop() {
	glog.Infof("Stopping sort server on %s", srv.conn.Addr())
	srv.gSrv.Stop()
	srv.conn.Close()
}

// New starts serving the msort.Sorter service on addr.
func New(addr string, opts ...ServerOption) (Server, error) {
	conn, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewWithListener(conn, opts...), nil
}

// NewWithListener starts serving the msort.Sorter service on conn.
func NewWithListener(conn net.Listener, opts ...ServerOption) Server {
	srv := &grpcSrv{
		conn:           conn,
		maxRecvMsgSize: MaxRcvMsgSize,
		maxWorkers:     MaxWorkers,
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.gSrv = grpc.NewServer(
		grpc.MaxRecvMsgSize(srv.maxRecvMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{Time: time.Second * 30, Timeout: time.Second * 10}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{MinTime: time.Second * 10, PermitWithoutStream: true}),
	)
	RegisterSorterServer(srv.gSrv, srv)

	glog.Infof("Starting sort server on %s", conn.Addr())
	go func() {
		if err := srv.gSrv.Serve(conn); err != nil {
			glog.Errorf("sort server on %s failed with error: %+v", conn.Addr(), err)
		}
	}()

	return srv
}

func (srv *grpcSrv) Sort(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {
	if p, ok := peer.FromContext(ctx); ok {
		glog.V(5).Infof("Incoming sort request from: %s", p.Addr)
	}
	req := &Request{}
	if err := req.Unmarshal(in); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %+v", err)
	}
	strategy, err := sort.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%+v", err)
	}
	if req.Workers > srv.maxWorkers {
		return nil, status.Errorf(codes.InvalidArgument, "%d workers requested, at most %d allowed", req.Workers, srv.maxWorkers)
	}
	sorter, err := sort.NewSorter[float64](strategy, req.Workers)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%+v", err)
	}
	sorted, err := sorter.Sort(req.Values)
	if err != nil {
		if errors.Is(err, sort.ErrTaskFailed) {
			return nil, status.Errorf(codes.Internal, "%+v", err)
		}
		return nil, status.Errorf(codes.Unknown, "%+v", err)
	}
	glog.V(5).Infof("Sorted %d values with strategy %s and %d workers", len(sorted), strategy, req.Workers)

	return marshalValues(sorted), nil
}
