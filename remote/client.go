package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sbezverk/msort/sort"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrBackendUnavailable error returns when the sort service cannot be reached
	ErrBackendUnavailable = errors.New("sort backend unavailable")
	// ErrBackendRejected error returns when the sort service refuses or fails a request
	ErrBackendRejected = errors.New("sort backend rejected request")
)

// Client calls a remote msort.Sorter service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the sort service at addr. Without explicit dial options the
// connection is made without transport security.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to dial %s with error: %v", ErrBackendUnavailable, addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Sort asks the remote service to sort values with strategy and workers.
func (c *Client) Sort(ctx context.Context, strategy sort.Strategy, workers int, values []float64) ([]float64, error) {
	req := &Request{
		Strategy: strategy.String(),
		Workers:  workers,
		Values:   values,
	}
	out := &structpb.ListValue{}
	if err := c.conn.Invoke(ctx, sortMethod, req.Marshal(), out); err != nil {
		switch status.Code(err) {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrBackendRejected, err)
		}
	}
	sorted, err := unmarshalValues(out)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed reply: %v", ErrBackendRejected, err)
	}
	if len(sorted) != len(values) {
		return nil, fmt.Errorf("%w: sent %d values, got %d back", ErrBackendRejected, len(values), len(sorted))
	}

	return sorted, nil
}

// Backend adapts a Client to sort.Backend. A zero Timeout means no deadline.
type Backend struct {
	Client   *Client
	Strategy sort.Strategy
	Workers  int
	Timeout  time.Duration
}

var _ sort.Backend[float64] = &Backend{}

func (b *Backend) Sort(in []float64) ([]float64, error) {
	ctx := context.Background()
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	return b.Client.Sort(ctx, b.Strategy, b.Workers, in)
}
