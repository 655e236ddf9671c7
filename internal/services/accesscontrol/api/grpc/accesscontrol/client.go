package accesscontrol

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/bookstore/internal/platform/errors"
	"github.com/louisbranch/bookstore/internal/platform/timeouts"
)

// Client calls the access-control service. It satisfies the web tier's
// sign-in contract.
type Client struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewClient creates a Client over conn with the default request timeout.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn, timeout: timeouts.GRPCRequest}
}

// SignIn forwards the pair verbatim and returns the verdict. Transport and
// server failures come back as errors, never as a false verdict.
func (c *Client) SignIn(ctx context.Context, username, password string) (bool, error) {
	if c == nil || c.conn == nil {
		return false, fmt.Errorf("access-control client is not configured")
	}
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldUsername: structpb.NewStringValue(username),
		fieldPassword: structpb.NewStringValue(password),
	}}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out := new(wrapperspb.BoolValue)
	if err := c.conn.Invoke(ctx, signInMethod, req, out); err != nil {
		return false, fmt.Errorf("sign in: %w", apperrors.FromGRPCStatus(err))
	}
	return out.GetValue(), nil
}
