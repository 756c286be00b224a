// Package client is a thin wrapper over the ReviewService gRPC API that
// converts transport errors back into the model error taxonomy.
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ppiankov/tariffwatch/internal/audit"
	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/rpc"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

const defaultTimeout = 5 * time.Second

// Client connects to a tariffwatch gRPC server.
type Client struct {
	conn     *grpc.ClientConn
	client   rpc.ReviewServiceClient
	callerID string
	timeout  time.Duration
	dialOpts []grpc.DialOption
}

// Option configures a Client.
type Option func(*Client)

// WithCallerID sets the caller identity used for server-side rate limiting.
func WithCallerID(id string) Option {
	return func(c *Client) { c.callerID = id }
}

// WithTimeout sets the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDialOptions appends raw gRPC dial options (used by tests to dial bufconn).
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) { c.dialOpts = append(c.dialOpts, opts...) }
}

// New creates a gRPC client for the given address.
func New(addr string, opts ...Option) (*Client, error) {
	c := &Client{timeout: defaultTimeout}
	for _, o := range opts {
		o(c)
	}

	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, c.dialOpts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tariffwatch server: %w", err)
	}
	c.conn = conn
	c.client = rpc.NewReviewServiceClient(conn)
	return c, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	if c.callerID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, rpc.CallerIDKey, c.callerID)
	}
	return ctx, cancel
}

// Classify submits a product for classification.
func (c *Client) Classify(ctx context.Context, p model.ProductSpecs) (model.ClassificationResult, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.Classify(ctx, &rpc.ClassifyRequest{Product: p})
	if err != nil {
		return model.ClassificationResult{}, rpc.FromStatus(err)
	}
	return resp.Result, nil
}

// ListReviews returns review ticket summaries, newest first.
func (c *Client) ListReviews(ctx context.Context) ([]ticket.Summary, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.ListReviews(ctx, &rpc.ListReviewsRequest{})
	if err != nil {
		return nil, rpc.FromStatus(err)
	}
	return resp.Reviews, nil
}

// GetReview returns one ticket.
func (c *Client) GetReview(ctx context.Context, id string) (ticket.Ticket, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.GetReview(ctx, &rpc.GetReviewRequest{ID: id})
	if err != nil {
		return ticket.Ticket{}, rpc.FromStatus(err)
	}
	return resp.Ticket, nil
}

// Decide records a verdict on an open ticket.
func (c *Client) Decide(ctx context.Context, id string, d ticket.Decision) (ticket.Ticket, audit.Event, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.DecideReview(ctx, &rpc.DecideReviewRequest{
		ID:       id,
		Decision: d.Decision,
		Reviewer: d.Reviewer,
		Notes:    d.Notes,
	})
	if err != nil {
		return ticket.Ticket{}, audit.Event{}, rpc.FromStatus(err)
	}
	return resp.Ticket, resp.Event, nil
}

// Report returns the classification report for a ticket.
func (c *Client) Report(ctx context.Context, id string) (ticket.Report, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.Report(ctx, &rpc.ReportRequest{ID: id})
	if err != nil {
		return ticket.Report{}, rpc.FromStatus(err)
	}
	return resp.Report, nil
}

// Summary returns review counts.
func (c *Client) Summary(ctx context.Context) (ticket.Counts, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.Summary(ctx, &rpc.SummaryRequest{})
	if err != nil {
		return ticket.Counts{}, rpc.FromStatus(err)
	}
	return resp.Counts, nil
}

// VerifyAudit asks the server to verify its audit chain.
func (c *Client) VerifyAudit(ctx context.Context) (audit.VerifyResult, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	resp, err := c.client.VerifyAudit(ctx, &rpc.VerifyAuditRequest{})
	if err != nil {
		return audit.VerifyResult{}, rpc.FromStatus(err)
	}
	return resp.Result, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
