// Package server exposes the classification service over gRPC.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/ppiankov/tariffwatch/internal/classify"
	"github.com/ppiankov/tariffwatch/internal/logging"
	"github.com/ppiankov/tariffwatch/internal/metrics"
	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/policy"
	"github.com/ppiankov/tariffwatch/internal/ratelimit"
	"github.com/ppiankov/tariffwatch/internal/rpc"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

// Config holds gRPC server configuration.
type Config struct {
	PolicyPath string
	RateLimit  ratelimit.RateLimitConfig
}

// Options carries optional collaborators.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Tracker holds rate-limit state; nil gets a private tracker.
	Tracker *ratelimit.Tracker
}

// Server implements the ReviewService gRPC server.
type Server struct {
	svc     *classify.Service
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter

	grpcServer *grpc.Server
}

var _ rpc.ReviewServiceServer = (*Server)(nil)

// New creates a gRPC server around svc.
func New(svc *classify.Service, cfg Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		svc:     svc,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "grpc")),
		metrics: opts.Metrics,
		limiter: ratelimit.NewLimiter(cfg.RateLimit, opts.Tracker),
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.unaryInterceptor))
	rpc.RegisterReviewServiceServer(s.grpcServer, s)
	return s
}

// Serve serves on the given listener. Blocks until stopped.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("serving", "addr", lis.Addr().String())
	return s.grpcServer.Serve(lis)
}

// GracefulStop gracefully shuts down the gRPC server.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// ReloadPolicy re-reads the policy file and swaps it into the service.
// Called by the hot-reloader on file change. On error the active policy is kept.
func (s *Server) ReloadPolicy() error {
	cfg, hash, err := policy.LoadConfigWithHash(s.cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to reload policy config: %w", err)
	}
	s.svc.SetPolicy(cfg, hash)
	return nil
}

// Classify implements the Classify RPC.
func (s *Server) Classify(ctx context.Context, req *rpc.ClassifyRequest) (*rpc.ClassifyResponse, error) {
	res, err := s.svc.Classify(ctx, req.Product)
	if err != nil {
		return nil, err
	}
	return &rpc.ClassifyResponse{Result: res}, nil
}

// ListReviews implements the ListReviews RPC.
func (s *Server) ListReviews(ctx context.Context, _ *rpc.ListReviewsRequest) (*rpc.ListReviewsResponse, error) {
	list, err := s.svc.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.ListReviewsResponse{Reviews: list}, nil
}

// GetReview implements the GetReview RPC.
func (s *Server) GetReview(ctx context.Context, req *rpc.GetReviewRequest) (*rpc.GetReviewResponse, error) {
	t, err := s.svc.GetReview(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &rpc.GetReviewResponse{Ticket: t}, nil
}

// DecideReview implements the DecideReview RPC.
func (s *Server) DecideReview(ctx context.Context, req *rpc.DecideReviewRequest) (*rpc.DecideReviewResponse, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("%w: review id is required", model.ErrInvalidInput)
	}
	t, ev, err := s.svc.Decide(ctx, req.ID, ticket.Decision{
		Decision: req.Decision,
		Reviewer: req.Reviewer,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &rpc.DecideReviewResponse{Ticket: t, Event: ev}, nil
}

// Report implements the Report RPC.
func (s *Server) Report(ctx context.Context, req *rpc.ReportRequest) (*rpc.ReportResponse, error) {
	r, err := s.svc.Report(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &rpc.ReportResponse{Report: r}, nil
}

// Summary implements the Summary RPC.
func (s *Server) Summary(ctx context.Context, _ *rpc.SummaryRequest) (*rpc.SummaryResponse, error) {
	c, err := s.svc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.SummaryResponse{Counts: c}, nil
}

// VerifyAudit implements the VerifyAudit RPC.
func (s *Server) VerifyAudit(ctx context.Context, _ *rpc.VerifyAuditRequest) (*rpc.VerifyAuditResponse, error) {
	r, err := s.svc.VerifyAudit(ctx)
	if err != nil {
		return nil, err
	}
	return &rpc.VerifyAuditResponse{Result: r}, nil
}
