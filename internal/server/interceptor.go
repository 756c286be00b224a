package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/ppiankov/tariffwatch/internal/rpc"
)

// Rate-limited operation names, as used in the rate_limit config section.
const (
	OpClassify = "classify"
	OpDecide   = "decide"
	OpRead     = "read"
)

func operationFor(fullMethod string) string {
	switch fullMethod {
	case rpc.ReviewService_Classify_FullMethodName:
		return OpClassify
	case rpc.ReviewService_DecideReview_FullMethodName:
		return OpDecide
	default:
		return OpRead
	}
}

// unaryInterceptor assigns a request id, enforces per-caller rate limits,
// records metrics and maps service errors to gRPC status codes.
func (s *Server) unaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	reqID := incoming(ctx, rpc.RequestIDKey)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	caller := callerID(ctx)
	grpc.SetHeader(ctx, metadata.Pairs(rpc.RequestIDKey, reqID))

	logger := s.logger.With(
		slog.String("request_id", reqID),
		slog.String("method", info.FullMethod),
		slog.String("caller", caller),
	)

	var (
		resp any
		err  error
	)
	if check := s.limiter.Allow(caller, operationFor(info.FullMethod)); check.Exceeded {
		err = check.Err()
	} else {
		resp, err = handler(ctx, req)
	}

	code := rpc.Code(err)
	elapsed := time.Since(start)
	s.metrics.ObserveRPC(info.FullMethod, code.String(), elapsed.Seconds())

	if err != nil {
		level := slog.LevelWarn
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "rpc failed", "code", code.String(), "error", err, "duration", elapsed)
		return nil, rpc.ToStatus(err)
	}
	logger.Debug("rpc ok", "duration", elapsed)
	return resp, nil
}

func incoming(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// callerID identifies the caller for rate limiting: an explicit caller id
// from metadata, else the peer host.
func callerID(ctx context.Context) string {
	if id := incoming(ctx, rpc.CallerIDKey); id != "" {
		return id
	}
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
