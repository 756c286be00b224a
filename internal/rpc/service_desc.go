package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "tariffwatch.v1.ReviewService"

// Full method names.
const (
	ReviewService_Classify_FullMethodName     = "/" + ServiceName + "/Classify"
	ReviewService_ListReviews_FullMethodName  = "/" + ServiceName + "/ListReviews"
	ReviewService_GetReview_FullMethodName    = "/" + ServiceName + "/GetReview"
	ReviewService_DecideReview_FullMethodName = "/" + ServiceName + "/DecideReview"
	ReviewService_Report_FullMethodName       = "/" + ServiceName + "/Report"
	ReviewService_Summary_FullMethodName      = "/" + ServiceName + "/Summary"
	ReviewService_VerifyAudit_FullMethodName  = "/" + ServiceName + "/VerifyAudit"
)

// ReviewServiceServer is the server API for ReviewService.
type ReviewServiceServer interface {
	Classify(ctx context.Context, req *ClassifyRequest) (*ClassifyResponse, error)
	ListReviews(ctx context.Context, req *ListReviewsRequest) (*ListReviewsResponse, error)
	GetReview(ctx context.Context, req *GetReviewRequest) (*GetReviewResponse, error)
	DecideReview(ctx context.Context, req *DecideReviewRequest) (*DecideReviewResponse, error)
	Report(ctx context.Context, req *ReportRequest) (*ReportResponse, error)
	Summary(ctx context.Context, req *SummaryRequest) (*SummaryResponse, error)
	VerifyAudit(ctx context.Context, req *VerifyAuditRequest) (*VerifyAuditResponse, error)
}

// RegisterReviewServiceServer registers srv on s.
func RegisterReviewServiceServer(s grpc.ServiceRegistrar, srv ReviewServiceServer) {
	s.RegisterService(&ReviewService_ServiceDesc, srv)
}

// ReviewService_ServiceDesc is the grpc.ServiceDesc for ReviewService.
var ReviewService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReviewServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: _ReviewService_Classify_Handler},
		{MethodName: "ListReviews", Handler: _ReviewService_ListReviews_Handler},
		{MethodName: "GetReview", Handler: _ReviewService_GetReview_Handler},
		{MethodName: "DecideReview", Handler: _ReviewService_DecideReview_Handler},
		{MethodName: "Report", Handler: _ReviewService_Report_Handler},
		{MethodName: "Summary", Handler: _ReviewService_Summary_Handler},
		{MethodName: "VerifyAudit", Handler: _ReviewService_VerifyAudit_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tariffwatch/v1/review.proto",
}

// unary wires one method through the optional interceptor.
func unary[Req, Resp any](
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
	fullMethod string, call func(ReviewServiceServer, context.Context, *Req) (*Resp, error),
) (any, error) {
	req := new(Req)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return call(srv.(ReviewServiceServer), ctx, req)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: fullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return call(srv.(ReviewServiceServer), ctx, req.(*Req))
	}
	return interceptor(ctx, req, info, handler)
}

func _ReviewService_Classify_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_Classify_FullMethodName, ReviewServiceServer.Classify)
}

func _ReviewService_ListReviews_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_ListReviews_FullMethodName, ReviewServiceServer.ListReviews)
}

func _ReviewService_GetReview_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_GetReview_FullMethodName, ReviewServiceServer.GetReview)
}

func _ReviewService_DecideReview_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_DecideReview_FullMethodName, ReviewServiceServer.DecideReview)
}

func _ReviewService_Report_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_Report_FullMethodName, ReviewServiceServer.Report)
}

func _ReviewService_Summary_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_Summary_FullMethodName, ReviewServiceServer.Summary)
}

func _ReviewService_VerifyAudit_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return unary(srv, ctx, dec, interceptor, ReviewService_VerifyAudit_FullMethodName, ReviewServiceServer.VerifyAudit)
}

// ReviewServiceClient is the client API for ReviewService.
type ReviewServiceClient interface {
	Classify(ctx context.Context, in *ClassifyRequest, opts ...grpc.CallOption) (*ClassifyResponse, error)
	ListReviews(ctx context.Context, in *ListReviewsRequest, opts ...grpc.CallOption) (*ListReviewsResponse, error)
	GetReview(ctx context.Context, in *GetReviewRequest, opts ...grpc.CallOption) (*GetReviewResponse, error)
	DecideReview(ctx context.Context, in *DecideReviewRequest, opts ...grpc.CallOption) (*DecideReviewResponse, error)
	Report(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ReportResponse, error)
	Summary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error)
	VerifyAudit(ctx context.Context, in *VerifyAuditRequest, opts ...grpc.CallOption) (*VerifyAuditResponse, error)
}

type reviewServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReviewServiceClient returns a client that sends every call with the JSON codec.
func NewReviewServiceClient(cc grpc.ClientConnInterface) ReviewServiceClient {
	return &reviewServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reviewServiceClient) Classify(ctx context.Context, in *ClassifyRequest, opts ...grpc.CallOption) (*ClassifyResponse, error) {
	return invoke[ClassifyResponse](ctx, c.cc, ReviewService_Classify_FullMethodName, in, opts)
}

func (c *reviewServiceClient) ListReviews(ctx context.Context, in *ListReviewsRequest, opts ...grpc.CallOption) (*ListReviewsResponse, error) {
	return invoke[ListReviewsResponse](ctx, c.cc, ReviewService_ListReviews_FullMethodName, in, opts)
}

func (c *reviewServiceClient) GetReview(ctx context.Context, in *GetReviewRequest, opts ...grpc.CallOption) (*GetReviewResponse, error) {
	return invoke[GetReviewResponse](ctx, c.cc, ReviewService_GetReview_FullMethodName, in, opts)
}

func (c *reviewServiceClient) DecideReview(ctx context.Context, in *DecideReviewRequest, opts ...grpc.CallOption) (*DecideReviewResponse, error) {
	return invoke[DecideReviewResponse](ctx, c.cc, ReviewService_DecideReview_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Report(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*ReportResponse, error) {
	return invoke[ReportResponse](ctx, c.cc, ReviewService_Report_FullMethodName, in, opts)
}

func (c *reviewServiceClient) Summary(ctx context.Context, in *SummaryRequest, opts ...grpc.CallOption) (*SummaryResponse, error) {
	return invoke[SummaryResponse](ctx, c.cc, ReviewService_Summary_FullMethodName, in, opts)
}

func (c *reviewServiceClient) VerifyAudit(ctx context.Context, in *VerifyAuditRequest, opts ...grpc.CallOption) (*VerifyAuditResponse, error) {
	return invoke[VerifyAuditResponse](ctx, c.cc, ReviewService_VerifyAudit_FullMethodName, in, opts)
}
