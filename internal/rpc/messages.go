package rpc

import (
	"github.com/ppiankov/tariffwatch/internal/audit"
	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

type ClassifyRequest struct {
	Product model.ProductSpecs `json:"product"`
}

type ClassifyResponse struct {
	Result model.ClassificationResult `json:"result"`
}

type ListReviewsRequest struct{}

type ListReviewsResponse struct {
	Reviews []ticket.Summary `json:"reviews"`
}

type GetReviewRequest struct {
	ID string `json:"id"`
}

type GetReviewResponse struct {
	Ticket ticket.Ticket `json:"ticket"`
}

type DecideReviewRequest struct {
	ID       string        `json:"id"`
	Decision ticket.Status `json:"decision"`
	Reviewer string        `json:"reviewer"`
	Notes    string        `json:"notes"`
}

type DecideReviewResponse struct {
	Ticket ticket.Ticket `json:"ticket"`
	Event  audit.Event   `json:"event"`
}

type ReportRequest struct {
	ID string `json:"id"`
}

type ReportResponse struct {
	Report ticket.Report `json:"report"`
}

type SummaryRequest struct{}

type SummaryResponse struct {
	Counts ticket.Counts `json:"counts"`
}

type VerifyAuditRequest struct{}

type VerifyAuditResponse struct {
	Result audit.VerifyResult `json:"result"`
}
