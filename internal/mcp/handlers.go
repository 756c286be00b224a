package mcp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

// --- Input/Output types ---

// ClassifyInput defines parameters for the tariff_classify tool.
type ClassifyInput struct {
	Name               string             `json:"name" jsonschema:"product name"`
	Description        string             `json:"description" jsonschema:"technical description of the product"`
	Materials          map[string]float64 `json:"materials,omitempty" jsonschema:"material composition as name to fraction in [0,1]"`
	Value              float64            `json:"value" jsonschema:"declared customs value"`
	OriginCountry      string             `json:"origin_country" jsonschema:"ISO 3166-1 alpha-2 country of origin"`
	DestinationCountry string             `json:"destination_country" jsonschema:"ISO 3166-1 alpha-2 destination country"`
	IntendedUse        string             `json:"intended_use" jsonschema:"intended end use"`
}

func (in ClassifyInput) product() model.ProductSpecs {
	return model.ProductSpecs{
		Name:               in.Name,
		Description:        in.Description,
		Materials:          in.Materials,
		Value:              in.Value,
		OriginCountry:      in.OriginCountry,
		DestinationCountry: in.DestinationCountry,
		IntendedUse:        in.IntendedUse,
	}
}

// ClassifyOutput is the classification result, or the refusal reason.
type ClassifyOutput struct {
	SuggestedHSCode     string    `json:"suggested_hs_code,omitempty"`
	DutyRate            string    `json:"duty_rate,omitempty"`
	ReasoningManifesto  []string  `json:"reasoning_manifesto,omitempty"`
	RiskScore           float64   `json:"risk_score"`
	Confidence          float64   `json:"confidence"`
	ConfidenceInterval  []float64 `json:"confidence_interval,omitempty"`
	RequiresHumanReview bool      `json:"requires_human_review"`
	ReviewReasons       []string  `json:"review_reasons,omitempty"`
	LegalCitations      []string  `json:"legal_citations,omitempty"`
	LegalDisclaimer     string    `json:"legal_disclaimer,omitempty"`
	EngineeringTip      string    `json:"engineering_tip,omitempty"`
	TotalLandedCost     float64   `json:"total_landed_cost"`
	ReasoningLogRef     string    `json:"reasoning_log_ref,omitempty"`
	ReviewTicketID      string    `json:"review_ticket_id,omitempty"`
	Error               string    `json:"error,omitempty"`
}

// ReviewsInput defines parameters for the tariff_reviews tool.
type ReviewsInput struct {
	ID string `json:"id,omitempty" jsonschema:"review ticket id, omit to list all tickets"`
}

// ReviewsOutput lists tickets or carries a single report.
type ReviewsOutput struct {
	Reviews []ReviewItem  `json:"reviews,omitempty"`
	Report  *ReportOutput `json:"report,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// ReviewItem describes a single review ticket.
type ReviewItem struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at_utc"`
	ReviewReasons []string `json:"review_reasons"`
}

// ReportOutput is the classification report of one ticket.
type ReportOutput struct {
	TicketID              string    `json:"ticket_id"`
	Status                string    `json:"status"`
	Product               string    `json:"product"`
	OriginCountry         string    `json:"origin_country"`
	DestinationCountry    string    `json:"destination_country"`
	SuggestedHSCode       string    `json:"suggested_hs_code"`
	DutyRate              string    `json:"duty_rate"`
	Confidence            float64   `json:"confidence"`
	ConfidenceInterval    []float64 `json:"confidence_interval"`
	WhyThisClassification []string  `json:"why_this_classification"`
	ReviewReasons         []string  `json:"review_reasons"`
	LegalDisclaimer       string    `json:"legal_disclaimer"`
	Reviewer              string    `json:"reviewer,omitempty"`
	DecisionNotes         string    `json:"decision_notes,omitempty"`
	DecidedAt             string    `json:"decided_at_utc,omitempty"`
}

// DecideInput defines parameters for the tariff_review_decide tool.
type DecideInput struct {
	ID       string `json:"id" jsonschema:"review ticket id"`
	Decision string `json:"decision" jsonschema:"approved or rejected"`
	Reviewer string `json:"reviewer" jsonschema:"name of the accountable reviewer"`
	Notes    string `json:"notes,omitempty" jsonschema:"decision notes"`
}

// DecideOutput confirms the decision.
type DecideOutput struct {
	ID        string `json:"id,omitempty"`
	Status    string `json:"status,omitempty"`
	Reviewer  string `json:"reviewer,omitempty"`
	DecidedAt string `json:"decided_at_utc,omitempty"`
	EventHash string `json:"event_hash,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SummaryInput takes no parameters.
type SummaryInput struct{}

// SummaryOutput reports ticket counts and audit chain health.
type SummaryOutput struct {
	Open       int    `json:"open"`
	Approved   int    `json:"approved"`
	Rejected   int    `json:"rejected"`
	Total      int    `json:"total"`
	AuditValid bool   `json:"audit_valid"`
	AuditLines int    `json:"audit_lines"`
	AuditError string `json:"audit_error,omitempty"`
}

// --- Handlers ---

func (s *Server) handleClassify(ctx context.Context, req *mcpsdk.CallToolRequest, input ClassifyInput) (*mcpsdk.CallToolResult, ClassifyOutput, error) {
	logger := s.logger.With("request_id", uuid.NewString(), "tool", "tariff_classify")

	res, err := s.svc.Classify(ctx, input.product())
	if err != nil {
		if refusal(err) {
			logger.Info("classification refused", "error", err)
			return errorResult(err), ClassifyOutput{Error: err.Error()}, nil
		}
		logger.Error("classification failed", "error", err)
		return nil, ClassifyOutput{}, err
	}

	logger.Debug("classified", "requires_human_review", res.RequiresHumanReview)
	return nil, classifyOutput(res), nil
}

func (s *Server) handleReviews(ctx context.Context, req *mcpsdk.CallToolRequest, input ReviewsInput) (*mcpsdk.CallToolResult, ReviewsOutput, error) {
	if input.ID != "" {
		r, err := s.svc.Report(ctx, input.ID)
		if err != nil {
			if refusal(err) {
				return errorResult(err), ReviewsOutput{Error: err.Error()}, nil
			}
			return nil, ReviewsOutput{}, err
		}
		return nil, ReviewsOutput{Report: reportOutput(r)}, nil
	}

	list, err := s.svc.ListReviews(ctx)
	if err != nil {
		return nil, ReviewsOutput{}, err
	}
	items := make([]ReviewItem, 0, len(list))
	for _, sum := range list {
		items = append(items, ReviewItem{
			ID:            sum.ID,
			Status:        string(sum.Status),
			CreatedAt:     sum.CreatedAt,
			ReviewReasons: sum.ReviewReasons,
		})
	}
	return nil, ReviewsOutput{Reviews: items}, nil
}

func (s *Server) handleDecide(ctx context.Context, req *mcpsdk.CallToolRequest, input DecideInput) (*mcpsdk.CallToolResult, DecideOutput, error) {
	logger := s.logger.With("request_id", uuid.NewString(), "tool", "tariff_review_decide")

	t, ev, err := s.svc.Decide(ctx, input.ID, ticket.Decision{
		Decision: ticket.Status(input.Decision),
		Reviewer: input.Reviewer,
		Notes:    input.Notes,
	})
	if err != nil {
		if refusal(err) {
			logger.Info("decision refused", "ticket_id", input.ID, "error", err)
			return errorResult(err), DecideOutput{Error: err.Error()}, nil
		}
		logger.Error("decision failed", "ticket_id", input.ID, "error", err)
		return nil, DecideOutput{}, err
	}

	out := DecideOutput{
		ID:        t.ID,
		Status:    string(t.Status),
		Reviewer:  t.Reviewer,
		EventHash: ev.EventHash,
	}
	if t.DecidedAt != nil {
		out.DecidedAt = *t.DecidedAt
	}
	return nil, out, nil
}

func (s *Server) handleSummary(ctx context.Context, req *mcpsdk.CallToolRequest, input SummaryInput) (*mcpsdk.CallToolResult, SummaryOutput, error) {
	counts, err := s.svc.Summary(ctx)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	vr, err := s.svc.VerifyAudit(ctx)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{
		Open:       counts.Open,
		Approved:   counts.Approved,
		Rejected:   counts.Rejected,
		Total:      counts.Total,
		AuditValid: vr.Valid,
		AuditLines: vr.Lines,
		AuditError: vr.Error,
	}, nil
}

// --- Helpers ---

// refusal reports whether err is the caller's fault and should be returned as
// a tool error rather than a protocol error.
func refusal(err error) bool {
	return errors.Is(err, model.ErrInvalidInput) ||
		errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrConflict)
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
	}
}

func classifyOutput(r model.ClassificationResult) ClassifyOutput {
	out := ClassifyOutput{
		SuggestedHSCode:     r.SuggestedHSCode,
		DutyRate:            r.DutyRate,
		ReasoningManifesto:  r.ReasoningManifesto,
		RiskScore:           r.RiskScore,
		Confidence:          r.Confidence,
		ConfidenceInterval:  []float64{r.ConfidenceInterval.Lo, r.ConfidenceInterval.Hi},
		RequiresHumanReview: r.RequiresHumanReview,
		ReviewReasons:       r.ReviewReasons,
		LegalCitations:      r.LegalCitations,
		LegalDisclaimer:     r.LegalDisclaimer,
		TotalLandedCost:     r.TotalLandedCost,
	}
	if r.EngineeringTip != nil {
		out.EngineeringTip = *r.EngineeringTip
	}
	if r.ReasoningLogRef != nil {
		out.ReasoningLogRef = *r.ReasoningLogRef
	}
	if r.ReviewTicketID != nil {
		out.ReviewTicketID = *r.ReviewTicketID
	}
	return out
}

func reportOutput(r ticket.Report) *ReportOutput {
	out := &ReportOutput{
		TicketID:              r.TicketID,
		Status:                string(r.Status),
		Product:               r.Product,
		OriginCountry:         r.OriginCountry,
		DestinationCountry:    r.DestinationCountry,
		SuggestedHSCode:       r.SuggestedHSCode,
		DutyRate:              r.DutyRate,
		Confidence:            r.Confidence,
		ConfidenceInterval:    []float64{r.ConfidenceInterval.Lo, r.ConfidenceInterval.Hi},
		WhyThisClassification: r.WhyThisClassification,
		ReviewReasons:         r.ReviewReasons,
		LegalDisclaimer:       r.LegalDisclaimer,
		Reviewer:              r.Reviewer,
		DecisionNotes:         r.DecisionNotes,
	}
	if r.DecidedAt != nil {
		out.DecidedAt = *r.DecidedAt
	}
	return out
}
