// Package classify runs the classification-and-review workflow: it scores a
// product, assembles the stub result, opens review tickets when required and
// records every outcome in the audit trail.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ppiankov/tariffwatch/internal/alert"
	"github.com/ppiankov/tariffwatch/internal/audit"
	"github.com/ppiankov/tariffwatch/internal/logging"
	"github.com/ppiankov/tariffwatch/internal/metrics"
	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/policy"
	"github.com/ppiankov/tariffwatch/internal/ticket"
)

// Tickets is the review ticket store used by the service.
type Tickets interface {
	Create(product model.ProductSpecs, response model.ClassificationResult, commit ticket.CommitFunc) (ticket.Ticket, error)
	Get(id string) (ticket.Ticket, error)
	Decide(id string, d ticket.Decision, commit ticket.CommitFunc) (ticket.Ticket, error)
	List() ([]ticket.Summary, error)
	Counts() (ticket.Counts, error)
	Report(id string) (ticket.Report, error)
}

// AuditLog is the append side of the audit trail.
type AuditLog interface {
	Append(eventType string, payload any) (audit.Event, error)
	Path() string
}

// Options carries optional collaborators. Zero values disable the concern.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Alerts  *alert.Dispatcher
}

// Service is the classification workflow. It is safe for concurrent use.
type Service struct {
	tickets Tickets
	audit   AuditLog
	logger  *slog.Logger
	metrics *metrics.Metrics
	alerts  *alert.Dispatcher

	mu         sync.RWMutex
	policy     *policy.Config
	policyHash string
}

// New creates a Service. A nil policy uses policy.DefaultConfig.
func New(tickets Tickets, log AuditLog, pol *policy.Config, policyHash string, opts Options) *Service {
	if pol == nil {
		pol = policy.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		tickets:    tickets,
		audit:      log,
		logger:     logger.With(slog.String("component", "classify")),
		metrics:    opts.Metrics,
		alerts:     opts.Alerts,
		policy:     pol,
		policyHash: policyHash,
	}
}

// SetPolicy swaps the active review policy. In-flight classifications keep
// the policy they started with.
func (s *Service) SetPolicy(cfg *policy.Config, hash string) {
	s.mu.Lock()
	s.policy = cfg
	s.policyHash = hash
	s.mu.Unlock()
	s.logger.Info("policy updated", "policy_hash", hash, "review_threshold", cfg.ReviewThreshold)
}

// Policy returns the active review policy and its hash.
func (s *Service) Policy() (*policy.Config, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy, s.policyHash
}

// AuditPath returns the audit trail location.
func (s *Service) AuditPath() string {
	return s.audit.Path()
}

// classificationPayload is the audit record of one classification.
type classificationPayload struct {
	Request  model.ProductSpecs         `json:"request"`
	Response model.ClassificationResult `json:"response"`
	Policy   policyRecord               `json:"policy"`
}

type policyRecord struct {
	ReviewThreshold     float64  `json:"human_in_the_loop_threshold"`
	PolicyHash          string   `json:"policy_hash"`
	RequiresHumanReview bool     `json:"requires_human_review"`
	ReviewReasons       []string `json:"review_reasons"`
	LegalDisclaimer     string   `json:"legal_disclaimer"`
}

// decisionPayload is the audit record of one review decision.
type decisionPayload struct {
	ReviewID      string        `json:"review_id"`
	Decision      ticket.Status `json:"decision"`
	Reviewer      string        `json:"reviewer"`
	DecisionNotes string        `json:"decision_notes"`
	DecidedAt     *string       `json:"decided_at_utc"`
}

// Classify validates and scores a product and returns the stub classification.
// When review is required a ticket is stored first and its audit event appended
// second; if the event cannot be recorded the ticket is deleted again. The
// stored response snapshot is exactly the audited response, so only the
// returned result carries reasoning_log_ref. Any failure fails the whole call.
func (s *Service) Classify(ctx context.Context, p model.ProductSpecs) (model.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ClassificationResult{}, err
	}
	if err := p.Validate(); err != nil {
		return model.ClassificationResult{}, err
	}

	cfg, hash := s.Policy()
	a := policy.Assess(p, cfg)
	result := buildResult(p, a, cfg)

	record := func(res model.ClassificationResult) (audit.Event, error) {
		return s.audit.Append(audit.EventClassification, classificationPayload{
			Request:  p,
			Response: res,
			Policy: policyRecord{
				ReviewThreshold:     cfg.ReviewThreshold,
				PolicyHash:          hash,
				RequiresHumanReview: res.RequiresHumanReview,
				ReviewReasons:       res.ReviewReasons,
				LegalDisclaimer:     res.LegalDisclaimer,
			},
		})
	}

	if result.RequiresHumanReview {
		var ev audit.Event
		t, err := s.tickets.Create(p, result, func(t ticket.Ticket) error {
			var err error
			ev, err = record(t.Response)
			return err
		})
		if err != nil {
			s.metrics.ObserveFailure("classify")
			s.logger.Error("classification failed", "product", p.Name, "error", err)
			return model.ClassificationResult{}, fmt.Errorf("open review ticket: %w", err)
		}
		result = t.Response
		result.ReasoningLogRef = &ev.EventHash

		s.alerts.Dispatch(alert.AlertEvent{
			Timestamp:          t.CreatedAt,
			Type:               alert.EventReviewRequired,
			TicketID:           t.ID,
			Product:            p.Name,
			OriginCountry:      p.OriginCountry,
			DestinationCountry: p.DestinationCountry,
			HSCode:             result.SuggestedHSCode,
			Confidence:         result.Confidence,
			Reasons:            result.ReviewReasons,
			PolicyHash:         hash,
		})
	} else {
		ev, err := record(result)
		if err != nil {
			s.metrics.ObserveFailure("classify")
			s.logger.Error("classification failed", "product", p.Name, "error", err)
			return model.ClassificationResult{}, fmt.Errorf("record classification: %w", err)
		}
		result.ReasoningLogRef = &ev.EventHash
	}

	s.metrics.ObserveClassification(result.Confidence, result.RequiresHumanReview)
	attrs := []any{
		"product", p.Name,
		"origin", p.OriginCountry,
		"risk", result.RiskScore,
		"confidence", result.Confidence,
		"requires_review", result.RequiresHumanReview,
	}
	if result.ReviewTicketID != nil {
		attrs = append(attrs, "ticket_id", *result.ReviewTicketID)
	}
	s.logger.Info("classified", attrs...)

	return result, nil
}

// Decide records a reviewer's verdict on an open ticket and appends the
// matching review_decision audit event.
func (s *Service) Decide(ctx context.Context, id string, d ticket.Decision) (ticket.Ticket, audit.Event, error) {
	if err := ctx.Err(); err != nil {
		return ticket.Ticket{}, audit.Event{}, err
	}

	var ev audit.Event
	t, err := s.tickets.Decide(id, d, func(t ticket.Ticket) error {
		var err error
		ev, err = s.audit.Append(audit.EventReviewDecision, decisionPayload{
			ReviewID:      t.ID,
			Decision:      t.Status,
			Reviewer:      t.Reviewer,
			DecisionNotes: t.DecisionNotes,
			DecidedAt:     t.DecidedAt,
		})
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("decide")
		s.logger.Warn("review decision refused", "ticket_id", id, "error", err)
		return ticket.Ticket{}, audit.Event{}, err
	}

	s.metrics.ObserveDecision(string(t.Status))
	s.logger.Info("review decided",
		"ticket_id", t.ID, "decision", t.Status, "reviewer", t.Reviewer, "event_hash", ev.EventHash)
	s.alerts.Dispatch(alert.AlertEvent{
		Timestamp: ev.CreatedAt,
		Type:      alert.EventReviewDecision,
		TicketID:  t.ID,
		Product:   t.Request.Name,
		HSCode:    t.Response.SuggestedHSCode,
		Decision:  string(t.Status),
		Reviewer:  t.Reviewer,
	})
	return t, ev, nil
}

// ListReviews returns ticket summaries, most recently modified first.
func (s *Service) ListReviews(ctx context.Context) ([]ticket.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.tickets.List()
}

// GetReview returns one ticket.
func (s *Service) GetReview(ctx context.Context, id string) (ticket.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return ticket.Ticket{}, err
	}
	return s.tickets.Get(id)
}

// Report returns the classification report view of a ticket.
func (s *Service) Report(ctx context.Context, id string) (ticket.Report, error) {
	if err := ctx.Err(); err != nil {
		return ticket.Report{}, err
	}
	return s.tickets.Report(id)
}

// Summary returns review counts by status.
func (s *Service) Summary(ctx context.Context) (ticket.Counts, error) {
	if err := ctx.Err(); err != nil {
		return ticket.Counts{}, err
	}
	return s.tickets.Counts()
}

// VerifyAudit checks the audit trail hash chain.
func (s *Service) VerifyAudit(ctx context.Context) (audit.VerifyResult, error) {
	if err := ctx.Err(); err != nil {
		return audit.VerifyResult{}, err
	}
	return audit.Verify(s.audit.Path()), nil
}
