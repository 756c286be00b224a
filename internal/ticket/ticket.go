// Package ticket manages human review tickets for classifications that could
// not be auto-approved. A ticket is created open and decided exactly once.
package ticket

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// TimestampFormat is the UTC layout used for ticket timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Status represents the state of a review ticket.
type Status string

const (
	StatusOpen     Status = "open"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Ticket is a persisted review request and, once decided, its outcome.
type Ticket struct {
	ID            string                     `json:"id"`
	Status        Status                     `json:"status"`
	CreatedAt     string                     `json:"created_at_utc"`
	Request       model.ProductSpecs         `json:"request"`
	Response      model.ClassificationResult `json:"response"`
	ReviewReasons []string                   `json:"review_reasons"`
	Reviewer      string                     `json:"reviewer"`
	DecisionNotes string                     `json:"decision_notes"`
	DecidedAt     *string                    `json:"decided_at_utc"`
}

// Decision is a reviewer's verdict on an open ticket.
type Decision struct {
	Decision Status `json:"decision" validate:"oneof=approved rejected"`
	Reviewer string `json:"reviewer" validate:"notblank"`
	Notes    string `json:"notes"`
}

// Validate checks the verdict and reviewer. Failures wrap model.ErrInvalidInput.
func (d Decision) Validate() error {
	return model.ValidateStruct(d)
}

// Summary is the list view of a ticket.
type Summary struct {
	ID            string   `json:"id"`
	Status        Status   `json:"status"`
	CreatedAt     string   `json:"created_at_utc"`
	ReviewReasons []string `json:"review_reasons"`
}

// Counts aggregates tickets by status.
type Counts struct {
	Open     int `json:"open"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// Report is the classification report view of a ticket.
type Report struct {
	TicketID              string         `json:"ticket_id"`
	Status                Status         `json:"status"`
	Product               string         `json:"product"`
	OriginCountry         string         `json:"origin_country"`
	DestinationCountry    string         `json:"destination_country"`
	SuggestedHSCode       string         `json:"suggested_hs_code"`
	DutyRate              string         `json:"duty_rate"`
	Confidence            float64        `json:"confidence"`
	ConfidenceInterval    model.Interval `json:"confidence_interval"`
	WhyThisClassification []string       `json:"why_this_classification"`
	ReviewReasons         []string       `json:"review_reasons"`
	LegalCitations        []string       `json:"legal_citations"`
	LegalDisclaimer       string         `json:"legal_disclaimer"`
	Reviewer              string         `json:"reviewer,omitempty"`
	DecisionNotes         string         `json:"decision_notes,omitempty"`
	DecidedAt             *string        `json:"decided_at_utc,omitempty"`
}

func (t Ticket) summary() Summary {
	return Summary{
		ID:            t.ID,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		ReviewReasons: t.ReviewReasons,
	}
}

func (t Ticket) report() Report {
	r := t.Response
	return Report{
		TicketID:              t.ID,
		Status:                t.Status,
		Product:               t.Request.Name,
		OriginCountry:         t.Request.OriginCountry,
		DestinationCountry:    t.Request.DestinationCountry,
		SuggestedHSCode:       r.SuggestedHSCode,
		DutyRate:              r.DutyRate,
		Confidence:            r.Confidence,
		ConfidenceInterval:    r.ConfidenceInterval,
		WhyThisClassification: r.ReasoningManifesto,
		ReviewReasons:         t.ReviewReasons,
		LegalCitations:        r.LegalCitations,
		LegalDisclaimer:       r.LegalDisclaimer,
		Reviewer:              t.Reviewer,
		DecisionNotes:         t.DecisionNotes,
		DecidedAt:             t.DecidedAt,
	}
}

// Fingerprint returns the first 8 hex characters of sha256("name|origin|value").
// The value is rendered by formatValue so ids match those issued by earlier
// deployments for the same product.
func Fingerprint(p model.ProductSpecs) string {
	raw := p.Name + "|" + p.OriginCountry + "|" + formatValue(p.Value)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:8]
}

// formatValue renders a float as its shortest round-trip form, keeping a
// trailing ".0" on whole numbers (5000 -> "5000.0") and switching to exponent
// form outside [1e-4, 1e16).
func formatValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs != 0 && (abs < 1e-4 || abs >= 1e16):
		return strconv.FormatFloat(v, 'g', -1, 64)
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 1, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// MakeID builds a ticket id from a unix timestamp and product fingerprint.
func MakeID(unix int64, fingerprint string) string {
	return fmt.Sprintf("review_%d_%s", unix, fingerprint)
}
