package model

import (
	"encoding/json"
	"fmt"
)

// Interval is a closed confidence band [Lo, Hi].
type Interval struct {
	Lo float64
	Hi float64
}

// Contains reports whether v lies within the band.
func (i Interval) Contains(v float64) bool {
	return i.Lo <= v && v <= i.Hi
}

// Width returns Hi-Lo.
func (i Interval) Width() float64 {
	return i.Hi - i.Lo
}

// MarshalJSON encodes the interval as a two-element array.
func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{i.Lo, i.Hi})
}

// UnmarshalJSON decodes a two-element array.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("confidence interval must have 2 elements, got %d", len(pair))
	}
	i.Lo, i.Hi = pair[0], pair[1]
	return nil
}

// ClassificationResult is the response to a classification request.
// ReviewTicketID is set if and only if RequiresHumanReview is true.
type ClassificationResult struct {
	SuggestedHSCode     string   `json:"suggested_hs_code"`
	DutyRate            string   `json:"duty_rate"`
	ReasoningManifesto  []string `json:"reasoning_manifesto"`
	RiskScore           float64  `json:"risk_score"`
	Confidence          float64  `json:"confidence"`
	ConfidenceInterval  Interval `json:"confidence_interval"`
	RequiresHumanReview bool     `json:"requires_human_review"`
	ReviewReasons       []string `json:"review_reasons"`
	LegalCitations      []string `json:"legal_citations"`
	LegalDisclaimer     string   `json:"legal_disclaimer"`
	EngineeringTip      *string  `json:"engineering_tip"`
	TotalLandedCost     float64  `json:"total_landed_cost"`
	ReasoningLogRef     *string  `json:"reasoning_log_ref"`
	ReviewTicketID      *string  `json:"review_ticket_id"`
}
