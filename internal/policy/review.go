package policy

import (
	"fmt"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// Review reason texts. Order of evaluation is fixed.
const (
	ReasonShortDescription = "Product description is too short for reliable legal classification."
	ReasonMissingMaterials = "Material composition is missing."
	ReasonShortIntendedUse = "Intended use detail is insufficient."
)

// LowConfidenceReason renders the threshold reason for the given threshold.
func LowConfidenceReason(threshold float64) string {
	return fmt.Sprintf("Lower-bound confidence is below legal review threshold (%.2f).", threshold)
}

// ReviewReasons lists every reason the classification needs a human.
// An empty result means the classification is auto-approved.
func ReviewReasons(p model.ProductSpecs, ci model.Interval, cfg *Config) []string {
	reasons := []string{}
	if textLen(p.Description) < minDescriptionLen {
		reasons = append(reasons, ReasonShortDescription)
	}
	if len(p.Materials) == 0 {
		reasons = append(reasons, ReasonMissingMaterials)
	}
	if textLen(p.IntendedUse) < minIntendedUseLen {
		reasons = append(reasons, ReasonShortIntendedUse)
	}
	if ci.Lo < cfg.ReviewThreshold {
		reasons = append(reasons, LowConfidenceReason(cfg.ReviewThreshold))
	}
	return reasons
}

// Assessment bundles the outputs of the scoring pipeline.
type Assessment struct {
	Risk       float64
	Confidence float64
	Interval   model.Interval
	Reasons    []string
}

// RequiresReview reports whether any review reason fired.
func (a Assessment) RequiresReview() bool {
	return len(a.Reasons) > 0
}

// Assess runs risk scoring, confidence mapping and the review policy in order.
func Assess(p model.ProductSpecs, cfg *Config) Assessment {
	risk := RiskScore(p, cfg)
	conf := Confidence(risk)
	ci := ConfidenceInterval(conf)
	return Assessment{
		Risk:       risk,
		Confidence: conf,
		Interval:   ci,
		Reasons:    ReviewReasons(p, ci, cfg),
	}
}
