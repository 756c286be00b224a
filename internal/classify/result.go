package classify

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/tariffwatch/internal/model"
	"github.com/ppiankov/tariffwatch/internal/policy"
)

// LegalDisclaimer accompanies every classification.
const LegalDisclaimer = "This output is decision-support only and not legal advice; " +
	"final tariff classification requires qualified customs/legal review."

const (
	heavyMetalContext = "Heavy Metal/Industrial Classification"
	generalContext    = "General Goods"
	steelThreshold    = 0.50

	dataCollectorTip = "Tip: If the device is marketed as a 'data collector' rather than a " +
		"'telecom device', duty may drop 2%."
	noTip = "No immediate engineering arbitrage detected."
)

// LegalCitations returns the fixed set of authorities cited with every result.
func LegalCitations() []string {
	return []string{
		"General Rules of Interpretation (GRI) 1 and 6",
		"HTSUS Section and Chapter Notes (as applicable)",
		"19 CFR Part 141 (entry documentation requirements)",
		"19 CFR Part 152 (customs valuation framework)",
		"CBP CROSS rulings (fact-specific precedent)",
	}
}

// MaterialContext names the material family that drove the classification.
func MaterialContext(p model.ProductSpecs) string {
	if p.Materials["steel"] > steelThreshold {
		return heavyMetalContext
	}
	return generalContext
}

// EngineeringTip returns a product-engineering suggestion for the HS code.
func EngineeringTip(hsCode string) string {
	if strings.Contains(hsCode, "8517") {
		return dataCollectorTip
	}
	return noTip
}

// LandedCost is the declared value plus duty.
func LandedCost(value, dutyRate float64) float64 {
	return value * (1 + dutyRate)
}

// FormatDutyRate renders a fractional rate as a percentage, e.g. 0.05 -> "5%".
func FormatDutyRate(rate float64) string {
	pct := math.Round(rate*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

func reasoningManifesto(p model.ProductSpecs) []string {
	return []string{
		fmt.Sprintf("Analyzed %s based on GRI 1.", MaterialContext(p)),
		"Cross-referenced intended use: " + p.IntendedUse,
		"Matched material threshold: Steel at " + strconv.FormatFloat(p.Materials["steel"], 'f', -1, 64),
	}
}

// buildResult assembles the stub classification for an assessed product.
// Ticket id and audit reference are filled in later.
func buildResult(p model.ProductSpecs, a policy.Assessment, cfg *policy.Config) model.ClassificationResult {
	tip := EngineeringTip(cfg.Stub.HSCode)
	return model.ClassificationResult{
		SuggestedHSCode:     cfg.Stub.HSCode,
		DutyRate:            FormatDutyRate(cfg.Stub.DutyRate),
		ReasoningManifesto:  reasoningManifesto(p),
		RiskScore:           a.Risk,
		Confidence:          a.Confidence,
		ConfidenceInterval:  a.Interval,
		RequiresHumanReview: a.RequiresReview(),
		ReviewReasons:       a.Reasons,
		LegalCitations:      LegalCitations(),
		LegalDisclaimer:     LegalDisclaimer,
		EngineeringTip:      &tip,
		TotalLandedCost:     LandedCost(p.Value, cfg.Stub.DutyRate),
	}
}
