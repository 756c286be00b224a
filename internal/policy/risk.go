package policy

import (
	"strings"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// Fixed penalty schedule. The score starts at riskBase and each weak
// attribute adds its increment.
const (
	riskBase = 0.03

	riskDescriptionVeryShort = 0.18 // < 30 chars
	riskDescriptionShort     = 0.07 // < 60 chars

	riskUseVeryShort = 0.12 // < 8 chars
	riskUseShort     = 0.05 // < 20 chars

	riskNoMaterials     = 0.25
	riskSingleMaterial  = 0.08
	riskValueVeryHigh   = 0.10 // >= 100,000
	riskValueHigh       = 0.05 // >= 25,000
	riskHighScrutinyOrg = 0.05
)

const (
	minDescriptionLen = 30
	minIntendedUseLen = 8
)

// RiskScore computes a deterministic, explainable risk score in [0,1].
// It does not look at the tariff schedule; it only measures how thin the
// submitted product data is.
func RiskScore(p model.ProductSpecs, cfg *Config) float64 {
	risk := riskBase

	switch n := textLen(p.Description); {
	case n < minDescriptionLen:
		risk += riskDescriptionVeryShort
	case n < 60:
		risk += riskDescriptionShort
	}

	switch n := textLen(p.IntendedUse); {
	case n < minIntendedUseLen:
		risk += riskUseVeryShort
	case n < 20:
		risk += riskUseShort
	}

	switch len(p.Materials) {
	case 0:
		risk += riskNoMaterials
	case 1:
		risk += riskSingleMaterial
	}

	switch {
	case p.Value >= 100_000:
		risk += riskValueVeryHigh
	case p.Value >= 25_000:
		risk += riskValueHigh
	}

	if cfg.IsHighScrutiny(p.OriginCountry) {
		risk += riskHighScrutinyOrg
	}

	return clamp01(risk)
}

// textLen counts characters after trimming surrounding whitespace.
func textLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
