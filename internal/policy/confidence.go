package policy

import (
	"math"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// Confidence maps a risk score to a point confidence: lower risk, higher confidence.
func Confidence(risk float64) float64 {
	return clamp01(0.98 - 0.60*clamp01(risk))
}

// minHalfWidth is the floor on the interval half-width.
const minHalfWidth = 0.02

// ConfidenceInterval returns a band around conf that narrows as conf rises.
// Lo <= conf <= Hi always holds after clamping.
func ConfidenceInterval(conf float64) model.Interval {
	c := clamp01(conf)
	half := math.Max(minHalfWidth, 0.12-0.10*c)
	return model.Interval{
		Lo: clamp01(c - half),
		Hi: clamp01(c + half),
	}
}
