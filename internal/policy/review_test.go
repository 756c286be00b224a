package policy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/tariffwatch/internal/model"
)

func TestReviewReasonsNoneForHighConfidence(t *testing.T) {
	reasons := ReviewReasons(baseProduct(), model.Interval{Lo: 0.95, Hi: 0.99}, DefaultConfig())
	if len(reasons) != 0 {
		t.Errorf("expected no reasons, got %v", reasons)
	}
}

func TestReviewReasonsOrderStable(t *testing.T) {
	p := model.ProductSpecs{Description: "short", IntendedUse: "test"}
	ci := model.Interval{Lo: 0.4, Hi: 0.6}

	want := []string{
		ReasonShortDescription,
		ReasonMissingMaterials,
		ReasonShortIntendedUse,
		"Lower-bound confidence is below legal review threshold (0.90).",
	}
	for i := 0; i < 10; i++ {
		got := ReviewReasons(p, ci, DefaultConfig())
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("iteration %d: expected %v, got %v", i, want, got)
		}
	}
}

func TestReviewReasonsEachConditionIndependent(t *testing.T) {
	high := model.Interval{Lo: 0.95, Hi: 0.99}
	tests := []struct {
		name   string
		mutate func(p *model.ProductSpecs)
		ci     model.Interval
		want   string
	}{
		{"short description", func(p *model.ProductSpecs) { p.Description = "tiny" }, high, ReasonShortDescription},
		{"missing materials", func(p *model.ProductSpecs) { p.Materials = map[string]float64{} }, high, ReasonMissingMaterials},
		{"short intended use", func(p *model.ProductSpecs) { p.IntendedUse = "x" }, high, ReasonShortIntendedUse},
		{"low confidence", func(p *model.ProductSpecs) {}, model.Interval{Lo: 0.8999, Hi: 0.95}, LowConfidenceReason(0.90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProduct()
			tt.mutate(&p)
			got := ReviewReasons(p, tt.ci, DefaultConfig())
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("expected [%q], got %v", tt.want, got)
			}
		})
	}
}

func TestReviewReasonsThresholdBoundary(t *testing.T) {
	// Lower bound exactly at the threshold does not trigger review.
	got := ReviewReasons(baseProduct(), model.Interval{Lo: 0.90, Hi: 0.95}, DefaultConfig())
	if len(got) != 0 {
		t.Errorf("expected no reasons at threshold, got %v", got)
	}
}

func TestReviewReasonsCustomThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReviewThreshold = 0.5
	got := ReviewReasons(baseProduct(), model.Interval{Lo: 0.6, Hi: 0.7}, cfg)
	if len(got) != 0 {
		t.Errorf("expected no reasons under relaxed threshold, got %v", got)
	}
	cfg.ReviewThreshold = 0.75
	got = ReviewReasons(baseProduct(), model.Interval{Lo: 0.6, Hi: 0.7}, cfg)
	if len(got) != 1 || !strings.Contains(got[0], "(0.75)") {
		t.Errorf("expected threshold reason naming 0.75, got %v", got)
	}
}

func TestAssessLithiumBatteryScenario(t *testing.T) {
	p := model.ProductSpecs{
		Name:               "Battery pack",
		Description:        "Lithium battery module for industrial robots",
		Materials:          map[string]float64{"steel": 0.1, "aluminum": 0.45},
		Value:              5000,
		OriginCountry:      "CN",
		DestinationCountry: "US",
		IntendedUse:        "Commercial machine power subsystem",
	}
	if len(p.Description) != 44 || len(p.IntendedUse) != 34 {
		t.Fatalf("fixture lengths drifted: %d, %d", len(p.Description), len(p.IntendedUse))
	}

	a := Assess(p, DefaultConfig())

	if diff := a.Risk - 0.15; diff > eps || diff < -eps {
		t.Errorf("expected risk 0.15, got %v", a.Risk)
	}
	if diff := a.Confidence - 0.89; diff > eps || diff < -eps {
		t.Errorf("expected confidence 0.89, got %v", a.Confidence)
	}
	// No attribute condition fires; the lower bound alone decides.
	if a.Interval.Lo >= DefaultReviewThreshold {
		t.Fatalf("expected lower bound below %v, got %v", DefaultReviewThreshold, a.Interval.Lo)
	}
	if !a.RequiresReview() {
		t.Fatal("expected review to be required")
	}
	if len(a.Reasons) != 1 || a.Reasons[0] != LowConfidenceReason(DefaultReviewThreshold) {
		t.Errorf("expected only the low-confidence reason, got %v", a.Reasons)
	}
}

func TestAssessThinProductScenario(t *testing.T) {
	p := model.ProductSpecs{
		Name:               "Gadget",
		Description:        "short",
		Materials:          map[string]float64{},
		Value:              180000,
		OriginCountry:      "CN",
		DestinationCountry: "US",
		IntendedUse:        "test",
	}
	a := Assess(p, DefaultConfig())
	if !a.RequiresReview() {
		t.Fatal("expected review to be required")
	}
	if len(a.Reasons) != 4 {
		t.Errorf("expected 4 reasons, got %d: %v", len(a.Reasons), a.Reasons)
	}
}
