package policy

import (
	"math"
	"testing"
)

func TestConfidenceEndpoints(t *testing.T) {
	if got := Confidence(0); math.Abs(got-0.98) > eps {
		t.Errorf("expected 0.98 at zero risk, got %v", got)
	}
	if got := Confidence(1); math.Abs(got-0.38) > eps {
		t.Errorf("expected 0.38 at full risk, got %v", got)
	}
	// Out-of-range risk is clamped before mapping.
	if got := Confidence(-3); math.Abs(got-0.98) > eps {
		t.Errorf("expected clamped 0.98, got %v", got)
	}
	if got := Confidence(7); math.Abs(got-0.38) > eps {
		t.Errorf("expected clamped 0.38, got %v", got)
	}
}

func TestConfidenceMonotoneDecreasing(t *testing.T) {
	prev := math.Inf(1)
	for i := 0; i <= 1000; i++ {
		r := float64(i) / 1000
		c := Confidence(r)
		if c > prev+eps {
			t.Fatalf("confidence rose at risk %v: %v > %v", r, c, prev)
		}
		prev = c
	}
}

func TestConfidenceIntervalContainsPoint(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		c := float64(i) / 1000
		ci := ConfidenceInterval(c)
		if !ci.Contains(c) {
			t.Fatalf("interval %+v does not contain %v", ci, c)
		}
		if ci.Lo < 0 || ci.Hi > 1 {
			t.Fatalf("interval %+v escapes [0,1]", ci)
		}
	}
}

func TestConfidenceIntervalNarrowsWithConfidence(t *testing.T) {
	// Walk risk from 1 down to 0 so confidence rises across its reachable range.
	prev := math.Inf(1)
	for i := 1000; i >= 0; i-- {
		c := Confidence(float64(i) / 1000)
		w := ConfidenceInterval(c).Width()
		if w > prev+eps {
			t.Fatalf("width grew at confidence %v: %v > %v", c, w, prev)
		}
		prev = w
	}
}

func TestConfidenceIntervalWidthFloor(t *testing.T) {
	// Every reachable confidence (risk in [0,1]) keeps at least 0.04 total width.
	for i := 0; i <= 1000; i++ {
		c := Confidence(float64(i) / 1000)
		if w := ConfidenceInterval(c).Width(); w < 0.04-eps {
			t.Fatalf("width %v below floor at confidence %v", w, c)
		}
	}
}

func TestConfidenceIntervalKnownValues(t *testing.T) {
	ci := ConfidenceInterval(0.89)
	if math.Abs(ci.Lo-0.859) > 1e-9 || math.Abs(ci.Hi-0.921) > 1e-9 {
		t.Errorf("expected (0.859, 0.921), got (%v, %v)", ci.Lo, ci.Hi)
	}

	ci = ConfidenceInterval(1)
	if math.Abs(ci.Lo-0.98) > 1e-9 || ci.Hi != 1 {
		t.Errorf("expected (0.98, 1), got (%v, %v)", ci.Lo, ci.Hi)
	}
}
