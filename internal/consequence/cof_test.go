package consequence

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func float64Ptr(v float64) *float64 { return &v }

func newTestCalculator() *Calculator {
	return NewCalculator(DefaultWeights(), discardLogger())
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	w := DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights invalid: %v", err)
	}
	if math.Abs(w.Sum()-1.0) > 0.001 {
		t.Errorf("default weights sum to %f, expected 1.0", w.Sum())
	}
}

func TestComputeCoFNoDeclaredImpacts(t *testing.T) {
	result := newTestCalculator().ComputeCoF(Inputs{})

	if result.CoF != 1.0 {
		t.Errorf("expected 1.0 with nothing declared, got %f", result.CoF)
	}
	if result.CriticalityLevel != "low" {
		t.Errorf("expected low criticality, got %s", result.CriticalityLevel)
	}
	if len(result.Dimensions) != 5 {
		t.Errorf("expected 5 dimensions, got %d", len(result.Dimensions))
	}
}

func TestComputeCoFWeightsAreFixed(t *testing.T) {
	// A single declared dimension does not get its weight renormalized;
	// the other dimensions contribute their floor of 1.0.
	result := newTestCalculator().ComputeCoF(Inputs{
		Operational: OperationalInputs{Impact: float64Ptr(5)},
	})

	// 0.40*1 + 0.20*5 + 0.20*1 + 0.10*1 + 0.10*1
	want := 1.8
	if math.Abs(result.CoF-want) > 0.0001 {
		t.Errorf("expected %.2f, got %.2f", want, result.CoF)
	}
}

func TestSafetyForcesCriticality(t *testing.T) {
	// Maximum safety alone blends to a modest CoF, but criticality must
	// still come out critical.
	result := newTestCalculator().ComputeCoF(Inputs{
		Safety: ImpactInputs{Impact: float64Ptr(5)},
	})

	// 0.40*5 + 0.60*1
	if math.Abs(result.CoF-2.6) > 0.0001 {
		t.Errorf("expected CoF 2.60, got %f", result.CoF)
	}
	if result.CriticalityLevel != "critical" {
		t.Errorf("expected critical, got %s", result.CriticalityLevel)
	}
}

func TestCriticalityLevel(t *testing.T) {
	tests := []struct {
		name   string
		safety float64
		cof    float64
		want   string
	}{
		{"both low", 1, 1.5, "low"},
		{"medium from cof", 1, 2.5, "medium"},
		{"high from cof", 1, 3.5, "high"},
		{"high from safety", 4, 2.0, "high"},
		{"critical from cof", 1, 4.5, "critical"},
		{"critical from safety", 4.5, 2.0, "critical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := criticalityLevel(tt.safety, tt.cof); got != tt.want {
				t.Errorf("criticalityLevel(%v, %v) = %s, expected %s", tt.safety, tt.cof, got, tt.want)
			}
		})
	}
}

func TestOperationalDimensionDowntimeFloors(t *testing.T) {
	tests := []struct {
		name     string
		downtime float64
		want     float64
	}{
		{"under a day", 0.5, 2.0},
		{"a week", 7, 3.0},
		{"a month", 30, 4.0},
		{"over a month", 45, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := operationalDimension(OperationalInputs{DowntimeDays: float64Ptr(tt.downtime)})
			if d.Score != tt.want {
				t.Errorf("downtime %.1fd: expected %.1f, got %.1f", tt.downtime, tt.want, d.Score)
			}
		})
	}

	t.Run("floor does not lower a declared impact", func(t *testing.T) {
		d := operationalDimension(OperationalInputs{
			Impact:       float64Ptr(4),
			DowntimeDays: float64Ptr(0.5),
		})
		if d.Score != 4.0 {
			t.Errorf("expected declared 4.0 to stand, got %f", d.Score)
		}
	})

	t.Run("affected systems bump is capped", func(t *testing.T) {
		d := operationalDimension(OperationalInputs{
			Impact:          float64Ptr(2),
			AffectedSystems: []string{"a", "b", "c", "d", "e", "f"},
		})
		if d.Score != 3.0 {
			t.Errorf("expected 2.0 + capped 1.0 bump, got %f", d.Score)
		}
	})
}

func TestFinancialDimensionDollarBands(t *testing.T) {
	tests := []struct {
		name string
		cost float64
		want float64
	}{
		{"minor repair", 5_000, 1.0},
		{"moderate repair", 40_000, 2.0},
		{"major repair", 200_000, 3.0},
		{"capital project", 800_000, 4.0},
		{"catastrophic", 2_000_000, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := financialDimension(FinancialInputs{RepairCost: float64Ptr(tt.cost)})
			if d.Score != tt.want {
				t.Errorf("cost %.0f: expected %.1f, got %.1f", tt.cost, tt.want, d.Score)
			}
		})
	}

	t.Run("exposure sums across cost fields", func(t *testing.T) {
		d := financialDimension(FinancialInputs{
			RepairCost:  float64Ptr(30_000),
			RevenueLoss: float64Ptr(150_000),
			PenaltyCost: float64Ptr(100_000),
		})
		if d.Score != 4.0 {
			t.Errorf("expected band 4 for $280k exposure, got %f", d.Score)
		}
	})
}

func TestDimensionScoresClampDeclaredImpact(t *testing.T) {
	d := passthroughDimension("environmental", ImpactInputs{Impact: float64Ptr(9)})
	if d.Score != 5.0 {
		t.Errorf("expected clamp to 5, got %f", d.Score)
	}
	d = safetyDimension(ImpactInputs{Impact: float64Ptr(-2)})
	if d.Score != 1.0 {
		t.Errorf("expected clamp to 1, got %f", d.Score)
	}
}
