// Package consequence computes the 1–5 consequence-of-failure score from
// five declared impact dimensions. Unlike the reliability model, dimension
// weights are never renormalized: an undeclared impact is itself a
// meaningful "negligible" signal, not missing evidence.
package consequence

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// ImpactInputs is a declared 1–5 impact score with free-text notes.
type ImpactInputs struct {
	Impact *float64 `json:"impact,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// OperationalInputs extends the declared impact with downtime and the list
// of dependent systems.
type OperationalInputs struct {
	Impact          *float64 `json:"impact,omitempty"`
	DowntimeDays    *float64 `json:"downtime_days,omitempty"`
	AffectedSystems []string `json:"affected_systems,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// FinancialInputs extends the declared impact with direct dollar figures.
type FinancialInputs struct {
	Impact      *float64 `json:"impact,omitempty"`
	RepairCost  *float64 `json:"repair_cost,omitempty"`
	RevenueLoss *float64 `json:"revenue_loss,omitempty"`
	PenaltyCost *float64 `json:"penalty_cost,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Inputs bundles the five independent consequence dimensions for one asset.
type Inputs struct {
	Safety        ImpactInputs      `json:"safety"`
	Operational   OperationalInputs `json:"operational"`
	Financial     FinancialInputs   `json:"financial"`
	Environmental ImpactInputs      `json:"environmental"`
	Reputational  ImpactInputs      `json:"reputational"`
}

// DimensionResult captures one dimension's contribution to the CoF.
type DimensionResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// WeightSet defines the fixed dimension weights. All weights must sum to
// 1.0 (±0.001 tolerance).
type WeightSet struct {
	Safety        float64
	Operational   float64
	Financial     float64
	Environmental float64
	Reputational  float64
}

// DefaultWeights returns the standard CoF dimension weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		Safety:        0.40,
		Operational:   0.20,
		Financial:     0.20,
		Environmental: 0.10,
		Reputational:  0.10,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Safety + w.Operational + w.Financial + w.Environmental + w.Reputational
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("consequence weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.Safety, w.Operational, w.Financial, w.Environmental, w.Reputational} {
		if v < 0 {
			return fmt.Errorf("negative consequence weight: %f", v)
		}
	}
	return nil
}

// Result captures the complete CoF output for a single asset.
type Result struct {
	CoF              float64           `json:"cof"`
	Dimensions       []DimensionResult `json:"dimensions"`
	Justification    string            `json:"justification"`
	CriticalityLevel string            `json:"criticality_level"`
}

// Calculator computes the 1–5 consequence-of-failure score. It is pure and
// safe for concurrent use.
type Calculator struct {
	weights WeightSet
	logger  *slog.Logger
}

// NewCalculator creates a Calculator with the given dimension weights.
func NewCalculator(weights WeightSet, logger *slog.Logger) *Calculator {
	return &Calculator{weights: weights, logger: logger}
}

// ComputeCoF blends the five dimension scores into a single CoF and derives
// the criticality level. A high safety dimension forces criticality upward
// regardless of the blended score.
func (c *Calculator) ComputeCoF(in Inputs) Result {
	dims := []DimensionResult{
		safetyDimension(in.Safety),
		operationalDimension(in.Operational),
		financialDimension(in.Financial),
		passthroughDimension("environmental", in.Environmental),
		passthroughDimension("reputational", in.Reputational),
	}
	weights := []float64{
		c.weights.Safety,
		c.weights.Operational,
		c.weights.Financial,
		c.weights.Environmental,
		c.weights.Reputational,
	}

	var total float64
	var parts []string
	for i := range dims {
		dims[i].Weight = weights[i]
		dims[i].Weighted = dims[i].Score * weights[i]
		total += dims[i].Weighted
		parts = append(parts, fmt.Sprintf("%s %.1f (%s)", dims[i].Name, dims[i].Score, dims[i].Reason))
	}

	cof := round2(clamp(total, 1, 5))
	result := Result{
		CoF:              cof,
		Dimensions:       dims,
		Justification:    "weighted dimensions: " + strings.Join(parts, "; "),
		CriticalityLevel: criticalityLevel(dims[0].Score, cof),
	}

	c.logger.Debug("cof computed", "cof", cof, "criticality", result.CriticalityLevel)
	return result
}

// criticalityLevel derives the operational criticality band. Safety can
// force the level independent of the blended score.
func criticalityLevel(safety, cof float64) string {
	switch {
	case safety >= 4.5 || cof >= 4.5:
		return "critical"
	case safety >= 3.5 || cof >= 3.5:
		return "high"
	case cof >= 2.5:
		return "medium"
	default:
		return "low"
	}
}

// safetyDimension is a direct pass-through of the declared safety impact.
// Safety is operator-declared, never inferred.
func safetyDimension(in ImpactInputs) DimensionResult {
	if in.Impact == nil {
		return DimensionResult{Name: "safety", Score: 1.0, Reason: "no declared safety impact"}
	}
	return DimensionResult{
		Name: "safety", Score: clamp(*in.Impact, 1, 5),
		Reason: fmt.Sprintf("declared impact %.1f", *in.Impact),
	}
}

// operationalDimension starts from the declared impact, raises a floor from
// downtime, and adds 0.3 per affected system up to +1.0.
func operationalDimension(in OperationalInputs) DimensionResult {
	score := 1.0
	reason := "no declared operational impact"
	if in.Impact != nil {
		score = clamp(*in.Impact, 1, 5)
		reason = fmt.Sprintf("declared impact %.1f", *in.Impact)
	}

	if in.DowntimeDays != nil && *in.DowntimeDays > 0 {
		dd := *in.DowntimeDays
		var floor float64
		switch {
		case dd <= 1:
			floor = 2.0
		case dd <= 7:
			floor = 3.0
		case dd <= 30:
			floor = 4.0
		default:
			floor = 5.0
		}
		if floor > score {
			score = floor
		}
		reason += fmt.Sprintf(", %.1fd downtime", dd)
	}

	if n := len(in.AffectedSystems); n > 0 {
		bump := math.Min(0.3*float64(n), 1.0)
		score = clamp(score+bump, 1, 5)
		reason += fmt.Sprintf(", %d affected systems", n)
	}

	return DimensionResult{Name: "operational", Score: score, Reason: reason}
}

// financialDimension starts from the declared impact and raises a floor
// from the total exposure dollar band.
func financialDimension(in FinancialInputs) DimensionResult {
	score := 1.0
	reason := "no declared financial impact"
	if in.Impact != nil {
		score = clamp(*in.Impact, 1, 5)
		reason = fmt.Sprintf("declared impact %.1f", *in.Impact)
	}

	total := 0.0
	declared := false
	for _, v := range []*float64{in.RepairCost, in.RevenueLoss, in.PenaltyCost} {
		if v != nil {
			total += math.Max(0, *v)
			declared = true
		}
	}
	if declared {
		var floor float64
		switch {
		case total < 10_000:
			floor = 1.0
		case total < 50_000:
			floor = 2.0
		case total < 250_000:
			floor = 3.0
		case total < 1_000_000:
			floor = 4.0
		default:
			floor = 5.0
		}
		if floor > score {
			score = floor
		}
		reason += fmt.Sprintf(", $%.0f exposure", total)
	}

	return DimensionResult{Name: "financial", Score: score, Reason: reason}
}

func passthroughDimension(name string, in ImpactInputs) DimensionResult {
	if in.Impact == nil {
		return DimensionResult{Name: name, Score: 1.0, Reason: "no declared " + name + " impact"}
	}
	return DimensionResult{
		Name: name, Score: clamp(*in.Impact, 1, 5),
		Reason: fmt.Sprintf("declared impact %.1f", *in.Impact),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
