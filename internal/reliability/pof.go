package reliability

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// WeightSet defines the relative importance of each PoF sub-factor.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	Age         float64
	Condition   float64
	Maintenance float64
	Environment float64
	Utilization float64
}

// DefaultWeights returns the standard PoF sub-factor weight distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		Age:         0.30,
		Condition:   0.30,
		Maintenance: 0.20,
		Environment: 0.10,
		Utilization: 0.10,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Age + w.Condition + w.Maintenance + w.Environment + w.Utilization
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("reliability weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range []float64{w.Age, w.Condition, w.Maintenance, w.Environment, w.Utilization} {
		if v < 0 {
			return fmt.Errorf("negative reliability weight: %f", v)
		}
	}
	return nil
}

// Result captures the complete PoF output for a single asset.
type Result struct {
	PoF                  float64        `json:"pof"`
	Factors              []FactorResult `json:"factors"`
	RemainingLifePercent float64        `json:"remaining_life_percent"`
	Justification        string         `json:"justification"`
}

// Calculator computes the 1–5 probability-of-failure score from weighted
// sub-factors. It is pure and safe for concurrent use.
type Calculator struct {
	weights WeightSet
	curves  CurveTable
	logger  *slog.Logger
}

// NewCalculator creates a Calculator with the given weights and curve table.
func NewCalculator(weights WeightSet, curves CurveTable, logger *slog.Logger) *Calculator {
	return &Calculator{weights: weights, curves: curves, logger: logger}
}

// ComputePoF evaluates all sub-factors and blends the available ones into a
// single PoF. Weights are renormalized over only the factors that had
// supporting input; with no input at all the PoF is exactly 3.00.
func (c *Calculator) ComputePoF(in FactorInputs) Result {
	factors := []FactorResult{
		ageFactor(in, c.curves),
		conditionFactor(in),
		maintenanceFactor(in),
		environmentFactor(in),
		utilizationFactor(in),
	}
	weights := []float64{
		c.weights.Age,
		c.weights.Condition,
		c.weights.Maintenance,
		c.weights.Environment,
		c.weights.Utilization,
	}

	var weightSum float64
	for i := range factors {
		if factors[i].Available {
			weightSum += weights[i]
		}
	}

	result := Result{
		RemainingLifePercent: remainingLife(in),
	}

	if weightSum == 0 {
		// No evidence either way — medium by definition.
		result.PoF = 3.0
		result.Factors = factors
		result.Justification = "no reliability inputs recorded; default medium probability of failure"
		return result
	}

	var total float64
	var parts []string
	for i := range factors {
		if !factors[i].Available {
			continue
		}
		factors[i].Weight = weights[i] / weightSum
		factors[i].Weighted = factors[i].Score * factors[i].Weight
		total += factors[i].Weighted
		parts = append(parts, fmt.Sprintf("%s %.1f (%s)", factors[i].Name, factors[i].Score, factors[i].Reason))
	}

	result.PoF = round2(clamp(total, 1, 5))
	result.Factors = factors
	result.Justification = "weighted factors: " + strings.Join(parts, "; ")

	c.logger.Debug("pof computed", "pof", result.PoF, "factors_present", len(parts))
	return result
}

// remainingLife returns the remaining-useful-life percentage, floored at 0.
// Zero when age or expected useful life is not recorded.
func remainingLife(in FactorInputs) float64 {
	if in.AgeYears == nil || in.ExpectedUsefulLife == nil || *in.ExpectedUsefulLife <= 0 {
		return 0
	}
	return round2(math.Max(0, (*in.ExpectedUsefulLife-*in.AgeYears) / *in.ExpectedUsefulLife * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
