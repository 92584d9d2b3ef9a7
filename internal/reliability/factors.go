package reliability

import (
	"fmt"
	"math"
)

// DefectSeverity grades observed defects on an asset.
type DefectSeverity string

const (
	DefectNone     DefectSeverity = "none"
	DefectMinor    DefectSeverity = "minor"
	DefectModerate DefectSeverity = "moderate"
	DefectMajor    DefectSeverity = "major"
	DefectCritical DefectSeverity = "critical"
)

// MaintenanceFrequency describes the maintenance regime an asset is under.
type MaintenanceFrequency string

const (
	MaintenanceNone       MaintenanceFrequency = "none"
	MaintenanceReactive   MaintenanceFrequency = "reactive"
	MaintenanceScheduled  MaintenanceFrequency = "scheduled"
	MaintenancePreventive MaintenanceFrequency = "preventive"
	MaintenancePredictive MaintenanceFrequency = "predictive"
)

// OperatingEnvironment describes the conditions the asset operates in.
type OperatingEnvironment string

const (
	EnvironmentControlled OperatingEnvironment = "controlled"
	EnvironmentNormal     OperatingEnvironment = "normal"
	EnvironmentHarsh      OperatingEnvironment = "harsh"
	EnvironmentExtreme    OperatingEnvironment = "extreme"
)

// FactorInputs carries the raw reliability inputs for one asset. All fields
// are optional — nil pointers and empty strings mean "not recorded".
type FactorInputs struct {
	AgeYears                 *float64             `json:"age_years,omitempty"`
	ExpectedUsefulLife       *float64             `json:"expected_useful_life,omitempty"`
	ConditionIndex           *float64             `json:"condition_index,omitempty"`
	DefectSeverity           DefectSeverity       `json:"defect_severity,omitempty"`
	MaintenanceFrequency     MaintenanceFrequency `json:"maintenance_frequency,omitempty"`
	DeferredMaintenanceYears *float64             `json:"deferred_maintenance_years,omitempty"`
	OperatingEnvironment     OperatingEnvironment `json:"operating_environment,omitempty"`
	UtilizationRate          *float64             `json:"utilization_rate,omitempty"`
	EquipmentType            string               `json:"equipment_type,omitempty"`
}

// FactorResult captures one sub-factor's contribution to the PoF.
type FactorResult struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Weighted  float64 `json:"weighted"`
	Available bool    `json:"available"`
	Reason    string  `json:"reason"`
}

// --- Individual sub-factor calculators ---

// ageFactor buckets the Weibull cumulative failure probability into the
// 1–5 scale. Unavailable when age is not recorded.
func ageFactor(in FactorInputs, curves CurveTable) FactorResult {
	if in.AgeYears == nil {
		return FactorResult{Name: "age", Score: 3.0, Available: false, Reason: "age not recorded"}
	}
	curve, key := curves.Lookup(in.EquipmentType)
	f := curve.CumulativeFailure(*in.AgeYears)

	var score float64
	switch {
	case f < 0.10:
		score = 1.0
	case f < 0.30:
		score = 2.0
	case f < 0.60:
		score = 3.0
	case f < 0.85:
		score = 4.0
	default:
		score = 5.0
	}
	reason := fmt.Sprintf("age %.1fy on curve %s (beta=%.1f, eta=%.0fy): failure probability %.1f%%",
		*in.AgeYears, key, curve.Beta, curve.Eta, f*100)
	return FactorResult{Name: "age", Score: score, Available: true, Reason: reason}
}

// conditionFactor buckets the condition index descending into 1–5, then
// shifts by the defect-severity offset and clamps to [1,5].
func conditionFactor(in FactorInputs) FactorResult {
	if in.ConditionIndex == nil && in.DefectSeverity == "" {
		return FactorResult{Name: "condition", Score: 3.0, Available: false, Reason: "condition not recorded"}
	}

	base := 3.0
	reason := "no condition index"
	if in.ConditionIndex != nil {
		ci := clamp(*in.ConditionIndex, 0, 100)
		switch {
		case ci >= 85:
			base = 1.0
		case ci >= 70:
			base = 2.0
		case ci >= 55:
			base = 3.0
		case ci >= 40:
			base = 4.0
		default:
			base = 5.0
		}
		reason = fmt.Sprintf("condition index %.0f", ci)
	}

	offset := 0.0
	switch in.DefectSeverity {
	case DefectNone:
		offset = -0.5
	case DefectMinor:
		offset = 0.0
	case DefectModerate:
		offset = 0.5
	case DefectMajor:
		offset = 1.0
	case DefectCritical:
		offset = 1.5
	}
	if in.DefectSeverity != "" {
		reason += fmt.Sprintf(", %s defects", in.DefectSeverity)
	}

	return FactorResult{Name: "condition", Score: clamp(base+offset, 1, 5), Available: true, Reason: reason}
}

// maintenanceFactor starts from the maintenance regime and adds 0.3 per
// year of deferred maintenance, capped at 5.
func maintenanceFactor(in FactorInputs) FactorResult {
	if in.MaintenanceFrequency == "" && in.DeferredMaintenanceYears == nil {
		return FactorResult{Name: "maintenance", Score: 3.0, Available: false, Reason: "maintenance not recorded"}
	}

	base := 3.0
	reason := "no maintenance regime recorded"
	switch in.MaintenanceFrequency {
	case MaintenancePredictive:
		base = 1.0
	case MaintenancePreventive:
		base = 2.0
	case MaintenanceScheduled:
		base = 3.0
	case MaintenanceReactive:
		base = 4.0
	case MaintenanceNone:
		base = 5.0
	}
	if in.MaintenanceFrequency != "" {
		reason = fmt.Sprintf("%s maintenance", in.MaintenanceFrequency)
	}

	score := base
	if in.DeferredMaintenanceYears != nil && *in.DeferredMaintenanceYears > 0 {
		score += 0.3 * *in.DeferredMaintenanceYears
		reason += fmt.Sprintf(", %.1fy deferred", *in.DeferredMaintenanceYears)
	}

	return FactorResult{Name: "maintenance", Score: clamp(score, 1, 5), Available: true, Reason: reason}
}

// environmentFactor maps the operating environment directly to a score.
func environmentFactor(in FactorInputs) FactorResult {
	if in.OperatingEnvironment == "" {
		return FactorResult{Name: "environment", Score: 2.0, Available: false, Reason: "environment not recorded"}
	}
	score := 2.0
	switch in.OperatingEnvironment {
	case EnvironmentControlled:
		score = 1.0
	case EnvironmentNormal:
		score = 2.0
	case EnvironmentHarsh:
		score = 3.5
	case EnvironmentExtreme:
		score = 5.0
	}
	return FactorResult{
		Name: "environment", Score: score, Available: true,
		Reason: fmt.Sprintf("%s environment", in.OperatingEnvironment),
	}
}

// utilizationFactor buckets the utilization-rate percentage.
func utilizationFactor(in FactorInputs) FactorResult {
	if in.UtilizationRate == nil {
		return FactorResult{Name: "utilization", Score: 2.0, Available: false, Reason: "utilization not recorded"}
	}
	u := math.Max(0, *in.UtilizationRate)
	var score float64
	switch {
	case u <= 40:
		score = 1.0
	case u <= 70:
		score = 2.0
	case u <= 90:
		score = 3.0
	case u <= 100:
		score = 4.0
	default:
		score = 5.0
	}
	return FactorResult{
		Name: "utilization", Score: score, Available: true,
		Reason: fmt.Sprintf("utilization %.0f%%", u),
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
