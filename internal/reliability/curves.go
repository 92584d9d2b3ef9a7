package reliability

import (
	"math"
	"strings"
)

// Curve holds the two Weibull parameters for one equipment class.
// Beta is the shape parameter, Eta the characteristic life in years.
type Curve struct {
	Beta float64 `yaml:"beta" json:"beta"`
	Eta  float64 `yaml:"eta" json:"eta"`
}

// CumulativeFailure returns F(t) = 1 - exp(-(t/eta)^beta) for age t in years.
func (c Curve) CumulativeFailure(ageYears float64) float64 {
	if ageYears <= 0 {
		return 0
	}
	return 1 - math.Exp(-math.Pow(ageYears/c.Eta, c.Beta))
}

// CurveTable maps equipment-type keys to reliability curves. Lookups are
// case-insensitive and fall back to the "default" curve.
type CurveTable struct {
	curves map[string]Curve
}

// DefaultCurves returns the built-in curve table. Parameters follow common
// facility-condition-assessment service lives.
func DefaultCurves() CurveTable {
	return CurveTable{curves: map[string]Curve{
		"default":               {Beta: 2.0, Eta: 20},
		"hvac-chiller":          {Beta: 2.5, Eta: 23},
		"hvac-boiler":           {Beta: 2.2, Eta: 25},
		"hvac-air-handler":      {Beta: 2.0, Eta: 20},
		"roof-membrane":         {Beta: 3.0, Eta: 22},
		"elevator":              {Beta: 1.8, Eta: 28},
		"pump":                  {Beta: 2.1, Eta: 15},
		"electrical-switchgear": {Beta: 1.6, Eta: 30},
		"emergency-generator":   {Beta: 2.0, Eta: 25},
		"fire-alarm-panel":      {Beta: 1.9, Eta: 15},
		"plumbing-fixture":      {Beta: 1.5, Eta: 18},
	}}
}

// NewCurveTable builds a table from the defaults plus the given overrides.
// Override keys are lowercased; an override may also replace "default".
func NewCurveTable(overrides map[string]Curve) CurveTable {
	t := DefaultCurves()
	for k, v := range overrides {
		if v.Beta <= 0 || v.Eta <= 0 {
			continue
		}
		t.curves[strings.ToLower(k)] = v
	}
	return t
}

// Lookup returns the curve for the given equipment type, falling back to
// "default" when the type is unknown or empty.
func (t CurveTable) Lookup(equipmentType string) (Curve, string) {
	key := strings.ToLower(strings.TrimSpace(equipmentType))
	if c, ok := t.curves[key]; ok {
		return c, key
	}
	return t.curves["default"], "default"
}
