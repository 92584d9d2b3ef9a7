// Package risk combines PoF and CoF into a classified risk score and
// reduces collections of scores into portfolio metrics.
package risk

import "math"

// Level is the qualitative risk band for a 1–25 risk score.
type Level string

const (
	LevelVeryLow  Level = "very_low"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Levels lists all bands in ascending severity order.
func Levels() []Level {
	return []Level{LevelVeryLow, LevelLow, LevelMedium, LevelHigh, LevelCritical}
}

// Score is the classified result for one PoF/CoF pair.
type Score struct {
	PoF       float64 `json:"pof"`
	CoF       float64 `json:"cof"`
	RiskScore float64 `json:"risk_score"`
	Level     Level   `json:"risk_level"`
	Color     string  `json:"color"`
	Priority  int     `json:"priority"`
}

// Classify maps a PoF/CoF pair onto the risk matrix. Inputs are clamped to
// [1,5] first; the function is total and never fails.
func Classify(pof, cof float64) Score {
	pof = clamp(pof, 1, 5)
	cof = clamp(cof, 1, 5)
	score := round2(pof * cof)
	level := LevelForScore(score)
	return Score{
		PoF:       pof,
		CoF:       cof,
		RiskScore: score,
		Level:     level,
		Color:     levelColors[level],
		Priority:  levelPriorities[level],
	}
}

// LevelForScore buckets a 1–25 risk score into its band. Bands are
// upper-inclusive, contiguous, and cover the whole range.
func LevelForScore(score float64) Level {
	switch {
	case score <= 3:
		return LevelVeryLow
	case score <= 6:
		return LevelLow
	case score <= 12:
		return LevelMedium
	case score <= 19:
		return LevelHigh
	default:
		return LevelCritical
	}
}

var levelColors = map[Level]string{
	LevelVeryLow:  "#4caf50",
	LevelLow:      "#8bc34a",
	LevelMedium:   "#ffc107",
	LevelHigh:     "#ff9800",
	LevelCritical: "#f44336",
}

var levelPriorities = map[Level]int{
	LevelVeryLow:  1,
	LevelLow:      2,
	LevelMedium:   3,
	LevelHigh:     4,
	LevelCritical: 5,
}

// Matrix returns the full 5x5 risk matrix. Row 0 is PoF 5, column 0 is
// CoF 5, so the top-left cell is the critical corner.
func Matrix() [5][5]Score {
	var m [5][5]Score
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			m[i][j] = Classify(float64(5-i), float64(5-j))
		}
	}
	return m
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
