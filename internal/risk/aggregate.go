package risk

// PortfolioMetrics is the reduction of a set of classified scores.
type PortfolioMetrics struct {
	Distribution     map[Level]int `json:"distribution"`
	AverageRiskScore float64       `json:"average_risk_score"`
	HighestRiskScore float64       `json:"highest_risk_score"`
	Count            int           `json:"count"`
}

// Aggregate reduces a collection of scores into distribution and summary
// statistics. Empty input yields zero metrics, not an error.
func Aggregate(scores []Score) PortfolioMetrics {
	m := PortfolioMetrics{Distribution: make(map[Level]int, 5)}
	for _, lvl := range Levels() {
		m.Distribution[lvl] = 0
	}

	if len(scores) == 0 {
		return m
	}

	var sum float64
	for _, s := range scores {
		m.Distribution[s.Level]++
		sum += s.RiskScore
		if s.RiskScore > m.HighestRiskScore {
			m.HighestRiskScore = s.RiskScore
		}
	}
	m.Count = len(scores)
	m.AverageRiskScore = round2(sum / float64(len(scores)))
	return m
}
