package events

import "time"

type AssessmentCreatedEvent struct {
	AssessmentID string  `json:"assessment_id"`
	AssetID      string  `json:"asset_id"`
	PoF          float64 `json:"pof"`
	CoF          float64 `json:"cof"`
	RiskScore    float64 `json:"risk_score"`
	RiskLevel    string  `json:"risk_level"`
}

type AssessmentStatusEvent struct {
	AssessmentID string `json:"assessment_id"`
	AssetID      string `json:"asset_id"`
	Status       string `json:"status"`
	Actor        string `json:"actor"`
}

type CriterionLifecycleEvent struct {
	CriterionID    string `json:"criterion_id"`
	Action         string `json:"action"`
	Actor          string `json:"actor"`
	ImpactedAssets int    `json:"impacted_assets"`
}

type RecalculationCompletedEvent struct {
	Scope     string   `json:"scope"`
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed,omitempty"`
}

type PortfolioStatsEvent struct {
	TotalAssessed    int            `json:"total_assessed"`
	AverageRiskScore float64        `json:"average_risk_score"`
	HighestRiskScore float64        `json:"highest_risk_score"`
	Distribution     map[string]int `json:"distribution"`
	Timestamp        time.Time      `json:"timestamp"`
}
