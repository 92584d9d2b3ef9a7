package events

const (
	SubjectPortfolioStats  = "atlas.portfolio.stats"
	SubjectPortfolioRecalc = "atlas.portfolio.recalculated"

	StreamName   = "ATLAS_EVENTS"
	StreamMaxAge = "2160h" // 90 days: audit-adjacent events keep a quarter
)

func SubjectAssessmentCreated(assetID string) string {
	return "atlas.assessment." + assetID + ".created"
}

func SubjectAssessmentStatus(assessmentID, status string) string {
	return "atlas.assessment." + assessmentID + "." + status
}

func SubjectCriterion(criterionID, action string) string {
	return "atlas.criteria." + criterionID + "." + action
}
