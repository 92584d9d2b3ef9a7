package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus is the administrative state of a stored assessment.
type AssessmentStatus string

const (
	AssessmentDraft    AssessmentStatus = "draft"
	AssessmentApproved AssessmentStatus = "approved"
	AssessmentArchived AssessmentStatus = "archived"
)

// assessmentTransitions is the explicit table of allowed status moves.
// Assessments only ever move forward, by explicit administrative action.
var assessmentTransitions = map[AssessmentStatus][]AssessmentStatus{
	AssessmentDraft:    {AssessmentApproved},
	AssessmentApproved: {AssessmentArchived},
	AssessmentArchived: {},
}

// Assessment is the immutable scoring result stored for one asset.
type Assessment struct {
	ID            uuid.UUID        `json:"id"`
	AssetID       uuid.UUID        `json:"asset_id"`
	PoF           float64          `json:"pof"`
	CoF           float64          `json:"cof"`
	RiskScore     float64          `json:"risk_score"`
	Level         Level            `json:"risk_level"`
	Justification string           `json:"justification"`
	Status        AssessmentStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CanTransition reports whether a status move is allowed by the table.
func CanTransition(from, to AssessmentStatus) bool {
	for _, next := range assessmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the assessment to the target status or returns an error
// naming the current status.
func (a *Assessment) Transition(to AssessmentStatus) error {
	if !CanTransition(a.Status, to) {
		return fmt.Errorf("assessment %s cannot move from %s to %s", a.ID, a.Status, to)
	}
	a.Status = to
	return nil
}

// ScoreOf reconstructs the classified score for a stored assessment.
func (a *Assessment) ScoreOf() Score {
	return Classify(a.PoF, a.CoF)
}
