package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/criteria"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/risk"
)

// AssetFactorInputs is the stored raw scoring input for one asset.
type AssetFactorInputs struct {
	AssetID     uuid.UUID                `json:"asset_id"`
	Reliability reliability.FactorInputs `json:"reliability"`
	Consequence consequence.Inputs       `json:"consequence"`
}

// AssessmentFilter narrows ListAssessments.
type AssessmentFilter struct {
	Status  *risk.AssessmentStatus
	AssetID *uuid.UUID
	Limit   int
	Offset  int
}

// Store is the full persistence surface of the service. The criteria,
// composite, and recalc packages each depend on their own narrow subset;
// PostgresStore implements all of them.
type Store interface {
	// Factor inputs
	GetFactorInputs(ctx context.Context, assetID uuid.UUID) (*AssetFactorInputs, error)
	UpsertFactorInputs(ctx context.Context, in *AssetFactorInputs) error

	// Criteria configuration
	GetCriteriaSet(ctx context.Context) (*criteria.Set, error)
	UpdateCriteriaSet(ctx context.Context, set *criteria.Set, expectedGeneration int64) error
	AppendAudit(ctx context.Context, entry *criteria.AuditEntry) error
	ListAudit(ctx context.Context, criterionID uuid.UUID) ([]*criteria.AuditEntry, error)

	// Per-asset criterion and composite scores
	CountAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error)
	ListAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) ([]uuid.UUID, error)
	DeleteScoresForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error)
	UpsertCriterionScore(ctx context.Context, assetID, criterionID uuid.UUID, score float64) error
	GetCriterionScores(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]float64, error)
	UpsertCompositeScore(ctx context.Context, assetID uuid.UUID, score float64) error
	ListCompositeScores(ctx context.Context) (map[uuid.UUID]float64, error)
	ListScoredAssets(ctx context.Context) ([]uuid.UUID, error)

	// Risk assessments
	CreateAssessment(ctx context.Context, a *risk.Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error)
	UpdateAssessmentStatus(ctx context.Context, id uuid.UUID, status risk.AssessmentStatus) error
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*risk.Assessment, error)
	ListAssessmentScores(ctx context.Context) ([]float64, error)

	Close() error
}
