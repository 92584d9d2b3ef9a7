// Package composite provides the default composite-score recalculator: a
// weighted blend of per-asset criterion scores under the currently active
// weights. Hosts with their own prioritization math substitute their own
// implementation behind the recalc engine's interface.
package composite

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/criteria"
)

// Store is the persistence surface the scorer needs.
type Store interface {
	GetCriteriaSet(ctx context.Context) (*criteria.Set, error)
	GetCriterionScores(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]float64, error)
	UpsertCompositeScore(ctx context.Context, assetID uuid.UUID, score float64) error
}

// Scorer recomputes one asset's composite score from current configuration.
type Scorer struct {
	store  Store
	logger *slog.Logger
}

// NewScorer creates a Scorer.
func NewScorer(s Store, logger *slog.Logger) *Scorer {
	return &Scorer{store: s, logger: logger}
}

// Compute blends criterion scores under the set's active weights. Only
// criteria that count toward normalization and have a score for the asset
// contribute. Pure and order-independent: the same configuration and
// scores always produce the identical result.
func Compute(set *criteria.Set, scores map[uuid.UUID]float64) float64 {
	var total float64
	for i := range set.Criteria {
		c := &set.Criteria[i]
		if !c.Counts() {
			continue
		}
		score, ok := scores[c.ID]
		if !ok {
			continue
		}
		total += score * c.Weight / 100
	}
	return math.Round(total*100) / 100
}

// RecalculateAsset recomputes and persists the composite score for one
// asset using the currently active criteria snapshot.
func (s *Scorer) RecalculateAsset(ctx context.Context, assetID uuid.UUID) error {
	set, err := s.store.GetCriteriaSet(ctx)
	if err != nil {
		return fmt.Errorf("load criteria: %w", err)
	}
	scores, err := s.store.GetCriterionScores(ctx, assetID)
	if err != nil {
		return fmt.Errorf("load criterion scores for asset %s: %w", assetID, err)
	}

	composite := Compute(set, scores)
	if err := s.store.UpsertCompositeScore(ctx, assetID, composite); err != nil {
		return fmt.Errorf("write composite score for asset %s: %w", assetID, err)
	}

	s.logger.Debug("composite recalculated", "asset_id", assetID, "score", composite, "generation", set.Generation)
	return nil
}
