// Package recalc runs cascading composite-score recalculation across the
// portfolio on a bounded worker pool. Batches are best-effort: one bad
// asset is reported as a partial failure and never blocks the rest.
package recalc

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/criteria"
	"github.com/atlasfm/atlas/internal/events"
)

// Store is the persistence surface the engine needs to resolve batch scopes
// and publish portfolio stats.
type Store interface {
	ListAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) ([]uuid.UUID, error)
	ListScoredAssets(ctx context.Context) ([]uuid.UUID, error)
	ListAssessmentScores(ctx context.Context) ([]float64, error)
}

// AssetRecalculator recomputes one asset's composite score. Implementations
// must be idempotent: recomputing twice under the same configuration yields
// identical results.
type AssetRecalculator interface {
	RecalculateAsset(ctx context.Context, assetID uuid.UUID) error
}

// AssetFailure is one asset's recalculation error inside a batch.
type AssetFailure struct {
	AssetID uuid.UUID `json:"asset_id"`
	Err     string    `json:"error"`
}

// PartialBatchFailure reports a batch that overall succeeded with some
// per-asset failures. Failed assets are not retried automatically and do
// not roll back the successfully recalculated ones.
type PartialBatchFailure struct {
	Failures []AssetFailure
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("%d assets failed recalculation", len(e.Failures))
}

// PartialFailure marks this error as best-effort rather than fatal.
func (e *PartialBatchFailure) PartialFailure() bool { return true }

// Engine schedules per-asset recalculation work, bounded by a concurrency
// limit so a portfolio-wide pass cannot overwhelm the storage backend.
type Engine struct {
	store       Store
	scorer      AssetRecalculator
	events      events.Client
	logger      *slog.Logger
	concurrency int

	statsInterval time.Duration
	stopOnce      sync.Once
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// New creates an Engine. The events client may be nil.
func New(s Store, scorer AssetRecalculator, ev events.Client, concurrency int, statsInterval time.Duration, logger *slog.Logger) *Engine {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Engine{
		store:         s,
		scorer:        scorer,
		events:        ev,
		logger:        logger,
		concurrency:   concurrency,
		statsInterval: statsInterval,
		stopCh:        make(chan struct{}),
	}
}

// RecalculateCriterion recomputes every asset holding a score under the
// given criterion (scoped recalculation).
func (e *Engine) RecalculateCriterion(ctx context.Context, criterionID uuid.UUID) (criteria.RecalcSummary, error) {
	ids, err := e.store.ListAssetsForCriterion(ctx, criterionID)
	if err != nil {
		return criteria.RecalcSummary{}, fmt.Errorf("list assets for criterion %s: %w", criterionID, err)
	}
	summary, batchErr := e.RecalculateAssets(ctx, ids)
	e.publishCompleted("criterion", summary)
	return summary, batchErr
}

// RecalculatePortfolio recomputes every scored asset (full recalculation,
// used after a delete).
func (e *Engine) RecalculatePortfolio(ctx context.Context) (criteria.RecalcSummary, error) {
	ids, err := e.store.ListScoredAssets(ctx)
	if err != nil {
		return criteria.RecalcSummary{}, fmt.Errorf("list scored assets: %w", err)
	}
	summary, batchErr := e.RecalculateAssets(ctx, ids)
	e.publishCompleted("portfolio", summary)
	return summary, batchErr
}

// RecalculateAssets runs the batch. Each asset is independent; a cancelled
// context stops scheduling new work but in-flight recalculations finish
// rather than aborting mid-write. Returns a PartialBatchFailure when some
// assets failed, nil when all succeeded.
func (e *Engine) RecalculateAssets(ctx context.Context, assetIDs []uuid.UUID) (criteria.RecalcSummary, error) {
	summary := criteria.RecalcSummary{}
	if len(assetIDs) == 0 {
		return summary, nil
	}

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []AssetFailure

	scheduled := 0
	for _, id := range assetIDs {
		if ctx.Err() != nil {
			e.logger.Warn("recalculation cancelled, remaining assets not scheduled",
				"scheduled", scheduled, "total", len(assetIDs))
			break
		}
		scheduled++
		wg.Add(1)
		sem <- struct{}{}
		go func(assetID uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()
			// In-flight work runs to completion under the background
			// context so a cancelled batch never aborts a write midway.
			if err := e.scorer.RecalculateAsset(context.WithoutCancel(ctx), assetID); err != nil {
				recalcAssetsTotal.WithLabelValues("error").Inc()
				e.logger.Warn("asset recalculation failed", "asset_id", assetID, "error", err)
				mu.Lock()
				failures = append(failures, AssetFailure{AssetID: assetID, Err: err.Error()})
				mu.Unlock()
				return
			}
			recalcAssetsTotal.WithLabelValues("ok").Inc()
		}(id)
	}
	wg.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].AssetID.String() < failures[j].AssetID.String() })

	summary.Attempted = scheduled
	summary.Succeeded = scheduled - len(failures)
	for _, f := range failures {
		summary.Failed = append(summary.Failed, f.AssetID.String())
	}

	if len(failures) > 0 {
		return summary, &PartialBatchFailure{Failures: failures}
	}
	return summary, nil
}

func (e *Engine) publishCompleted(scope string, summary criteria.RecalcSummary) {
	if e.events == nil {
		return
	}
	_ = e.events.Publish(events.SubjectPortfolioRecalc, events.RecalculationCompletedEvent{
		Scope:     scope,
		Attempted: summary.Attempted,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	})
}
