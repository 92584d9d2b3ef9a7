package recalc

import (
	"context"
	"time"

	"github.com/atlasfm/atlas/internal/events"
	"github.com/atlasfm/atlas/internal/risk"
)

// Start launches the periodic portfolio-stats publisher. No-op when the
// interval is zero or no event bus is configured.
func (e *Engine) Start(ctx context.Context) {
	if e.statsInterval <= 0 || e.events == nil {
		return
	}
	e.wg.Add(1)
	go e.statsLoop(ctx)
}

// Stop halts the stats loop and waits for it to exit.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	e.wg.Wait()
}

func (e *Engine) statsLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.publishStats(ctx)
		}
	}
}

func (e *Engine) publishStats(ctx context.Context) {
	raw, err := e.store.ListAssessmentScores(ctx)
	if err != nil {
		e.logger.Error("failed to load assessment scores for stats", "error", err)
		return
	}

	scores := make([]risk.Score, 0, len(raw))
	for _, rs := range raw {
		// Stored risk scores are pof*cof products; reconstruct the band
		// from the product alone for distribution purposes.
		scores = append(scores, risk.Score{RiskScore: rs, Level: risk.LevelForScore(rs)})
	}
	metrics := risk.Aggregate(scores)

	dist := make(map[string]int, len(metrics.Distribution))
	for lvl, n := range metrics.Distribution {
		dist[string(lvl)] = n
	}
	_ = e.events.Publish(events.SubjectPortfolioStats, events.PortfolioStatsEvent{
		TotalAssessed:    metrics.Count,
		AverageRiskScore: metrics.AverageRiskScore,
		HighestRiskScore: metrics.HighestRiskScore,
		Distribution:     dist,
		Timestamp:        time.Now().UTC(),
	})
}
