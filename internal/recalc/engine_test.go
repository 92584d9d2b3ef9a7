package recalc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockStore struct {
	criterionAssets map[uuid.UUID][]uuid.UUID
	scoredAssets    []uuid.UUID
}

func (m *mockStore) ListAssetsForCriterion(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return m.criterionAssets[id], nil
}

func (m *mockStore) ListScoredAssets(_ context.Context) ([]uuid.UUID, error) {
	return m.scoredAssets, nil
}

func (m *mockStore) ListAssessmentScores(_ context.Context) ([]float64, error) {
	return nil, nil
}

type mockScorer struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	failFor  map[uuid.UUID]error
	inFlight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
}

func (m *mockScorer) RecalculateAsset(_ context.Context, assetID uuid.UUID) error {
	n := m.inFlight.Add(1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.inFlight.Add(-1)

	m.mu.Lock()
	m.calls = append(m.calls, assetID)
	m.mu.Unlock()

	if err, ok := m.failFor[assetID]; ok {
		return err
	}
	return nil
}

func assetIDs(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRecalculateAssetsAllSucceed(t *testing.T) {
	scorer := &mockScorer{}
	e := New(&mockStore{}, scorer, nil, 4, 0, discardLogger())

	ids := assetIDs(10)
	summary, err := e.RecalculateAssets(context.Background(), ids)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Attempted != 10 || summary.Succeeded != 10 || len(summary.Failed) != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(scorer.calls) != 10 {
		t.Errorf("expected 10 recalculations, got %d", len(scorer.calls))
	}
}

func TestRecalculateAssetsEmptyBatch(t *testing.T) {
	e := New(&mockStore{}, &mockScorer{}, nil, 4, 0, discardLogger())

	summary, err := e.RecalculateAssets(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch must not error: %v", err)
	}
	if summary.Attempted != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRecalculateAssetsPartialFailure(t *testing.T) {
	ids := assetIDs(5)
	scorer := &mockScorer{failFor: map[uuid.UUID]error{
		ids[1]: errors.New("no inputs"),
		ids[3]: errors.New("store timeout"),
	}}
	e := New(&mockStore{}, scorer, nil, 2, 0, discardLogger())

	summary, err := e.RecalculateAssets(context.Background(), ids)

	var pf *PartialBatchFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected PartialBatchFailure, got %v", err)
	}
	if !pf.PartialFailure() {
		t.Error("partial failure must identify itself as best-effort")
	}
	if len(pf.Failures) != 2 {
		t.Errorf("expected 2 failures, got %d", len(pf.Failures))
	}
	if summary.Attempted != 5 || summary.Succeeded != 3 || len(summary.Failed) != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRecalculateAssetsBoundedConcurrency(t *testing.T) {
	scorer := &mockScorer{delay: 10 * time.Millisecond}
	e := New(&mockStore{}, scorer, nil, 3, 0, discardLogger())

	if _, err := e.RecalculateAssets(context.Background(), assetIDs(12)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak := scorer.peak.Load(); peak > 3 {
		t.Errorf("concurrency bound exceeded: peak %d workers", peak)
	}
}

func TestRecalculateAssetsCancelledContextStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scorer := &mockScorer{}
	e := New(&mockStore{}, scorer, nil, 2, 0, discardLogger())

	summary, err := e.RecalculateAssets(ctx, assetIDs(8))
	if err != nil {
		t.Fatalf("cancellation is not a batch error: %v", err)
	}
	if summary.Attempted != 0 {
		t.Errorf("nothing should be scheduled under a cancelled context, got %d", summary.Attempted)
	}
	if len(scorer.calls) != 0 {
		t.Errorf("expected no recalculations, got %d", len(scorer.calls))
	}
}

func TestDefaultConcurrency(t *testing.T) {
	e := New(&mockStore{}, &mockScorer{}, nil, 0, 0, discardLogger())
	if e.concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", e.concurrency)
	}
}

func TestRecalculateCriterionResolvesScope(t *testing.T) {
	critID := uuid.New()
	ids := assetIDs(3)
	store := &mockStore{criterionAssets: map[uuid.UUID][]uuid.UUID{critID: ids}}
	scorer := &mockScorer{}
	e := New(store, scorer, nil, 2, 0, discardLogger())

	summary, err := e.RecalculateCriterion(context.Background(), critID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Attempted != 3 || summary.Succeeded != 3 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestRecalculatePortfolioResolvesScope(t *testing.T) {
	store := &mockStore{scoredAssets: assetIDs(6)}
	scorer := &mockScorer{}
	e := New(store, scorer, nil, 2, 0, discardLogger())

	summary, err := e.RecalculatePortfolio(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Attempted != 6 {
		t.Errorf("expected all 6 scored assets attempted, got %d", summary.Attempted)
	}
}
