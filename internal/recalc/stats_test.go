package recalc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/atlasfm/atlas/internal/events"
)

type mockEvents struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	subject string
	data    interface{}
}

func (m *mockEvents) Publish(subject string, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{subject: subject, data: data})
	return nil
}

func (m *mockEvents) Close() {}

func (m *mockEvents) events() []publishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedEvent(nil), m.published...)
}

func TestStatsLoopPublishesPortfolioStats(t *testing.T) {
	store := &mockStore{}
	ev := &mockEvents{}
	e := New(store, &mockScorer{}, ev, 2, 5*time.Millisecond, discardLogger())

	e.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	e.Stop()

	var stats []events.PortfolioStatsEvent
	for _, p := range ev.events() {
		if p.subject != events.SubjectPortfolioStats {
			continue
		}
		s, ok := p.data.(events.PortfolioStatsEvent)
		if !ok {
			t.Fatalf("unexpected payload type %T", p.data)
		}
		stats = append(stats, s)
	}
	if len(stats) == 0 {
		t.Fatal("expected at least one portfolio stats event")
	}
	if stats[0].TotalAssessed != 0 {
		t.Errorf("empty portfolio should report 0 assessed, got %d", stats[0].TotalAssessed)
	}
	if len(stats[0].Distribution) != 5 {
		t.Errorf("expected all 5 bands in the distribution, got %d", len(stats[0].Distribution))
	}
}

func TestStartWithoutIntervalOrEventsIsNoop(t *testing.T) {
	e := New(&mockStore{}, &mockScorer{}, nil, 2, 0, discardLogger())
	e.Start(context.Background())
	e.Stop() // must not hang or panic

	e = New(&mockStore{}, &mockScorer{}, &mockEvents{}, 2, 0, discardLogger())
	e.Start(context.Background())
	e.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	e := New(&mockStore{}, &mockScorer{}, &mockEvents{}, 2, time.Millisecond, discardLogger())
	e.Start(context.Background())
	e.Stop()
	e.Stop()
}

func TestRecalculatePublishesCompletionEvent(t *testing.T) {
	store := &mockStore{scoredAssets: assetIDs(2)}
	ev := &mockEvents{}
	e := New(store, &mockScorer{}, ev, 2, 0, discardLogger())

	if _, err := e.RecalculatePortfolio(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	published := ev.events()
	if len(published) != 1 || published[0].subject != events.SubjectPortfolioRecalc {
		t.Fatalf("expected one recalculation event, got %+v", published)
	}
	done, ok := published[0].data.(events.RecalculationCompletedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", published[0].data)
	}
	if done.Scope != "portfolio" || done.Attempted != 2 || done.Succeeded != 2 {
		t.Errorf("unexpected event: %+v", done)
	}
}
