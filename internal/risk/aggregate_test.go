package risk

import "testing"

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil)

	if m.Count != 0 || m.AverageRiskScore != 0 || m.HighestRiskScore != 0 {
		t.Errorf("empty portfolio should have zero metrics, got %+v", m)
	}
	if len(m.Distribution) != 5 {
		t.Fatalf("expected all 5 levels pre-populated, got %d", len(m.Distribution))
	}
	for lvl, n := range m.Distribution {
		if n != 0 {
			t.Errorf("level %s: expected 0, got %d", lvl, n)
		}
	}
}

func TestAggregate(t *testing.T) {
	scores := []Score{
		Classify(1, 1), // 1, very_low
		Classify(2, 3), // 6, low
		Classify(3, 4), // 12, medium
		Classify(5, 5), // 25, critical
	}
	m := Aggregate(scores)

	if m.Count != 4 {
		t.Errorf("expected count 4, got %d", m.Count)
	}
	if m.HighestRiskScore != 25 {
		t.Errorf("expected highest 25, got %v", m.HighestRiskScore)
	}
	if m.AverageRiskScore != 11.0 {
		t.Errorf("expected average 11.0, got %v", m.AverageRiskScore)
	}
	if m.Distribution[LevelVeryLow] != 1 || m.Distribution[LevelLow] != 1 ||
		m.Distribution[LevelMedium] != 1 || m.Distribution[LevelCritical] != 1 {
		t.Errorf("unexpected distribution: %v", m.Distribution)
	}
	if m.Distribution[LevelHigh] != 0 {
		t.Errorf("expected no high entries, got %d", m.Distribution[LevelHigh])
	}
}
