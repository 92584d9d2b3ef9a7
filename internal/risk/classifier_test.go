package risk

import "testing"

func TestClassifyGrid(t *testing.T) {
	// Every integer cell of the 5x5 matrix.
	tests := []struct {
		pof, cof float64
		want     Level
	}{
		{1, 1, LevelVeryLow},
		{1, 2, LevelVeryLow},
		{1, 3, LevelVeryLow},
		{1, 4, LevelLow},
		{1, 5, LevelLow},
		{2, 1, LevelVeryLow},
		{2, 2, LevelLow},
		{2, 3, LevelLow},
		{2, 4, LevelMedium},
		{2, 5, LevelMedium},
		{3, 1, LevelVeryLow},
		{3, 2, LevelLow},
		{3, 3, LevelMedium},
		{3, 4, LevelMedium},
		{3, 5, LevelHigh},
		{4, 1, LevelLow},
		{4, 2, LevelMedium},
		{4, 3, LevelMedium},
		{4, 4, LevelHigh},
		{4, 5, LevelCritical},
		{5, 1, LevelLow},
		{5, 2, LevelMedium},
		{5, 3, LevelHigh},
		{5, 4, LevelCritical},
		{5, 5, LevelCritical},
	}
	for _, tt := range tests {
		s := Classify(tt.pof, tt.cof)
		if s.Level != tt.want {
			t.Errorf("Classify(%v, %v) = %s, expected %s", tt.pof, tt.cof, s.Level, tt.want)
		}
		if s.RiskScore != tt.pof*tt.cof {
			t.Errorf("Classify(%v, %v) score = %v, expected %v", tt.pof, tt.cof, s.RiskScore, tt.pof*tt.cof)
		}
	}
}

func TestClassifyClampsInputs(t *testing.T) {
	s := Classify(0, 99)
	if s.PoF != 1 || s.CoF != 5 {
		t.Errorf("expected clamped (1, 5), got (%v, %v)", s.PoF, s.CoF)
	}
	if s.RiskScore != 5 {
		t.Errorf("expected score 5, got %v", s.RiskScore)
	}
}

func TestLevelForScoreBandsAreContiguous(t *testing.T) {
	// Walk the score range in small steps; the band may only ever step up.
	prev := LevelVeryLow
	rank := map[Level]int{LevelVeryLow: 1, LevelLow: 2, LevelMedium: 3, LevelHigh: 4, LevelCritical: 5}
	for s := 1.0; s <= 25.0; s += 0.25 {
		lvl := LevelForScore(s)
		if rank[lvl] < rank[prev] {
			t.Fatalf("band regressed from %s to %s at score %v", prev, lvl, s)
		}
		prev = lvl
	}
	if LevelForScore(1) != LevelVeryLow {
		t.Error("minimum score must be very_low")
	}
	if LevelForScore(25) != LevelCritical {
		t.Error("maximum score must be critical")
	}
}

func TestLevelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{3, LevelVeryLow},
		{3.01, LevelLow},
		{6, LevelLow},
		{6.01, LevelMedium},
		{12, LevelMedium},
		{12.01, LevelHigh},
		{19, LevelHigh},
		{19.01, LevelCritical},
	}
	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%v) = %s, expected %s", tt.score, got, tt.want)
		}
	}
}

func TestClassifyColorAndPriority(t *testing.T) {
	s := Classify(5, 5)
	if s.Color != "#f44336" || s.Priority != 5 {
		t.Errorf("critical cell: got color %s priority %d", s.Color, s.Priority)
	}
	s = Classify(1, 1)
	if s.Color != "#4caf50" || s.Priority != 1 {
		t.Errorf("very_low cell: got color %s priority %d", s.Color, s.Priority)
	}
}

func TestMatrixOrientation(t *testing.T) {
	m := Matrix()

	if m[0][0].Level != LevelCritical {
		t.Errorf("top-left must be the critical corner, got %s", m[0][0].Level)
	}
	if m[4][4].Level != LevelVeryLow {
		t.Errorf("bottom-right must be very_low, got %s", m[4][4].Level)
	}
	if m[0][0].PoF != 5 || m[0][0].CoF != 5 {
		t.Errorf("top-left should be PoF 5, CoF 5; got (%v, %v)", m[0][0].PoF, m[0][0].CoF)
	}
	if m[4][0].PoF != 1 || m[4][0].CoF != 5 {
		t.Errorf("bottom-left should be PoF 1, CoF 5; got (%v, %v)", m[4][0].PoF, m[4][0].CoF)
	}
}
