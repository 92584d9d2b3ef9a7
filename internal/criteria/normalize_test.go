package criteria

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
)

func activeCriterion(name string, weight float64) Criterion {
	return Criterion{
		ID:       uuid.New(),
		Name:     name,
		Weight:   weight,
		IsActive: true,
		Status:   StatusActive,
	}
}

func weightsOf(set *Set) []float64 {
	out := make([]float64, len(set.Criteria))
	for i := range set.Criteria {
		out[i] = set.Criteria[i].Weight
	}
	return out
}

func TestNormalizeRescalesToExactly100(t *testing.T) {
	set := &Set{Criteria: []Criterion{
		activeCriterion("condition", 50),
		activeCriterion("energy", 50),
		activeCriterion("code", 50),
	}}
	Normalize(set)

	if sum := set.ActiveWeightSum(); math.Abs(sum-100) > 1e-9 {
		t.Errorf("expected weights to sum to exactly 100, got %v (%v)", sum, weightsOf(set))
	}
	// 50/150 rounds to 33.33; the rounding residue lands on the last one.
	if set.Criteria[0].Weight != 33.33 || set.Criteria[1].Weight != 33.33 || set.Criteria[2].Weight != 33.34 {
		t.Errorf("unexpected weights: %v", weightsOf(set))
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	set := &Set{Criteria: []Criterion{
		activeCriterion("a", 33.33),
		activeCriterion("b", 33.33),
		activeCriterion("c", 33.34),
	}}
	before := weightsOf(set)
	Normalize(set)

	for i, w := range weightsOf(set) {
		if w != before[i] {
			t.Errorf("already-normalized weight %d changed from %v to %v", i, before[i], w)
		}
	}
}

func TestNormalizeClampsNegativeWeights(t *testing.T) {
	set := &Set{Criteria: []Criterion{
		activeCriterion("a", -10),
		activeCriterion("b", 50),
	}}
	Normalize(set)

	if set.Criteria[0].Weight != 0 {
		t.Errorf("negative weight should clamp to 0, got %v", set.Criteria[0].Weight)
	}
	if set.Criteria[1].Weight != 100 {
		t.Errorf("remaining weight should absorb the full 100, got %v", set.Criteria[1].Weight)
	}
}

func TestNormalizeAllZeroDistributesEqually(t *testing.T) {
	set := &Set{Criteria: []Criterion{
		activeCriterion("a", 0),
		activeCriterion("b", 0),
		activeCriterion("c", 0),
		activeCriterion("d", 0),
	}}
	Normalize(set)

	for i, w := range weightsOf(set) {
		if w != 25 {
			t.Errorf("criterion %d: expected 25, got %v", i, w)
		}
	}
}

func TestNormalizeAllZeroUnevenSplitSumsToExactly100(t *testing.T) {
	// 100/7 rounds to 14.29; seven shares overshoot by 0.03, which the
	// last criterion must absorb.
	set := &Set{}
	for i := 0; i < 7; i++ {
		set.Criteria = append(set.Criteria, activeCriterion(fmt.Sprintf("c%d", i), 0))
	}
	Normalize(set)

	weights := weightsOf(set)
	for i := 0; i < 6; i++ {
		if weights[i] != 14.29 {
			t.Errorf("criterion %d: expected 14.29, got %v", i, weights[i])
		}
	}
	if weights[6] != 14.26 {
		t.Errorf("last criterion: expected 14.26, got %v", weights[6])
	}

	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("expected sum exactly 100, got %v", sum)
	}

	// A second run must leave the weights alone.
	Normalize(set)
	after := weightsOf(set)
	for i := range weights {
		if after[i] != weights[i] {
			t.Errorf("criterion %d: second run changed %v to %v", i, weights[i], after[i])
		}
	}
}

func TestNormalizeIgnoresNonCountingCriteria(t *testing.T) {
	disabled := activeCriterion("disabled", 40)
	disabled.Status = StatusDisabled
	removed := activeCriterion("removed", 40)
	removed.IsActive = false

	set := &Set{Criteria: []Criterion{
		activeCriterion("a", 30),
		disabled,
		removed,
	}}
	Normalize(set)

	if set.Criteria[0].Weight != 100 {
		t.Errorf("sole counting criterion should carry 100, got %v", set.Criteria[0].Weight)
	}
	if set.Criteria[1].Weight != 40 || set.Criteria[2].Weight != 40 {
		t.Errorf("non-counting weights must be untouched: %v", weightsOf(set))
	}
}

func TestNormalizeEmptySetIsNoop(t *testing.T) {
	set := &Set{}
	Normalize(set)
	if len(set.Criteria) != 0 {
		t.Error("empty set should stay empty")
	}
	if !Normalized(set) {
		t.Error("empty set counts as normalized")
	}
}

func TestNormalized(t *testing.T) {
	set := &Set{Criteria: []Criterion{
		activeCriterion("a", 60),
		activeCriterion("b", 40.005),
	}}
	if !Normalized(set) {
		t.Errorf("sum %v should be within tolerance", set.ActiveWeightSum())
	}

	set.Criteria[1].Weight = 45
	if Normalized(set) {
		t.Error("sum 105 should not count as normalized")
	}
}

func TestNormalizeLargeRescaleStaysExact(t *testing.T) {
	// Seven uneven weights; whatever the rounding path, the final sum must
	// land on 100 to the cent.
	set := &Set{Criteria: []Criterion{
		activeCriterion("a", 13),
		activeCriterion("b", 7),
		activeCriterion("c", 29),
		activeCriterion("d", 3),
		activeCriterion("e", 17),
		activeCriterion("f", 11),
		activeCriterion("g", 23),
	}}
	Normalize(set)

	if sum := set.ActiveWeightSum(); math.Abs(sum-100) > 1e-9 {
		t.Errorf("expected exact 100, got %v", sum)
	}
}
