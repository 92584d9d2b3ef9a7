package criteria

import "math"

// weightEpsilon is the rounding tolerance on the 100-point weight scale.
const weightEpsilon = 0.01

// Normalize rescales the weights of counting criteria so they sum to 100.
// Negative weights are clamped to 0 first; an all-zero sum distributes
// 100/N equally. A set already within epsilon of 100 is left untouched,
// which makes the operation idempotent.
func Normalize(set *Set) {
	var counting []*Criterion
	for i := range set.Criteria {
		if set.Criteria[i].Counts() {
			counting = append(counting, &set.Criteria[i])
		}
	}
	if len(counting) == 0 {
		return
	}

	var sum float64
	for _, c := range counting {
		if c.Weight < 0 {
			c.Weight = 0
		}
		sum += c.Weight
	}

	if sum == 0 {
		equal := round2w(100 / float64(len(counting)))
		rounded := 0.0
		for _, c := range counting {
			c.Weight = equal
			rounded += equal
		}
		// Equal shares of 100 rarely round to an exact sum; the last
		// criterion absorbs the residue, same as the rescale path below.
		if diff := round2w(100 - rounded); diff != 0 {
			last := counting[len(counting)-1]
			last.Weight = round2w(last.Weight + diff)
		}
		return
	}

	if math.Abs(sum-100) <= weightEpsilon {
		return
	}

	scale := 100 / sum
	rounded := 0.0
	for _, c := range counting {
		c.Weight = round2w(c.Weight * scale)
		rounded += c.Weight
	}
	// Push any rounding residue onto the last criterion so the sum lands
	// on exactly 100.
	if diff := round2w(100 - rounded); diff != 0 {
		last := counting[len(counting)-1]
		last.Weight = round2w(last.Weight + diff)
	}
}

// Normalized reports whether the counting weights already sum to 100
// within epsilon.
func Normalized(set *Set) bool {
	if set.ActiveCount() == 0 {
		return true
	}
	return math.Abs(set.ActiveWeightSum()-100) <= weightEpsilon
}

func round2w(v float64) float64 {
	return math.Round(v*100) / 100
}
