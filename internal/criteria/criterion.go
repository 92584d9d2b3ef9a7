// Package criteria owns the prioritization-criteria configuration: the
// criterion state machine, weight normalization, the append-only audit
// trail, and the lifecycle manager that keeps composite scores consistent
// with the active configuration.
package criteria

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a criterion.
type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
	StatusDeleted  Status = "deleted"
)

// transitions is the explicit table of allowed status moves. Deleted is
// terminal; rows are soft-marked, never purged, to preserve audit linkage.
var transitions = map[Status][]Status{
	StatusActive:   {StatusDisabled, StatusDeleted},
	StatusDisabled: {StatusActive, StatusDeleted},
	StatusDeleted:  {},
}

// canTransition reports whether a status move is allowed by the table.
func canTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Criterion is one named, weighted dimension of the portfolio composite
// score. Weight is on the 0–100 scale; the weights of all criteria that
// Count() toward normalization sum to 100.
type Criterion struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Weight    float64   `json:"weight"`
	IsActive  bool      `json:"is_active"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counts reports whether the criterion participates in normalization and
// future scoring: it must be status-active and not soft-removed.
func (c *Criterion) Counts() bool {
	return c.Status == StatusActive && c.IsActive
}

// Set is a versioned snapshot of the whole criteria configuration. The
// generation counter backs optimistic concurrency: writers pass the
// generation they read, and a stale write is rejected rather than merged.
type Set struct {
	Generation int64       `json:"generation"`
	Criteria   []Criterion `json:"criteria"`
}

// ActiveCount returns the number of criteria counting toward normalization.
func (s *Set) ActiveCount() int {
	n := 0
	for i := range s.Criteria {
		if s.Criteria[i].Counts() {
			n++
		}
	}
	return n
}

// ActiveWeightSum returns the weight total over counting criteria.
func (s *Set) ActiveWeightSum() float64 {
	var sum float64
	for i := range s.Criteria {
		if s.Criteria[i].Counts() {
			sum += s.Criteria[i].Weight
		}
	}
	return sum
}

// Find returns a pointer into the set for the given criterion id, or nil.
func (s *Set) Find(id uuid.UUID) *Criterion {
	for i := range s.Criteria {
		if s.Criteria[i].ID == id {
			return &s.Criteria[i]
		}
	}
	return nil
}

// Clone returns a deep copy so mutations can be staged before the
// compare-and-swap write.
func (s *Set) Clone() *Set {
	out := &Set{Generation: s.Generation, Criteria: make([]Criterion, len(s.Criteria))}
	copy(out.Criteria, s.Criteria)
	return out
}
