package criteria

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or out-of-range caller input. It is
// returned to the caller and never retried automatically.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// InvariantViolation reports a mutation rejected before any write because
// it would break a named configuration rule. ActiveCount and WeightSum
// carry the state at rejection time so an admin UI can explain the refusal.
type InvariantViolation struct {
	Rule        string
	ActiveCount int
	WeightSum   float64
	Msg         string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s (active=%d, weight_sum=%.2f)",
		e.Rule, e.Msg, e.ActiveCount, e.WeightSum)
}

// ConcurrencyConflict reports a lifecycle mutation that lost a race on the
// criteria set. The loser must be retried by its caller with fresh state.
type ConcurrencyConflict struct {
	ExpectedGeneration int64
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("criteria set changed since generation %d; retry with fresh state", e.ExpectedGeneration)
}

// ErrStaleGeneration is returned by stores when a compare-and-swap write
// observes a generation other than the one the caller read.
var ErrStaleGeneration = errors.New("stale criteria generation")

// IsConflict reports whether err is a concurrency conflict at any level.
func IsConflict(err error) bool {
	var cc *ConcurrencyConflict
	return errors.As(err, &cc) || errors.Is(err, ErrStaleGeneration)
}
