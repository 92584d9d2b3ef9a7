package criteria

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasfm/atlas/internal/events"
)

// ConfirmationToken is the literal string a caller must supply to delete a
// criterion. Anything else, including a case variant, is rejected with no
// partial effects.
const ConfirmationToken = "DELETE"

// Store is the persistence surface the lifecycle manager needs. The
// criteria-set write is compare-and-swap on the generation the caller
// read; a stale write returns ErrStaleGeneration.
type Store interface {
	GetCriteriaSet(ctx context.Context) (*Set, error)
	UpdateCriteriaSet(ctx context.Context, set *Set, expectedGeneration int64) error
	AppendAudit(ctx context.Context, entry *AuditEntry) error
	CountAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error)
	DeleteScoresForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error)
}

// RecalcSummary reports the outcome of a cascading recalculation pass.
// Failed assets are reported, not retried, and do not roll back the rest.
type RecalcSummary struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed,omitempty"`
}

// Recalculator triggers downstream composite-score recomputation. The
// manager only orchestrates when it runs; the scoring logic lives behind
// this interface.
type Recalculator interface {
	RecalculateCriterion(ctx context.Context, criterionID uuid.UUID) (RecalcSummary, error)
	RecalculatePortfolio(ctx context.Context) (RecalcSummary, error)
}

// MutationResult is the outcome of one successful lifecycle transition.
type MutationResult struct {
	Criterion      Criterion     `json:"criterion"`
	Generation     int64         `json:"generation"`
	ImpactedAssets int           `json:"impacted_assets"`
	Recalc         RecalcSummary `json:"recalc"`
}

// Manager owns all mutations of the criteria configuration. Mutations are
// serialized in-process and guarded by the store's generation counter, so
// two racing writers can never both apply a rescale against the same
// pre-mutation sum.
type Manager struct {
	store  Store
	recalc Recalculator
	events events.Client
	logger *slog.Logger

	mu sync.Mutex
}

// NewManager creates a Manager. The events client may be nil; publication
// is best-effort.
func NewManager(s Store, r Recalculator, ev events.Client, logger *slog.Logger) *Manager {
	return &Manager{store: s, recalc: r, events: ev, logger: logger}
}

// List returns the current criteria set.
func (m *Manager) List(ctx context.Context) (*Set, error) {
	return m.store.GetCriteriaSet(ctx)
}

// Create adds a new active criterion, renormalizes weights, and triggers a
// portfolio recalculation so existing composites pick up the rescale.
func (m *Manager) Create(ctx context.Context, name string, weight float64, actor string) (*MutationResult, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Msg: "required"}
	}
	if weight < 0 || weight > 100 {
		return nil, &ValidationError{Field: "weight", Msg: fmt.Sprintf("must be in [0,100], got %.2f", weight)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.store.GetCriteriaSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}

	next := set.Clone()
	next.Criteria = append(next.Criteria, Criterion{
		ID:       uuid.New(),
		Name:     name,
		Weight:   weight,
		IsActive: true,
		Status:   StatusActive,
	})
	Normalize(next)

	if err := m.writeSet(ctx, next, set.Generation); err != nil {
		return nil, err
	}

	created := next.Criteria[len(next.Criteria)-1]
	summary, err := m.recalc.RecalculatePortfolio(ctx)
	if err != nil && !isPartial(err) {
		return nil, fmt.Errorf("recalculate portfolio: %w", err)
	}

	m.logger.Info("criterion created", "criterion_id", created.ID, "name", name, "actor", actor)
	return &MutationResult{Criterion: created, Generation: set.Generation + 1, Recalc: summary}, nil
}

// Remove soft-removes a criterion from the portfolio prioritization model:
// is_active is cleared but the status stays active. Reversible.
func (m *Manager) Remove(ctx context.Context, id uuid.UUID, actor, reason string) (*MutationResult, error) {
	return m.deactivate(ctx, id, actor, reason, ScopePortfolio)
}

// Disable globally disables a criterion: it moves to the disabled status,
// excluded from normalization and future scoring but visible for audit.
func (m *Manager) Disable(ctx context.Context, id uuid.UUID, actor, reason string) (*MutationResult, error) {
	return m.deactivate(ctx, id, actor, reason, ScopeGlobal)
}

func (m *Manager) deactivate(ctx context.Context, id uuid.UUID, actor, reason string, scope Scope) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.store.GetCriteriaSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	target := set.Find(id)
	if target == nil {
		return nil, &ValidationError{Field: "id", Msg: fmt.Sprintf("criterion %s not found", id)}
	}
	if scope == ScopeGlobal && !canTransition(target.Status, StatusDisabled) {
		return nil, &ValidationError{Field: "status", Msg: fmt.Sprintf("cannot disable criterion in status %s", target.Status)}
	}
	if scope == ScopePortfolio && !target.Counts() {
		return nil, &ValidationError{Field: "status", Msg: fmt.Sprintf("criterion is not active in the model (status %s)", target.Status)}
	}
	if err := m.checkLastActive(set, target); err != nil {
		return nil, err
	}

	impacted, err := m.store.CountAssetsForCriterion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count impacted assets: %w", err)
	}

	old := snapshotOf(target)

	next := set.Clone()
	staged := next.Find(id)
	staged.IsActive = false
	if scope == ScopeGlobal {
		staged.Status = StatusDisabled
	}
	Normalize(next)

	// The audit row is the compliance record of this transition; if it
	// cannot be written the whole operation fails.
	entry := &AuditEntry{
		CriterionID:    id,
		Action:         ActionDeactivated,
		OldState:       old,
		NewState:       snapshotOf(staged),
		Actor:          actor,
		Reason:         reason,
		ImpactedAssets: impacted,
		Payload:        DeactivatedPayload{Scope: scope},
	}
	if err := m.store.AppendAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}

	if err := m.writeSet(ctx, next, set.Generation); err != nil {
		return nil, err
	}

	summary, err := m.recalc.RecalculateCriterion(ctx, id)
	if err != nil && !isPartial(err) {
		return nil, fmt.Errorf("recalculate criterion %s: %w", id, err)
	}

	m.publishLifecycle(id, string(ActionDeactivated), actor, impacted)
	m.logger.Info("criterion deactivated", "criterion_id", id, "scope", scope, "actor", actor, "impacted_assets", impacted)
	return &MutationResult{Criterion: *staged, Generation: set.Generation + 1, ImpactedAssets: impacted, Recalc: summary}, nil
}

// Enable re-activates a disabled criterion. Only valid from the disabled
// status; any other status is rejected with a message naming it.
func (m *Manager) Enable(ctx context.Context, id uuid.UUID, actor, reason string) (*MutationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.store.GetCriteriaSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	target := set.Find(id)
	if target == nil {
		return nil, &ValidationError{Field: "id", Msg: fmt.Sprintf("criterion %s not found", id)}
	}
	if target.Status != StatusDisabled {
		return nil, &ValidationError{Field: "status", Msg: fmt.Sprintf("can only enable a disabled criterion, current status is %s", target.Status)}
	}

	impacted, err := m.store.CountAssetsForCriterion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count impacted assets: %w", err)
	}

	old := snapshotOf(target)

	next := set.Clone()
	staged := next.Find(id)
	staged.Status = StatusActive
	staged.IsActive = true
	Normalize(next)

	entry := &AuditEntry{
		CriterionID:    id,
		Action:         ActionReactivated,
		OldState:       old,
		NewState:       snapshotOf(staged),
		Actor:          actor,
		Reason:         reason,
		ImpactedAssets: impacted,
		Payload:        ReactivatedPayload{},
	}
	if err := m.store.AppendAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}

	if err := m.writeSet(ctx, next, set.Generation); err != nil {
		return nil, err
	}

	summary, err := m.recalc.RecalculateCriterion(ctx, id)
	if err != nil && !isPartial(err) {
		return nil, fmt.Errorf("recalculate criterion %s: %w", id, err)
	}

	m.publishLifecycle(id, string(ActionReactivated), actor, impacted)
	m.logger.Info("criterion enabled", "criterion_id", id, "actor", actor)
	return &MutationResult{Criterion: *staged, Generation: set.Generation + 1, ImpactedAssets: impacted, Recalc: summary}, nil
}

// Delete irreversibly deletes a criterion. The row is soft-marked deleted
// to preserve audit linkage; all per-asset scores under it are removed and
// the whole portfolio is recalculated. The audit entry is written before
// the destructive step so the trail survives a mid-operation failure.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID, actor, confirmation, reason string) (*MutationResult, error) {
	if confirmation != ConfirmationToken {
		return nil, &ValidationError{Field: "confirmation", Msg: fmt.Sprintf("confirmation token must be %q", ConfirmationToken)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, err := m.store.GetCriteriaSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	target := set.Find(id)
	if target == nil {
		return nil, &ValidationError{Field: "id", Msg: fmt.Sprintf("criterion %s not found", id)}
	}
	if !canTransition(target.Status, StatusDeleted) {
		return nil, &ValidationError{Field: "status", Msg: fmt.Sprintf("cannot delete criterion in status %s", target.Status)}
	}
	if err := m.checkLastActive(set, target); err != nil {
		return nil, err
	}

	impacted, err := m.store.CountAssetsForCriterion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count impacted assets: %w", err)
	}

	old := snapshotOf(target)

	next := set.Clone()
	staged := next.Find(id)
	staged.Status = StatusDeleted
	staged.IsActive = false
	Normalize(next)

	entry := &AuditEntry{
		CriterionID:    id,
		Action:         ActionDeleted,
		OldState:       old,
		NewState:       snapshotOf(staged),
		Actor:          actor,
		Reason:         reason,
		ImpactedAssets: impacted,
		Payload:        DeletedPayload{ScoresDeleted: impacted},
	}
	if err := m.store.AppendAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("write audit entry: %w", err)
	}

	// Claim the transition through the generation guard before any score
	// is destroyed; a stale write must leave the dependent scores intact.
	if err := m.writeSet(ctx, next, set.Generation); err != nil {
		return nil, err
	}

	if _, err := m.store.DeleteScoresForCriterion(ctx, id); err != nil {
		return nil, fmt.Errorf("delete scores for criterion %s: %w", id, err)
	}

	summary, err := m.recalc.RecalculatePortfolio(ctx)
	if err != nil && !isPartial(err) {
		return nil, fmt.Errorf("recalculate portfolio: %w", err)
	}

	m.publishLifecycle(id, string(ActionDeleted), actor, impacted)
	m.logger.Info("criterion deleted", "criterion_id", id, "actor", actor, "scores_deleted", impacted)
	return &MutationResult{Criterion: *staged, Generation: set.Generation + 1, ImpactedAssets: impacted, Recalc: summary}, nil
}

// checkLastActive rejects any transition that would leave the model with
// no counting criterion.
func (m *Manager) checkLastActive(set *Set, target *Criterion) error {
	if !target.Counts() {
		return nil
	}
	if set.ActiveCount() <= 1 {
		return &InvariantViolation{
			Rule:        "last-active-criterion",
			ActiveCount: set.ActiveCount(),
			WeightSum:   set.ActiveWeightSum(),
			Msg:         "cannot deactivate the last active criterion",
		}
	}
	return nil
}

// writeSet performs the compare-and-swap write, mapping a stale generation
// to a ConcurrencyConflict.
func (m *Manager) writeSet(ctx context.Context, set *Set, expectedGeneration int64) error {
	err := m.store.UpdateCriteriaSet(ctx, set, expectedGeneration)
	if errors.Is(err, ErrStaleGeneration) {
		return &ConcurrencyConflict{ExpectedGeneration: expectedGeneration}
	}
	if err != nil {
		return fmt.Errorf("write criteria set: %w", err)
	}
	return nil
}

func (m *Manager) publishLifecycle(id uuid.UUID, action, actor string, impacted int) {
	if m.events == nil {
		return
	}
	_ = m.events.Publish(events.SubjectCriterion(id.String(), action), events.CriterionLifecycleEvent{
		CriterionID:    id.String(),
		Action:         action,
		Actor:          actor,
		ImpactedAssets: impacted,
	})
}

// isPartial reports whether a recalculation error is a best-effort partial
// failure, which does not fail the lifecycle transition.
func isPartial(err error) bool {
	var pf interface{ PartialFailure() bool }
	return errors.As(err, &pf) && pf.PartialFailure()
}
