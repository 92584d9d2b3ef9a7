package criteria

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of lifecycle transition an audit entry records.
type Action string

const (
	ActionDeactivated Action = "deactivated"
	ActionReactivated Action = "reactivated"
	ActionDeleted     Action = "deleted"
)

// Scope distinguishes a portfolio-scoped soft removal (criterion stays
// status-active with is_active cleared) from a global disable.
type Scope string

const (
	ScopePortfolio Scope = "portfolio"
	ScopeGlobal    Scope = "global"
)

// StateSnapshot is the criterion state captured on either side of a
// transition.
type StateSnapshot struct {
	Weight   float64 `json:"weight"`
	IsActive bool    `json:"is_active"`
	Status   Status  `json:"status"`
}

func snapshotOf(c *Criterion) StateSnapshot {
	return StateSnapshot{Weight: c.Weight, IsActive: c.IsActive, Status: c.Status}
}

// AuditPayload is the closed union of per-action detail records. Each kind
// carries exactly the fields that transition produces — no untyped blobs.
type AuditPayload interface {
	Kind() Action
}

// DeactivatedPayload records a soft removal or disable.
type DeactivatedPayload struct {
	Scope Scope `json:"scope"`
}

func (DeactivatedPayload) Kind() Action { return ActionDeactivated }

// ReactivatedPayload records a re-enable from disabled.
type ReactivatedPayload struct{}

func (ReactivatedPayload) Kind() Action { return ActionReactivated }

// DeletedPayload records an irreversible delete and the score cascade.
type DeletedPayload struct {
	ScoresDeleted int `json:"scores_deleted"`
}

func (DeletedPayload) Kind() Action { return ActionDeleted }

// AuditEntry is one append-only record of a criterion transition. Entries
// are never mutated or deleted: they are the compliance trail proving why
// a historical ranking changed.
type AuditEntry struct {
	ID             uuid.UUID    `json:"id"`
	CriterionID    uuid.UUID    `json:"criterion_id"`
	Action         Action       `json:"action"`
	OldState       StateSnapshot `json:"old_state"`
	NewState       StateSnapshot `json:"new_state"`
	Actor          string       `json:"actor"`
	Reason         string       `json:"reason,omitempty"`
	ImpactedAssets int          `json:"impacted_assets"`
	Payload        AuditPayload `json:"payload"`
	CreatedAt      time.Time    `json:"created_at"`
}

// payloadEnvelope is the wire form of the tagged union.
type payloadEnvelope struct {
	Kind Action          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalPayload serializes the tagged union for storage.
func MarshalPayload(p AuditPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil audit payload")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(payloadEnvelope{Kind: p.Kind(), Data: data})
}

// UnmarshalPayload restores the tagged union from its stored form.
func UnmarshalPayload(raw []byte) (AuditPayload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case ActionDeactivated:
		var p DeactivatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActionReactivated:
		var p ReactivatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ActionDeleted:
		var p DeletedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown audit payload kind %q", env.Kind)
	}
}
