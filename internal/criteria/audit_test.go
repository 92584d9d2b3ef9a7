package criteria

import "testing"

func TestAuditPayloadRoundTrip(t *testing.T) {
	payloads := []AuditPayload{
		DeactivatedPayload{Scope: ScopePortfolio},
		DeactivatedPayload{Scope: ScopeGlobal},
		ReactivatedPayload{},
		DeletedPayload{ScoresDeleted: 42},
	}
	for _, p := range payloads {
		raw, err := MarshalPayload(p)
		if err != nil {
			t.Fatalf("marshal %T: %v", p, err)
		}
		back, err := UnmarshalPayload(raw)
		if err != nil {
			t.Fatalf("unmarshal %T: %v", p, err)
		}
		if back.Kind() != p.Kind() {
			t.Errorf("kind changed: %s -> %s", p.Kind(), back.Kind())
		}
		if back != p {
			t.Errorf("payload changed: %+v -> %+v", p, back)
		}
	}
}

func TestUnmarshalPayloadRejectsUnknownKind(t *testing.T) {
	if _, err := UnmarshalPayload([]byte(`{"kind":"renamed","data":{}}`)); err == nil {
		t.Error("expected error for unknown payload kind")
	}
}

func TestMarshalPayloadRejectsNil(t *testing.T) {
	if _, err := MarshalPayload(nil); err == nil {
		t.Error("expected error for nil payload")
	}
}
