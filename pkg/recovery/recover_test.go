package recovery

import (
	"testing"

	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

func TestRecoverPassesThroughUntypedMethod(t *testing.T) {
	out := Recover(nil, nil, nil, nil, "get", value.Object(), &transport.CallError{Message: "boom"})
	if out.Kind != OutcomeNotRecoverable {
		t.Fatalf("kind = %v, want NotRecoverable for an untyped method", out.Kind)
	}
}

func TestExtractSlotsMutateComponent(t *testing.T) {
	params := value.Object()
	params.Set("entity", value.Int(42))
	params.Set("component", value.String("my_game::Health"))
	params.Set("path", value.String(".current"))
	params.Set("value", value.Object().Set("x", value.Number(1)).Set("y", value.Number(2)).Set("z", value.Number(3)))

	slots := extractSlots("mutate_component", params)
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	if slots[0].typeName != "my_game::Health" {
		t.Fatalf("type = %q, want my_game::Health", slots[0].typeName)
	}
	if slots[0].path != ".current" {
		t.Fatalf("path = %q, want .current", slots[0].path)
	}
}

func TestLevel3MathObjectToArray(t *testing.T) {
	payload := value.Object().Set("x", value.Number(1)).Set("y", value.Number(2)).Set("z", value.Number(3))
	slots := []slot{{typeName: "bevy_math::Vec3", path: ".translation", value: payload}}
	firstErr := &transport.CallError{Message: "expected an array for Vec3, found object (sequence expected)"}

	corrections, done := level3(slots, firstErr)
	if !done || len(corrections) != 1 {
		t.Fatalf("level3 = (%v, %v), want one correction", corrections, done)
	}
	c := corrections[0]
	if !c.Retryable() {
		t.Fatal("expected a retryable correction")
	}
	if c.CorrectedValue.Kind() != value.KindArray || c.CorrectedValue.Len() != 3 {
		t.Fatalf("corrected value = %#v, want a 3-element array", c.CorrectedValue)
	}
}

func TestLevel3EnumVariantGuidanceIsNotRetryable(t *testing.T) {
	slots := []slot{{typeName: "my_game::Shape", path: ""}}
	firstErr := &transport.CallError{Message: "expected variant Circle, found variant Square; expected one of: Circle, Square, None"}

	corrections, done := level3(slots, firstErr)
	if !done || len(corrections) != 1 {
		t.Fatalf("level3 = (%v, %v), want one correction", corrections, done)
	}
	if corrections[0].Retryable() {
		t.Fatal("enum variant guidance should not be retryable")
	}
	if len(corrections[0].ValidValues) != 3 {
		t.Fatalf("valid values = %v, want 3 entries", corrections[0].ValidValues)
	}
}

func TestLevel3UnknownPatternYieldsNothing(t *testing.T) {
	slots := []slot{{typeName: "my_game::Health"}}
	firstErr := &transport.CallError{Message: "connection reset by peer"}
	_, done := level3(slots, firstErr)
	if done {
		t.Fatal("expected no Level 3 correction for an unclassifiable error")
	}
}
