package recovery

import "testing"

func TestClassifyMathTypeArray(t *testing.T) {
	p := Classify(`Expected an array for Vec3, found object (sequence expected)`)
	if p.Kind != PatternMathTypeArray {
		t.Fatalf("kind = %v, want PatternMathTypeArray", p.Kind)
	}
	if p.MathType != "Vec3" {
		t.Fatalf("math type = %q, want Vec3", p.MathType)
	}
}

func TestClassifyMissingField(t *testing.T) {
	p := Classify(`unknown field "no_such_field" on my_game::Health`)
	if p.Kind != PatternMissingField {
		t.Fatalf("kind = %v, want PatternMissingField", p.Kind)
	}
	if p.Field != "no_such_field" {
		t.Fatalf("field = %q, want no_such_field", p.Field)
	}
}

func TestClassifyUnknownComponentType(t *testing.T) {
	p := Classify(`unknown component type: my_game::Weird`)
	if p.Kind != PatternUnknownComponentType {
		t.Fatalf("kind = %v, want PatternUnknownComponentType", p.Kind)
	}
}

func TestClassifyEnumVariantMismatch(t *testing.T) {
	p := Classify(`expected variant Circle, found variant Square; expected one of: Circle, Square, None`)
	if p.Kind != PatternEnumUnitVariantMutation {
		t.Fatalf("kind = %v, want PatternEnumUnitVariantMutation", p.Kind)
	}
	if len(p.ValidNames) != 3 {
		t.Fatalf("valid names = %v, want 3 entries", p.ValidNames)
	}
}

func TestClassifyUnknownFallsThrough(t *testing.T) {
	p := Classify(`connection reset by peer`)
	if p.Kind != PatternUnknown {
		t.Fatalf("kind = %v, want PatternUnknown", p.Kind)
	}
}
