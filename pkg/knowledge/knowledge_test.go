package knowledge

import (
	"testing"

	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

func typeName(s string) registry.TypeName { return registry.TypeName(s) }

func TestMathTypesAreArrays(t *testing.T) {
	b := Default()
	cases := []struct {
		name   string
		length int
	}{
		{"bevy_math::Vec2", 2},
		{"bevy_math::Vec3", 3},
		{"bevy_math::Vec4", 4},
		{"bevy_math::Quat", 4},
	}
	for _, tc := range cases {
		v, ok := b.Lookup(typeName(tc.name))
		if !ok {
			t.Fatalf("missing knowledge example for %s", tc.name)
		}
		if v.Kind() != value.KindArray {
			t.Fatalf("%s example kind = %v, want array", tc.name, v.Kind())
		}
		if v.Len() != tc.length {
			t.Fatalf("%s example length = %d, want %d", tc.name, v.Len(), tc.length)
		}
	}
}

func TestComponentExampleDerivesField(t *testing.T) {
	b := Default()
	translation, ok := b.ComponentExample(typeName("bevy_transform::components::transform::Transform"), "translation")
	if !ok {
		t.Fatal("expected a translation example")
	}
	if translation.Kind() != value.KindArray || translation.Len() != 3 {
		t.Fatalf("translation = %#v, want 3-element array", translation)
	}
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	b := Default()
	if _, ok := b.Lookup(typeName("my_game::DoesNotExist")); ok {
		t.Fatal("expected no example for an unknown type")
	}
}
