package mutation

import (
	"testing"

	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

const testRegistryJSON = `{
  "$defs": {
    "f32": {
      "typePath": "f32",
      "kind": "Value",
      "reflectTypes": ["Serialize", "Deserialize"]
    },
    "my_game::Health": {
      "typePath": "my_game::Health",
      "kind": "Struct",
      "reflectTypes": ["Serialize", "Deserialize", "Component"],
      "propertyOrder": ["current", "max"],
      "properties": {
        "current": {"type": {"$ref": "#/$defs/f32"}},
        "max": {"type": {"$ref": "#/$defs/f32"}}
      }
    },
    "my_game::Speed": {
      "typePath": "my_game::Speed",
      "kind": "TupleStruct",
      "reflectTypes": ["Serialize", "Deserialize", "Component"],
      "prefixItems": [{"type": {"$ref": "#/$defs/f32"}}]
    },
    "my_game::Opaque": {
      "typePath": "my_game::Opaque",
      "kind": "Struct",
      "reflectTypes": ["Component"],
      "propertyOrder": ["value"],
      "properties": {
        "value": {"type": {"$ref": "#/$defs/f32"}}
      }
    },
    "my_game::Shape": {
      "typePath": "my_game::Shape",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize", "Component"],
      "oneOf": [
        {
          "shortPath": "Circle",
          "kind": "Struct",
          "required": ["radius"],
          "properties": {"radius": {"type": {"$ref": "#/$defs/f32"}}}
        },
        {
          "shortPath": "Square",
          "kind": "Tuple",
          "prefixItems": [{"type": {"$ref": "#/$defs/f32"}}]
        },
        {
          "shortPath": "None",
          "kind": "Unit"
        }
      ]
    },
    "core::option::Option<f32>": {
      "typePath": "core::option::Option<f32>",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize"],
      "oneOf": [
        {"shortPath": "None", "kind": "Unit"},
        {
          "shortPath": "Some",
          "kind": "Tuple",
          "prefixItems": [{"type": {"$ref": "#/$defs/f32"}}]
        }
      ]
    }
  }
}`

func mustRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Parse([]byte(testRegistryJSON))
	if err != nil {
		t.Fatalf("parse test registry: %v", err)
	}
	return reg
}

func findRow(t *testing.T, rows []MutationPathInternal, path string) MutationPathInternal {
	t.Helper()
	for _, r := range rows {
		if r.MutationPath == path {
			return r
		}
	}
	t.Fatalf("no row for path %q among %d rows", path, len(rows))
	return MutationPathInternal{}
}

func TestBuildStructPaths(t *testing.T) {
	reg := mustRegistry(t)
	kb := knowledge.Default()
	rows, err := BuildMutationPaths(reg, kb, "my_game::Health")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	root := findRow(t, rows, "")
	if root.Mutability != Mutable {
		t.Fatalf("root mutability = %v, want Mutable", root.Mutability)
	}
	current := findRow(t, rows, ".current")
	if current.Mutability != Mutable {
		t.Fatalf("current mutability = %v, want Mutable", current.Mutability)
	}
	rootObj, ok := root.Example.ForParent()
	if !ok || rootObj.Kind() != value.KindObject {
		t.Fatalf("root example not an object: %#v", rootObj)
	}
	if rootObj.Len() != 2 {
		t.Fatalf("root example has %d fields, want 2", rootObj.Len())
	}
}

func TestBuildSingleFieldTupleStructMutatesAtParentPath(t *testing.T) {
	reg := mustRegistry(t)
	kb := knowledge.Default()
	rows, err := BuildMutationPaths(reg, kb, "my_game::Speed")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, r := range rows {
		if r.MutationPath == ".0" {
			t.Fatalf("single-field tuple struct should not emit a .0 path; got row %+v", r)
		}
	}
	root := findRow(t, rows, "")
	if root.Mutability != Mutable {
		t.Fatalf("root mutability = %v, want Mutable", root.Mutability)
	}
}

func TestBuildMissingSerializationTraits(t *testing.T) {
	reg := mustRegistry(t)
	kb := knowledge.Default()
	rows, err := BuildMutationPaths(reg, kb, "my_game::Opaque")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root := findRow(t, rows, "")
	if root.Mutability != NotMutable {
		t.Fatalf("root mutability = %v, want NotMutable", root.Mutability)
	}
	if root.MutabilityReason == nil || root.MutabilityReason.Kind != ReasonMissingSerializationTraits {
		t.Fatalf("expected MissingSerializationTraits reason, got %+v", root.MutabilityReason)
	}
}

func TestBuildEnumGroupsAndPreferredExample(t *testing.T) {
	reg := mustRegistry(t)
	kb := knowledge.Default()
	rows, err := BuildMutationPaths(reg, kb, "my_game::Shape")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root := findRow(t, rows, "")
	if root.Example.Tag != ExampleEnumRoot {
		t.Fatalf("root example tag = %v, want ExampleEnumRoot", root.Example.Tag)
	}
	if len(root.Example.Groups) != 3 {
		t.Fatalf("got %d variant groups, want 3", len(root.Example.Groups))
	}
	preferred, ok := root.Example.ForParent()
	if !ok {
		t.Fatal("expected a preferred example for the enum root")
	}
	// The struct-shaped Circle variant should be preferred over the
	// content-free Unit "None" variant.
	if preferred.Kind() != value.KindObject {
		t.Fatalf("preferred example kind = %v, want object (Circle wrapper)", preferred.Kind())
	}
	if _, ok := preferred.Get("Circle"); !ok {
		t.Fatalf("preferred example = %#v, want Circle wrapper", preferred)
	}

	radius := findRow(t, rows, ".radius")
	if radius.EnumPathData == nil {
		t.Fatal("expected .radius to carry enum path data")
	}
	if !radius.EnumPathData.VariantChain.Equal(VariantChain{"Circle"}) {
		t.Fatalf("radius variant chain = %v, want [Circle]", radius.EnumPathData.VariantChain)
	}
}

// TestBuildOptionCollapsesToNullAndUnwrappedSome covers the spec.md §4.5
// step 5 Option<T> transformation: unlike every other enum, None renders as
// bare JSON null and Some(T) unwraps to T directly, never as the usual
// {"VariantName": payload} externally-tagged wrapper.
func TestBuildOptionCollapsesToNullAndUnwrappedSome(t *testing.T) {
	reg := mustRegistry(t)
	kb := knowledge.Default()
	rows, err := BuildMutationPaths(reg, kb, "core::option::Option<f32>")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	root := findRow(t, rows, "")
	if len(root.Example.Groups) != 2 {
		t.Fatalf("got %d variant groups, want 2", len(root.Example.Groups))
	}
	for _, g := range root.Example.Groups {
		if g.Example == nil {
			t.Fatalf("group %v has no example", g.ApplicableVariants)
		}
		switch g.ApplicableVariants[0] {
		case "None":
			if !g.Example.IsNull() {
				t.Fatalf("None example = %#v, want null", *g.Example)
			}
		case "Some":
			if g.Example.Kind() != value.KindNumber {
				t.Fatalf("Some example = %#v, want a bare number, not a {\"Some\": ...} wrapper", *g.Example)
			}
		}
	}
}
