package mutation

import (
	"testing"

	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// nestedEnumRegistryJSON is an enum nested two layers behind an intervening
// struct field: Outer{WithMiddle(MiddleStruct), Unit}, MiddleStruct{inner:
// Inner}, Inner{A(u32), B{name:String}}.
const nestedEnumRegistryJSON = `{
  "$defs": {
    "u32": {"typePath": "u32", "kind": "Value", "reflectTypes": ["Serialize", "Deserialize"]},
    "alloc::string::String": {"typePath": "alloc::string::String", "kind": "Value", "reflectTypes": ["Serialize", "Deserialize"]},
    "test::Inner": {
      "typePath": "test::Inner",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize"],
      "oneOf": [
        {"shortPath": "A", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/u32"}}]},
        {"shortPath": "B", "kind": "Struct", "required": ["name"], "properties": {"name": {"type": {"$ref": "#/$defs/alloc::string::String"}}}}
      ]
    },
    "test::MiddleStruct": {
      "typePath": "test::MiddleStruct",
      "kind": "Struct",
      "reflectTypes": ["Serialize", "Deserialize"],
      "propertyOrder": ["inner"],
      "properties": {"inner": {"type": {"$ref": "#/$defs/test::Inner"}}}
    },
    "test::Outer": {
      "typePath": "test::Outer",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize", "Component"],
      "oneOf": [
        {"shortPath": "WithMiddle", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/test::MiddleStruct"}}]},
        {"shortPath": "Unit", "kind": "Unit"}
      ]
    }
  }
}`

func TestBuildEnumPropagatesPartialRootsThroughIntermediateStruct(t *testing.T) {
	reg, err := registry.Parse([]byte(nestedEnumRegistryJSON))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	kb := knowledge.Default()

	rows, err := BuildMutationPaths(reg, kb, registry.TypeName("test::Outer"))
	if err != nil {
		t.Fatalf("build mutation paths: %v", err)
	}

	root := findRow(t, rows, "")
	partials := root.PartialRootExamples

	want := map[string]string{
		"WithMiddle":    `{"WithMiddle":{"inner":{"B":{"name":""}}}}`,
		"WithMiddle::A": `{"WithMiddle":{"inner":{"A":0}}}`,
		"WithMiddle::B": `{"WithMiddle":{"inner":{"B":{"name":""}}}}`,
		"Unit":          `"Unit"`,
	}
	if len(partials) != len(want) {
		t.Fatalf("partial_root_examples has %d entries, want %d: %v", len(partials), len(want), keysOf(partials))
	}
	for key, wantJSON := range want {
		got, ok := partials[key]
		if !ok {
			t.Fatalf("missing partial_root_examples entry for %q", key)
		}
		assertValueJSON(t, key, got, wantJSON)
	}

	// spec.md §8 Scenario 3: the doubly-nested leaf path ".0.inner.0" (reachable
	// only through [WithMiddle, A]) must carry the *full* root wrapper as its
	// own root_example, not merely Inner's own partial ({"A": 0}) — the
	// top-level enum (Outer) is the one that backfills every descendant's
	// root_example, precisely so a caller mutating this leaf directly knows
	// the complete spawn/insert payload needed to reach it.
	leaf := findRow(t, rows, ".0.inner.0")
	if leaf.EnumPathData == nil {
		t.Fatal("expected .0.inner.0 to carry enum path data")
	}
	if !leaf.EnumPathData.VariantChain.Equal(VariantChain{"WithMiddle", "A"}) {
		t.Fatalf("leaf variant chain = %v, want [WithMiddle A]", leaf.EnumPathData.VariantChain)
	}
	found := false
	for _, v := range leaf.EnumPathData.ApplicableVariants {
		if v == "A" {
			found = true
		}
	}
	if !found {
		t.Fatalf("leaf applicable_variants = %v, want to include A", leaf.EnumPathData.ApplicableVariants)
	}
	if leaf.EnumPathData.RootExample == nil {
		t.Fatal("expected .0.inner.0 to carry a root_example")
	}
	assertValueJSON(t, ".0.inner.0 root_example", *leaf.EnumPathData.RootExample, `{"WithMiddle":{"inner":{"A":0}}}`)
}

// handleRegistryJSON mirrors bevy_asset::Handle<Image>: Weak(AssetId<Image>)
// wraps an enum of its own (Uuid/Index), while Strong(Arc<StrongHandle>)
// wraps a type that is absent from the registry entirely.
const handleRegistryJSON = `{
  "$defs": {
    "u128": {"typePath": "u128", "kind": "Value", "reflectTypes": ["Serialize", "Deserialize"]},
    "u32": {"typePath": "u32", "kind": "Value", "reflectTypes": ["Serialize", "Deserialize"]},
    "bevy_asset::AssetId<bevy_image::Image>": {
      "typePath": "bevy_asset::AssetId<bevy_image::Image>",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize"],
      "oneOf": [
        {"shortPath": "Uuid", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/u128"}}]},
        {"shortPath": "Index", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/u32"}}]}
      ]
    },
    "bevy_asset::Handle<bevy_image::Image>": {
      "typePath": "bevy_asset::Handle<bevy_image::Image>",
      "kind": "Enum",
      "reflectTypes": ["Serialize", "Deserialize", "Component"],
      "oneOf": [
        {"shortPath": "Weak", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/bevy_asset::AssetId<bevy_image::Image>"}}]},
        {"shortPath": "Strong", "kind": "Tuple", "prefixItems": [{"type": {"$ref": "#/$defs/alloc::sync::Arc<bevy_asset::StrongHandle>"}}]}
      ]
    }
  }
}`

func TestBuildEnumNestedEnumTupleVariantNotBlendedIntoNull(t *testing.T) {
	reg, err := registry.Parse([]byte(handleRegistryJSON))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	kb := knowledge.Default()

	rows, err := BuildMutationPaths(reg, kb, registry.TypeName("bevy_asset::Handle<bevy_image::Image>"))
	if err != nil {
		t.Fatalf("build mutation paths: %v", err)
	}

	root := findRow(t, rows, "")
	partials := root.PartialRootExamples

	uuidPartial, ok := partials["Weak::Uuid"]
	if !ok {
		t.Fatalf("missing partial_root_examples entry for %q: %v", "Weak::Uuid", keysOf(partials))
	}
	weak, ok := uuidPartial.Get("Weak")
	if !ok {
		t.Fatalf("Weak::Uuid partial root has no \"Weak\" key: %v", uuidPartial.Keys())
	}
	if weak.IsNull() {
		t.Fatalf(`Weak::Uuid partial root collapsed to {"Weak": null}, want {"Weak": {"Uuid": ...}}`)
	}
	if _, ok := weak.Get("Uuid"); !ok {
		t.Fatalf(`Weak::Uuid partial root missing "Uuid" key: %v`, weak.Keys())
	}

	indexPartial, ok := partials["Weak::Index"]
	if !ok {
		t.Fatalf("missing partial_root_examples entry for %q: %v", "Weak::Index", keysOf(partials))
	}
	indexWeak, ok := indexPartial.Get("Weak")
	if !ok {
		t.Fatalf("Weak::Index partial root has no \"Weak\" key: %v", indexPartial.Keys())
	}
	if _, ok := indexWeak.Get("Index"); !ok {
		t.Fatalf(`Weak::Index partial root missing "Index" key: %v`, indexWeak.Keys())
	}

	// The two nested variants' partial roots must not bleed into each other.
	if _, ok := indexWeak.Get("Uuid"); ok {
		t.Fatalf("Weak::Index partial root unexpectedly carries a Uuid key: %v", indexWeak.Keys())
	}
}

func keysOf(m map[string]value.Value) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func assertValueJSON(t *testing.T, label string, got value.Value, wantJSON string) {
	t.Helper()
	gotData, err := got.MarshalJSON()
	if err != nil {
		t.Fatalf("%s: marshal got value: %v", label, err)
	}
	if string(gotData) != wantJSON {
		t.Fatalf("%s: got %s, want %s", label, gotData, wantJSON)
	}
}
