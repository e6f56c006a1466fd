// Package knowledge provides example values for types whose structure is
// opaque to the reflective registry: primitives, math types, and other
// well-known engine handles the registry describes only as an opaque Value
// kind. These examples take precedence over generated placeholders. A
// struct or tuple-struct type that has both an example here and a registry
// schema is still walked field by field by pkg/mutation, but its own row
// keeps this hardcoded example rather than one assembled from its fields.
package knowledge

import (
	"github.com/google/uuid"

	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// Base is a read-only table of hardcoded example values, keyed by the
// type's full TypeName.
type Base struct {
	examples map[registry.TypeName]value.Value
}

// Default returns the built-in knowledge base seeded with Bevy's primitive
// and math types. Array representation is mandatory for math types — Vec3
// is [x,y,z], never {"x":...} — the same shape the format recovery
// engine's math-object transformer (pkg/recovery) rewrites user input into.
func Default() *Base {
	b := &Base{examples: make(map[registry.TypeName]value.Value)}

	b.examples["bool"] = value.Bool(false)
	b.examples["i8"] = value.Int(0)
	b.examples["i16"] = value.Int(0)
	b.examples["i32"] = value.Int(0)
	b.examples["i64"] = value.Int(0)
	b.examples["u8"] = value.Int(0)
	b.examples["u16"] = value.Int(0)
	b.examples["u32"] = value.Int(0)
	b.examples["u64"] = value.Int(0)
	b.examples["f32"] = value.Number(0)
	b.examples["f64"] = value.Number(0)
	b.examples["char"] = value.String("a")
	b.examples["alloc::string::String"] = value.String("")
	b.examples["str"] = value.String("")

	b.examples["bevy_math::Vec2"] = value.Array(value.Number(0), value.Number(0))
	b.examples["bevy_math::Vec3"] = value.Array(value.Number(0), value.Number(0), value.Number(0))
	b.examples["bevy_math::Vec3A"] = b.examples["bevy_math::Vec3"]
	b.examples["bevy_math::Vec4"] = value.Array(value.Number(0), value.Number(0), value.Number(0), value.Number(0))
	b.examples["bevy_math::Quat"] = value.Array(value.Number(0), value.Number(0), value.Number(0), value.Number(1))
	b.examples["bevy_math::Mat3"] = value.Array(
		b.examples["bevy_math::Vec3"], b.examples["bevy_math::Vec3"], b.examples["bevy_math::Vec3"],
	)
	b.examples["bevy_math::Mat4"] = value.Array(
		b.examples["bevy_math::Vec4"], b.examples["bevy_math::Vec4"], b.examples["bevy_math::Vec4"], b.examples["bevy_math::Vec4"],
	)

	transform := value.Object()
	transform.Set("translation", b.examples["bevy_math::Vec3"])
	transform.Set("rotation", b.examples["bevy_math::Quat"])
	transform.Set("scale", value.Array(value.Number(1), value.Number(1), value.Number(1)))
	b.examples["bevy_transform::components::transform::Transform"] = transform

	// Handle<T>::Uuid is the mutable arm of the asset-handle enum; a random
	// UUID, generated once each time Default builds a Base, keeps discovery
	// output honest about the shape without ever implying a specific asset
	// actually exists.
	b.examples["bevy_asset::AssetId::Uuid"] = value.String(uuid.NewString())

	return b
}

// Lookup returns the hardcoded example for a type, if any.
func (b *Base) Lookup(name registry.TypeName) (value.Value, bool) {
	if b == nil {
		return value.Value{}, false
	}
	v, ok := b.examples[name]
	return v, ok
}

// ComponentExample derives a per-field example from a parent math/engine
// type's hardcoded example — e.g. Transform.translation sliced out of the
// Transform example — so struct builders can show field-level mutation
// examples for opaque parents without re-deriving values from scratch.
func (b *Base) ComponentExample(parent registry.TypeName, childField string) (value.Value, bool) {
	parentExample, ok := b.Lookup(parent)
	if !ok || parentExample.Kind() != value.KindObject {
		return value.Value{}, false
	}
	return parentExample.Get(childField)
}
