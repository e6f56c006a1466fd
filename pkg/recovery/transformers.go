package recovery

import (
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

var mathTypeSizes = map[string]int{"Vec2": 2, "Vec3": 3, "Vec4": 4, "Quat": 4}

// transformMathObjectToArray rewrites {"x":.., "y":.., ...} into [x, y, ...]
// for the known Bevy math types, recursing into any nested object fields
// that are themselves math-shaped (e.g. Transform.translation).
func transformMathObjectToArray(pattern ErrorPattern, original value.Value) (value.Value, bool) {
	n, ok := mathTypeSizes[pattern.MathType]
	if !ok || original.Kind() != value.KindObject {
		return value.Value{}, false
	}
	if _, hasX := original.Get("x"); !hasX {
		// Not itself math-shaped: rewrite its math-shaped fields instead.
		rewritten := transformMathObjectFieldsRecursive(original)
		if value.Equal(rewritten, original) {
			return value.Value{}, false
		}
		return rewritten, true
	}
	axes := []string{"x", "y", "z", "w"}[:n]
	elems := make([]value.Value, n)
	for i, axis := range axes {
		v, ok := original.Get(axis)
		if !ok {
			return value.Value{}, false
		}
		elems[i] = v
	}
	return value.Array(elems...), true
}

// transformMathObjectFieldsRecursive rewrites any object-shaped math-like
// fields nested inside a struct example (e.g. Transform) into arrays,
// leaving every other field untouched.
func transformMathObjectFieldsRecursive(original value.Value) value.Value {
	if original.Kind() != value.KindObject {
		return original
	}
	out := value.Object()
	original.Walk(func(key string, v value.Value) {
		if v.Kind() == value.KindObject {
			if xv, ok := v.Get("x"); ok {
				_ = xv
				for _, mt := range []string{"Quat", "Vec4", "Vec3", "Vec2"} {
					if arr, ok := transformMathObjectToArray(ErrorPattern{MathType: mt}, v); ok {
						out.Set(key, arr)
						return
					}
				}
			}
			out.Set(key, transformMathObjectFieldsRecursive(v))
			return
		}
		out.Set(key, v)
	})
	return out
}

// transformSingleFieldUnwrap rewrites {"Variant": inner} into inner when
// the engine rejected the wrapper and wants the bare payload.
func transformSingleFieldUnwrap(original value.Value) (value.Value, bool) {
	if original.Kind() != value.KindObject || original.Len() != 1 {
		return value.Value{}, false
	}
	var inner value.Value
	found := false
	original.Walk(func(_ string, v value.Value) {
		inner = v
		found = true
	})
	return inner, found
}

// transformArrayFirstElement picks arr[0] when a tuple-shaped access
// actually landed on a struct the caller supplied as a bare array.
func transformArrayFirstElement(original value.Value) (value.Value, bool) {
	if original.Kind() != value.KindArray || original.Len() == 0 {
		return value.Value{}, false
	}
	return original.Index(0), true
}

// buildEnumVariantGuidance assembles the guidance-only correction for an
// enum mutation rejected against the wrong variant kind: a hint plus up to
// two example mutations against the valid variant names.
func buildEnumVariantGuidance(typeName registry.TypeName, pattern ErrorPattern) CorrectionInfo {
	info := CorrectionInfo{
		TypeName:    string(typeName),
		Pattern:     pattern.Kind,
		Path:        "",
		ValidValues: pattern.ValidNames,
		Hint:        "mutate a variant-specific path, or replace the whole enum value with one of the valid variant names",
	}
	for i, name := range pattern.ValidNames {
		if i >= 2 {
			break
		}
		info.Examples = append(info.Examples, value.String(name))
	}
	return info
}
