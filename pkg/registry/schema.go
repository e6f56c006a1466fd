package registry

// RefSchema is a `{"$ref": "#/$defs/<TypeName>"}` pointer, the only way one
// schema node names another.
type RefSchema struct {
	Ref string `json:"$ref,omitempty"`
}

// TypeName extracts the referenced TypeName, or "" if this isn't a $defs
// pointer in the expected shape.
func (r RefSchema) TypeName() (TypeName, bool) {
	const prefix = "#/$defs/"
	if len(r.Ref) <= len(prefix) || r.Ref[:len(prefix)] != prefix {
		return "", false
	}
	return TypeName(r.Ref[len(prefix):]), true
}

// PropertySchema wraps a single typed slot — a struct field, a tuple
// element, a list's element type, or a map's value type.
type PropertySchema struct {
	Type RefSchema `json:"type"`
}

// VariantSchema is one arm of an enum's "oneOf" list.
type VariantSchema struct {
	ShortPath   string                    `json:"shortPath"`
	Kind        string                    `json:"kind"` // "Unit" | "Tuple" | "Struct"
	Properties  map[string]PropertySchema `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
	PrefixItems []PropertySchema          `json:"prefixItems,omitempty"`
}

// RawSchema is one entry of the registry's $defs map: the normalized form
// of a reflective type's JSON schema node, covering every "kind" shape the
// registry can produce. Fields are populated or left zero depending on
// Kind, mirroring the source document — a Struct node has Properties, an
// Enum node has OneOf, and so on.
type RawSchema struct {
	TypePath             TypeName                  `json:"typePath"`
	ShortPath            string                    `json:"shortPath,omitempty"`
	ReflectTypes         []string                  `json:"reflectTypes,omitempty"`
	Kind                 string                    `json:"kind,omitempty"`
	Properties           map[string]PropertySchema `json:"properties,omitempty"`
	PropertyOrder        []string                  `json:"propertyOrder,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	PrefixItems          []PropertySchema          `json:"prefixItems,omitempty"`
	Items                *PropertySchema           `json:"items,omitempty"`
	AdditionalProperties *PropertySchema           `json:"additionalProperties,omitempty"`
	OneOf                []VariantSchema           `json:"oneOf,omitempty"`
}

// TypeKind classifies this node, defaulting unknown or absent kinds to Value.
func (s RawSchema) TypeKind() TypeKind { return parseKind(s.Kind) }

// Traits parses the schema's reflectTypes list into a TraitSet.
func (s RawSchema) Traits() TraitSet { return newTraitSet(s.ReflectTypes) }

// Serialization derives this type's wire-compatibility.
func (s RawSchema) Serialization() SerializationSupport {
	t := s.Traits()
	return SerializationSupport{
		HasSerialize:   t.Has(TraitSerialize),
		HasDeserialize: t.Has(TraitDeserialize),
	}
}

// OrderedProperties returns struct field names in schema-declared order:
// PropertyOrder when the source document supplied one (Bevy's JSON Schema
// export does), else the Required list, else Properties in map iteration
// order (last resort — callers should prefer a registry that supplies
// PropertyOrder so builds stay deterministic per spec §8 Idempotence).
func (s RawSchema) OrderedProperties() []string {
	if len(s.PropertyOrder) > 0 {
		return s.PropertyOrder
	}
	if len(s.Required) > 0 {
		return s.Required
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	return names
}
