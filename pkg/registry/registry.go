package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// metaSchemaJSON constrains only the gross shape of an ingested registry
// document before normalization — not a general-purpose schema validator
// (that is explicitly a non-goal; see spec.md §1). A malformed registry
// fails here instead of panicking deep inside recursive path building.
const metaSchemaJSON = `{
  "$id": "https://ormasoftchile.dev/brp-mcp/registry-meta.json",
  "type": "object",
  "required": ["$defs"],
  "properties": {
    "$defs": {
      "type": "object",
      "additionalProperties": { "type": "object" }
    }
  }
}`

var metaSchema = mustCompileMeta()

func mustCompileMeta() *sjsonschema.Schema {
	var doc interface{}
	if err := json.Unmarshal([]byte(metaSchemaJSON), &doc); err != nil {
		panic(fmt.Sprintf("registry: invalid embedded meta-schema: %v", err))
	}
	c := sjsonschema.NewCompiler()
	if err := c.AddResource("registry-meta.json", doc); err != nil {
		panic(fmt.Sprintf("registry: add meta-schema resource: %v", err))
	}
	sch, err := c.Compile("registry-meta.json")
	if err != nil {
		panic(fmt.Sprintf("registry: compile meta-schema: %v", err))
	}
	return sch
}

// registryDoc is the wire shape of a full registry export: a map of
// TypeName to RawSchema keyed under "$defs", matching JSON Schema's own
// $defs convention for definitions referenced by $ref.
type registryDoc struct {
	Defs map[TypeName]RawSchema `json:"$defs"`
}

// Registry is a read-only, normalized view over an ingested reflective type
// registry. It is safe for concurrent reads by any number of in-flight
// mutation-path builds — nothing here is mutated after Parse returns.
type Registry struct {
	schemas map[TypeName]RawSchema
}

// Parse validates and normalizes a registry JSON document.
func Parse(data []byte) (*Registry, error) {
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("registry: unmarshal document: %w", err)
	}
	if err := metaSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("registry: document does not match expected shape: %w", err)
	}

	var doc registryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("registry: decode $defs: %w", err)
	}
	return &Registry{schemas: doc.Defs}, nil
}

// Lookup returns the raw schema for a type, or false if it is not present
// in the registry (a dangling reference).
func (r *Registry) Lookup(name TypeName) (RawSchema, bool) {
	if r == nil {
		return RawSchema{}, false
	}
	s, ok := r.schemas[name]
	return s, ok
}

// KindOf classifies a type, defaulting to KindValue when the type is
// unknown to the registry (classification of a missing type is still
// meaningful: callers treat it as an opaque leaf and report NotInRegistry
// separately via Status).
func (r *Registry) KindOf(name TypeName) TypeKind {
	s, ok := r.Lookup(name)
	if !ok {
		return KindValue
	}
	return s.TypeKind()
}

// ReflectTraits parses the reflectTypes list for a type.
func (r *Registry) ReflectTraits(name TypeName) TraitSet {
	s, ok := r.Lookup(name)
	if !ok {
		return TraitSet{}
	}
	return s.Traits()
}

// BRPCompatible reports whether a type carries both Serialize and
// Deserialize. A type absent from the registry is never BRP-compatible.
func (r *Registry) BRPCompatible(name TypeName) bool {
	s, ok := r.Lookup(name)
	if !ok {
		return false
	}
	return s.Serialization().BRPCompatible()
}

// Status reports full registry presence/trait information for a type.
func (r *Registry) Status(name TypeName) RegistryStatus {
	s, ok := r.Lookup(name)
	if !ok {
		return RegistryStatus{InRegistry: false, TypePath: name}
	}
	return RegistryStatus{
		InRegistry: true,
		HasReflect: s.Traits().Has(TraitReflect),
		TypePath:   name,
	}
}

// DescriptorKind tags how a child type is referenced from its parent's
// schema node.
type DescriptorKind int

const (
	DescStructField DescriptorKind = iota
	DescTupleElement
	DescListElement
	DescMapValue
)

// Descriptor identifies a single child slot within a parent RawSchema.
type Descriptor struct {
	Kind  DescriptorKind
	Field string // for DescStructField
	Index int    // for DescTupleElement
}

// ChildOf resolves the $ref in the slot named by descriptor, returning the
// referenced TypeName. It does not require the child to actually be present
// in the registry — dangling references are reported by the caller via
// Status, not here.
func (r *Registry) ChildOf(schema RawSchema, d Descriptor) (TypeName, bool) {
	switch d.Kind {
	case DescStructField:
		prop, ok := schema.Properties[d.Field]
		if !ok {
			return "", false
		}
		return prop.Type.TypeName()
	case DescTupleElement:
		if d.Index < 0 || d.Index >= len(schema.PrefixItems) {
			return "", false
		}
		return schema.PrefixItems[d.Index].Type.TypeName()
	case DescListElement:
		if schema.Items == nil {
			return "", false
		}
		return schema.Items.Type.TypeName()
	case DescMapValue:
		if schema.AdditionalProperties == nil {
			return "", false
		}
		return schema.AdditionalProperties.Type.TypeName()
	default:
		return "", false
	}
}

// ArraySize extracts N from a type name of the form "[T; N]", the
// convention Bevy's reflection uses for fixed-size arrays. Returns false if
// the name doesn't match that pattern.
func ArraySize(name TypeName) (int, bool) {
	s := string(name)
	open := strings.IndexByte(s, '[')
	semi := strings.LastIndexByte(s, ';')
	end := strings.LastIndexByte(s, ']')
	if open < 0 || semi < 0 || end < 0 || semi < open || end < semi {
		return 0, false
	}
	numStr := strings.TrimSpace(s[semi+1 : end])
	n := 0
	for _, c := range numStr {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if numStr == "" {
		return 0, false
	}
	return n, true
}
