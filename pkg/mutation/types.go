// Package mutation implements the mutation path builder: given a registry
// and a root type, recursively enumerate every legal JSON mutation path
// into that type, with per-path example values, mutability status, and
// (for paths gated by enum variant selection) the variant chain and
// partial root examples needed to reach them. This is the core
// intellectual content described in spec.md §4.3–§4.5.
package mutation

import (
	"strings"

	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// Mutability classifies how much of a type can be safely written in place.
type Mutability int

const (
	Mutable Mutability = iota
	PartiallyMutable
	NotMutable
)

// String renders the lower-snake-case form used in the output envelope
// (spec.md §6.3).
func (m Mutability) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case PartiallyMutable:
		return "partially_mutable"
	default:
		return "not_mutable"
	}
}

// AggregateMutability folds child mutabilities into a parent's per the
// rules in spec.md §3: all Mutable -> Mutable, all NotMutable ->
// NotMutable, any mix or any PartiallyMutable -> PartiallyMutable. A
// childless parent (e.g. a unit enum variant) is Mutable.
func AggregateMutability(children []Mutability) Mutability {
	if len(children) == 0 {
		return Mutable
	}
	sawMutable, sawNotMutable, sawPartial := false, false, false
	for _, c := range children {
		switch c {
		case Mutable:
			sawMutable = true
		case NotMutable:
			sawNotMutable = true
		case PartiallyMutable:
			sawPartial = true
		}
	}
	switch {
	case sawPartial:
		return PartiallyMutable
	case sawMutable && !sawNotMutable:
		return Mutable
	case sawNotMutable && !sawMutable:
		return NotMutable
	default:
		return PartiallyMutable
	}
}

// VariantName is a single enum variant identifier.
type VariantName string

// VariantChain is the ordered sequence of variants that must be selected
// to reach a nested mutation path. Empty for paths not gated by any enum.
type VariantChain []VariantName

// Append returns a new chain with v added, leaving the receiver untouched.
func (c VariantChain) Append(v VariantName) VariantChain {
	out := make(VariantChain, len(c)+1)
	copy(out, c)
	out[len(c)] = v
	return out
}

// IsPrefixOf reports whether c is a prefix of other. Partial-root assembly
// does not call it: assembleFieldPartials keeps sibling variants apart by
// substituting one field's deeper partials at a time.
func (c VariantChain) IsPrefixOf(other VariantChain) bool {
	if len(c) > len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Equal reports element-wise equality.
func (c VariantChain) Equal(other VariantChain) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// Key renders the chain as the "::"-joined string used for
// PartialRootExamples map keys (spec.md §6.3).
func (c VariantChain) Key() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = string(v)
	}
	return strings.Join(parts, "::")
}

// SignatureKind tags a VariantSignature's payload shape.
type SignatureKind int

const (
	SigUnit SignatureKind = iota
	SigTuple
	SigStruct
)

// StructFieldSig is one field of a struct-shaped variant signature.
type StructFieldSig struct {
	Name string
	Type registry.TypeName
}

// VariantSignature classifies an enum variant's payload shape. Two
// variants share a signature iff their payload shapes are structurally
// identical; the enum builder deduplicates examples and mutation paths
// across variants sharing a signature, since BRP mutation paths are
// structural rather than variant-specific.
type VariantSignature struct {
	Kind         SignatureKind
	TupleTypes   []registry.TypeName
	StructFields []StructFieldSig
}

// Canonical renders a deterministic string key for this signature, used
// both for BTreeMap-style sorted grouping and as the ExampleGroup.Signature
// display string.
func (s VariantSignature) Canonical() string {
	switch s.Kind {
	case SigUnit:
		return "unit"
	case SigTuple:
		parts := make([]string, len(s.TupleTypes))
		for i, t := range s.TupleTypes {
			parts[i] = string(t)
		}
		return "tuple(" + strings.Join(parts, ",") + ")"
	case SigStruct:
		parts := make([]string, len(s.StructFields))
		for i, f := range s.StructFields {
			parts[i] = f.Name + ":" + string(f.Type)
		}
		return "struct{" + strings.Join(parts, ",") + "}"
	default:
		return "unknown"
	}
}

// VariantKind is a single enum variant carrying its name and signature.
type VariantKind struct {
	Name      VariantName
	Signature VariantSignature
}

// PathKindTag tags how a child path is reached from its parent.
type PathKindTag int

const (
	StructField PathKindTag = iota
	IndexedElement
	TupleElement
	MapEntry
	RootValue
)

// PathKind records how the node at a given mutation path was reached.
type PathKind struct {
	Tag        PathKindTag
	Field      string            // StructField
	Index      int               // IndexedElement, TupleElement
	KeyType    registry.TypeName // MapEntry
	ValueType  registry.TypeName // MapEntry
	ParentType registry.TypeName // all but RootValue
	Type       registry.TypeName // RootValue
}

// ExampleGroup is a per-signature record emitted for enum roots. The
// invariant Example != nil iff Mutability == Mutable is load-bearing:
// parent enums consult only non-nil examples when building their own
// (spec.md §3).
type ExampleGroup struct {
	ApplicableVariants []VariantName
	Signature          string
	Example            *value.Value
	Mutability         Mutability
}

// PathExampleTag tags a path's example data.
type PathExampleTag int

const (
	ExampleLeaf PathExampleTag = iota
	ExampleEnumRoot
)

// PathExample carries a mutation path's example data, either a single
// concrete leaf value or — for enum roots — the full per-signature group
// list plus a single "preferred" value used when this path appears as a
// child of another type.
type PathExample struct {
	Tag    PathExampleTag
	Leaf   value.Value
	Groups []ExampleGroup

	forParent    value.Value
	hasForParent bool
}

// NewLeafExample builds a Leaf-tagged PathExample.
func NewLeafExample(v value.Value) PathExample {
	return PathExample{Tag: ExampleLeaf, Leaf: v, forParent: v, hasForParent: true}
}

// NewEnumRootExample builds an EnumRoot-tagged PathExample. preferred/ok is
// the value returned by ForParent — nil/false if no group is Mutable.
func NewEnumRootExample(groups []ExampleGroup, preferred value.Value, ok bool) PathExample {
	return PathExample{Tag: ExampleEnumRoot, Groups: groups, forParent: preferred, hasForParent: ok}
}

// ForParent returns the value a parent builder should use when embedding
// this path's example as a child value.
func (p PathExample) ForParent() (value.Value, bool) {
	return p.forParent, p.hasForParent
}

// MutabilityReasonKind tags why a path is not fully Mutable.
type MutabilityReasonKind int

const (
	ReasonNotInRegistry MutabilityReasonKind = iota
	ReasonMissingSerializationTraits
	ReasonRecursionLimit
	ReasonNoVariantsMutable
	ReasonPartialVariants
	ReasonMapValueIncompatible
	ReasonArrayElementIncompatible
)

// MutabilityReason structurally explains a non-Mutable path.
type MutabilityReason struct {
	Kind     MutabilityReasonKind
	TypeName registry.TypeName
	Issues   []string
	Message  string
}

// EnumPathData is populated on any path reached via one or more enum
// variant selections.
type EnumPathData struct {
	VariantChain       VariantChain
	ApplicableVariants []VariantName
	RootExample        *value.Value
}

// MutationPathInternal is a single row of the output table (spec.md §3).
type MutationPathInternal struct {
	MutationPath        string
	TypeName            registry.TypeName
	PathKind            PathKind
	Example             PathExample
	Mutability          Mutability
	MutabilityReason    *MutabilityReason
	EnumPathData        *EnumPathData
	Depth               int
	PartialRootExamples map[string]value.Value // keyed by VariantChain.Key(); enum-root paths only
}
