package mutation

import (
	"fmt"

	"github.com/ormasoftchile/brp-mcp/pkg/brperr"
	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// nodeResult is what a recursive build step hands back to its caller: the
// data a parent builder needs to fold a child into its own example and
// mutability, without needing to re-walk the child's own output rows.
type nodeResult struct {
	Example             PathExample
	Mutability          Mutability
	Reason              *MutabilityReason
	PartialRootExamples map[string]value.Value
}

// BuildMutationPaths walks rootType to its full depth and returns one row
// per mutation path discovered. Rows are appended depth-first in post-order
// (a node's descendants before the node itself), so the root row comes
// last — the flattened table spec.md §6.3 describes as the tool's output.
func BuildMutationPaths(reg *registry.Registry, kb *knowledge.Base, rootType registry.TypeName) ([]MutationPathInternal, error) {
	ctx := RootContext(reg, rootType)
	var rows []MutationPathInternal
	if _, err := build(ctx, kb, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// build dispatches on the type kind, recurses into children, appends this
// node's own row to out, and returns enough of that row for the caller to
// fold into its own example/mutability.
func build(ctx Context, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	kbExample, hasKB := kb.Lookup(ctx.TypeName)
	status := ctx.Registry.Status(ctx.TypeName)

	var registryKind registry.TypeKind
	if status.InRegistry {
		if schema, ok := ctx.Registry.Lookup(ctx.TypeName); ok {
			registryKind = schema.TypeKind()
		}
	}
	// Math-type short-circuit (spec.md §4.4.2): a struct-kind type the
	// knowledge base also hardcodes an example for (Transform, etc.) still
	// recurses into its registry-described fields below — a caller needs
	// both the whole-struct literal and the per-field paths — it is only
	// the *leaf* case (no registry schema to recurse against, or a non-
	// struct/tuple-struct kind) that short-circuits outright.
	recurseDespiteKB := hasKB && status.InRegistry &&
		(registryKind == registry.KindStruct || registryKind == registry.KindTupleStruct)

	if hasKB && !recurseDespiteKB {
		res := nodeResult{Example: NewLeafExample(kbExample), Mutability: Mutable}
		appendRow(out, ctx, res)
		return res, nil
	}

	if !status.InRegistry {
		if v, ok := componentFallback(ctx, kb); ok {
			res := nodeResult{Example: NewLeafExample(v), Mutability: Mutable}
			appendRow(out, ctx, res)
			return res, nil
		}
		res := nodeResult{
			Mutability: NotMutable,
			Reason: &MutabilityReason{
				Kind:     ReasonNotInRegistry,
				TypeName: ctx.TypeName,
				Message:  fmt.Sprintf("type %q is not present in the registry", ctx.TypeName),
			},
		}
		appendRow(out, ctx, res)
		return res, nil
	}

	schema, _ := ctx.Registry.Lookup(ctx.TypeName)
	if !schema.Serialization().BRPCompatible() {
		if v, ok := componentFallback(ctx, kb); ok {
			res := nodeResult{Example: NewLeafExample(v), Mutability: Mutable}
			appendRow(out, ctx, res)
			return res, nil
		}
		res := nodeResult{
			Mutability: NotMutable,
			Reason: &MutabilityReason{
				Kind:     ReasonMissingSerializationTraits,
				TypeName: ctx.TypeName,
				Message:  fmt.Sprintf("type %q is missing Serialize/Deserialize reflect traits", ctx.TypeName),
			},
		}
		appendRow(out, ctx, res)
		return res, nil
	}

	var (
		res nodeResult
		err error
	)
	switch schema.TypeKind() {
	case registry.KindStruct:
		res, err = buildStruct(ctx, schema, kb, out)
	case registry.KindTuple, registry.KindTupleStruct:
		res, err = buildTuple(ctx, schema, kb, out)
	case registry.KindArray:
		res, err = buildArray(ctx, schema, kb, out)
	case registry.KindList:
		res, err = buildList(ctx, schema, kb, out)
	case registry.KindMap:
		res, err = buildMap(ctx, schema, kb, out)
	case registry.KindEnum:
		res, err = buildEnum(ctx, schema, kb, out)
	default:
		res = buildValue(ctx)
	}
	if err != nil {
		var recursionErr *brperr.RecursionLimitError
		if asRecursionLimit(err, &recursionErr) {
			res = nodeResult{
				Mutability: NotMutable,
				Reason: &MutabilityReason{
					Kind:     ReasonRecursionLimit,
					TypeName: ctx.TypeName,
					Message:  recursionErr.Error(),
				},
			}
		} else {
			return nodeResult{}, err
		}
	}
	if recurseDespiteKB {
		// The per-field rows and any partial-root examples from the live
		// recursion above were already appended to out; only the root's own
		// example/mutability is overridden with the hardcoded literal.
		res.Example = NewLeafExample(kbExample)
		res.Mutability = Mutable
		res.Reason = nil
	}
	appendRow(out, ctx, res)
	return res, nil
}

// componentFallback consults the knowledge base for a per-field example
// derived from the enclosing struct's own hardcoded literal (spec.md §4.2
// "component_example") when a struct field's own type can't be resolved
// through the registry at all — giving a caller a usable example instead of
// an outright NotMutable leaf whenever the parent type already hardcodes
// the field's value.
func componentFallback(ctx Context, kb *knowledge.Base) (value.Value, bool) {
	if ctx.PathKind.Tag != StructField {
		return value.Value{}, false
	}
	return kb.ComponentExample(ctx.PathKind.ParentType, ctx.PathKind.Field)
}

func asRecursionLimit(err error, target **brperr.RecursionLimitError) bool {
	if e, ok := err.(*brperr.RecursionLimitError); ok {
		*target = e
		return true
	}
	return false
}

// buildValue handles a registry-present, BRP-compatible Value-kind leaf
// with no knowledge-base example: a bare placeholder null, still flagged
// Mutable since BRP accepts null for most externally-tagged value types at
// the protocol layer.
func buildValue(ctx Context) nodeResult {
	return nodeResult{Example: NewLeafExample(value.Null()), Mutability: Mutable}
}

func appendRow(out *[]MutationPathInternal, ctx Context, res nodeResult) {
	var enumData *EnumPathData
	if len(ctx.VariantChain) > 0 {
		enumData = &EnumPathData{VariantChain: ctx.VariantChain}
	}
	*out = append(*out, MutationPathInternal{
		MutationPath:        ctx.MutationPath,
		TypeName:            ctx.TypeName,
		PathKind:            ctx.PathKind,
		Example:             res.Example,
		Mutability:          res.Mutability,
		MutabilityReason:    res.Reason,
		EnumPathData:        enumData,
		Depth:               ctx.Depth,
		PartialRootExamples: res.PartialRootExamples,
	})
}

// buildStruct assembles a struct's fields, propagating any partial-root
// map a field contributed (because that field is itself an enum, or wraps
// one) up through this struct's own wrapping — spec.md §8 Scenario 3,
// where a nested enum sits behind an intervening struct field.
func buildStruct(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	fields := schema.OrderedProperties()
	var pfields []payloadField
	var mutabilities []Mutability
	anyContributed := false

	for _, name := range fields {
		childType, ok := ctx.Registry.ChildOf(schema, registry.Descriptor{Kind: registry.DescStructField, Field: name})
		if !ok {
			continue
		}
		childCtx, err := ctx.CreateChildContext(childType, "."+name, PathKind{
			Tag: StructField, Field: name, ParentType: ctx.TypeName,
		}, nil)
		if err != nil {
			mutabilities = append(mutabilities, NotMutable)
			continue
		}
		childRes, err := build(childCtx, kb, out)
		if err != nil {
			return nodeResult{}, err
		}
		mutabilities = append(mutabilities, childRes.Mutability)
		if v, ok := childRes.Example.ForParent(); ok {
			pfields = append(pfields, payloadField{key: name, value: v, partials: childRes.PartialRootExamples})
			anyContributed = true
		}
	}

	mutability := AggregateMutability(mutabilities)
	if !anyContributed && len(fields) > 0 {
		mutability = NotMutable
	}

	wrap := func(vals []value.Value) value.Value {
		obj := value.Object()
		for i, f := range pfields {
			obj.Set(f.key, vals[i])
		}
		return obj
	}
	example, partials := assembleFieldPartials(pfields, wrap)
	return nodeResult{Example: NewLeafExample(example), Mutability: mutability, PartialRootExamples: partials}, nil
}

// buildTuple assembles a tuple (or tuple struct)'s elements, propagating
// any field's partial-root map the same way buildStruct does. A
// single-field tuple struct's value collapses onto its own path, so its
// wrap is the identity function rather than a one-element array — meaning
// any partial roots that single field contributed pass through unwrapped.
func buildTuple(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	isSingleFieldTupleStruct := schema.TypeKind() == registry.KindTupleStruct && len(schema.PrefixItems) == 1
	var pfields []payloadField
	var mutabilities []Mutability

	for i := range schema.PrefixItems {
		childType, ok := ctx.Registry.ChildOf(schema, registry.Descriptor{Kind: registry.DescTupleElement, Index: i})
		if !ok {
			continue
		}
		suffix := fmt.Sprintf(".%d", i)
		if isSingleFieldTupleStruct {
			// A single-field tuple struct mutates at the parent path itself
			// in BRP's convention, not ".0" — spec.md §4.3.
			suffix = ""
		}
		childCtx, err := ctx.CreateChildContext(childType, suffix, PathKind{
			Tag: TupleElement, Index: i, ParentType: ctx.TypeName,
		}, nil)
		if err != nil {
			mutabilities = append(mutabilities, NotMutable)
			continue
		}
		childRes, err := build(childCtx, kb, out)
		if err != nil {
			return nodeResult{}, err
		}
		mutabilities = append(mutabilities, childRes.Mutability)
		v, ok := childRes.Example.ForParent()
		if !ok {
			v = value.Null()
		}
		pfields = append(pfields, payloadField{key: fmt.Sprint(i), value: v, partials: childRes.PartialRootExamples})
	}

	wrap := func(vals []value.Value) value.Value {
		if isSingleFieldTupleStruct && len(vals) == 1 {
			return vals[0]
		}
		return value.Array(vals...)
	}
	example, partials := assembleFieldPartials(pfields, wrap)
	return nodeResult{Example: NewLeafExample(example), Mutability: AggregateMutability(mutabilities), PartialRootExamples: partials}, nil
}

func buildArray(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	n, ok := registry.ArraySize(ctx.TypeName)
	if !ok {
		n = 1
	}
	childType, ok := ctx.Registry.ChildOf(schema, registry.Descriptor{Kind: registry.DescListElement})
	if !ok {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonArrayElementIncompatible, TypeName: ctx.TypeName,
			Message: "array element type could not be resolved",
		}}, nil
	}

	childCtx, err := ctx.CreateChildContext(childType, "[0]", PathKind{
		Tag: IndexedElement, Index: 0, ParentType: ctx.TypeName,
	}, nil)
	if err != nil {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonRecursionLimit, TypeName: ctx.TypeName, Message: err.Error(),
		}}, nil
	}
	childRes, err := build(childCtx, kb, out)
	if err != nil {
		return nodeResult{}, err
	}

	elemVal, ok := childRes.Example.ForParent()
	if !ok {
		elemVal = value.Null()
	}
	elems := make([]value.Value, n)
	for i := range elems {
		elems[i] = elemVal.Clone()
	}
	return nodeResult{Example: NewLeafExample(value.Array(elems...)), Mutability: childRes.Mutability}, nil
}

func buildList(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	childType, ok := ctx.Registry.ChildOf(schema, registry.Descriptor{Kind: registry.DescListElement})
	if !ok {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonArrayElementIncompatible, TypeName: ctx.TypeName,
			Message: "list element type could not be resolved",
		}}, nil
	}

	childCtx, err := ctx.CreateChildContext(childType, "[0]", PathKind{
		Tag: IndexedElement, Index: 0, ParentType: ctx.TypeName,
	}, nil)
	if err != nil {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonRecursionLimit, TypeName: ctx.TypeName, Message: err.Error(),
		}}, nil
	}
	childRes, err := build(childCtx, kb, out)
	if err != nil {
		return nodeResult{}, err
	}

	elemVal, ok := childRes.Example.ForParent()
	if !ok {
		// A List whose sole representative element is itself not mutable
		// still reports an empty list as its own example — BRP accepts
		// replacing the whole collection even when element-level insight
		// failed.
		return nodeResult{Example: NewLeafExample(value.Array()), Mutability: childRes.Mutability}, nil
	}
	return nodeResult{Example: NewLeafExample(value.Array(elemVal)), Mutability: childRes.Mutability}, nil
}

func buildMap(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	childType, ok := ctx.Registry.ChildOf(schema, registry.Descriptor{Kind: registry.DescMapValue})
	if !ok {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonMapValueIncompatible, TypeName: ctx.TypeName,
			Message: "map value type could not be resolved",
		}}, nil
	}

	childCtx, err := ctx.CreateChildContext(childType, ".<key>", PathKind{
		Tag: MapEntry, ParentType: ctx.TypeName, ValueType: childType,
	}, nil)
	if err != nil {
		return nodeResult{Mutability: NotMutable, Reason: &MutabilityReason{
			Kind: ReasonRecursionLimit, TypeName: ctx.TypeName, Message: err.Error(),
		}}, nil
	}
	childRes, err := build(childCtx, kb, out)
	if err != nil {
		return nodeResult{}, err
	}

	// A map's own example is always the empty object: BRP mutation
	// replaces or inserts a single entry at a concrete key, which the
	// caller supplies — not something this builder can guess.
	return nodeResult{Example: NewLeafExample(value.Object()), Mutability: childRes.Mutability}, nil
}
