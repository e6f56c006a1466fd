package mutation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// variantGroup is the set of an enum's variants that share a structural
// signature — same payload shape, different names. BRP mutation paths
// address structure, not variant identity, so every variant in a group
// produces identical child paths; only the externally-tagged wrapper
// differs.
type variantGroup struct {
	signature VariantSignature
	variants  []registry.VariantSchema
}

func buildEnum(ctx Context, schema registry.RawSchema, kb *knowledge.Base, out *[]MutationPathInternal) (nodeResult, error) {
	groups := groupVariantsBySignature(schema.OneOf)

	type groupOutcome struct {
		names         []VariantName
		signature     VariantSignature
		example       value.Value
		mutability    Mutability
		childPartials map[string]value.Value
	}
	outcomes := make([]groupOutcome, 0, len(groups))

	for _, g := range groups {
		representative := g.variants[0]
		names := make([]VariantName, len(g.variants))
		for i, v := range g.variants {
			names[i] = VariantName(v.ShortPath)
		}

		startIdx := len(*out)
		groupCtx := ctx.WithParentVariantSignature(&g.signature)
		example, mutability, childPartials, err := buildVariantPayload(groupCtx, representative, g.signature, kb, out)
		if err != nil {
			return nodeResult{}, err
		}

		// Rows produced while building this group's payload that sit one
		// variant deeper than ctx and have no list yet get the group's
		// shared ApplicableVariants; rows under a deeper enum keep the
		// list that enum already set.
		for i := startIdx; i < len(*out); i++ {
			data := (*out)[i].EnumPathData
			if data != nil && len(data.ApplicableVariants) == 0 && len(data.VariantChain) == len(ctx.VariantChain)+1 {
				data.ApplicableVariants = names
			}
		}

		outcomes = append(outcomes, groupOutcome{
			names:         names,
			signature:     g.signature,
			example:       example,
			mutability:    mutability,
			childPartials: childPartials,
		})
	}

	exampleGroups := make([]ExampleGroup, 0, len(outcomes))
	partialRoots := make(map[string]value.Value, len(outcomes))
	mutabilities := make([]Mutability, 0, len(outcomes))

	for _, o := range outcomes {
		eg := ExampleGroup{
			ApplicableVariants: o.names,
			Signature:          o.signature.Canonical(),
			Mutability:         o.mutability,
		}
		if o.mutability == Mutable {
			ex := o.example
			eg.Example = &ex
		}
		exampleGroups = append(exampleGroups, eg)
		mutabilities = append(mutabilities, o.mutability)

		for _, name := range o.names {
			chain := ctx.VariantChain.Append(name)
			partialRoots[chain.Key()] = o.example
		}
		// A variant whose own field is itself an enum contributes partial
		// roots one or more levels deeper than this group's own chain entry
		// (spec.md §8 Scenario 4: Handle::Weak(AssetId) must produce
		// separate [Weak,Uuid]/[Weak,Index] entries, not one blended
		// [Weak] entry). Those keys are already fully qualified from the
		// true root — merge them in as-is rather than re-wrapping.
		for key, pv := range o.childPartials {
			partialRoots[key] = pv
		}
	}

	// Step 8 (spec.md §4.5): only the true top-level enum — the one whose
	// own variant_chain was empty on entry — backfills RootExample, and it
	// does so for every enum-path descendant in the tree, not just its own
	// direct children. An intermediate enum's partialRoots map only spans
	// chains rooted at its own position (e.g. Inner's ["A"]/["B"]), which
	// would leave a doubly-nested path's root_example truncated to the
	// innermost enum's partial instead of the full root; the top-level
	// enum's partialRoots map, by construction, already carries every
	// deeper chain fully qualified from the true root (assembleFieldPartials
	// returns its keys pre-qualified), so a single pass keyed by each row's
	// own VariantChain is both correct and sufficient.
	if len(ctx.VariantChain) == 0 {
		for i := range *out {
			row := &(*out)[i]
			if row.EnumPathData == nil || len(row.EnumPathData.VariantChain) == 0 {
				continue
			}
			if ex, ok := partialRoots[row.EnumPathData.VariantChain.Key()]; ok {
				v := ex
				row.EnumPathData.RootExample = &v
			}
		}
	}

	preferred, ok := selectPreferredExample(exampleGroups)

	return nodeResult{
		Example:             NewEnumRootExample(exampleGroups, preferred, ok),
		Mutability:          AggregateMutability(mutabilities),
		PartialRootExamples: partialRoots,
	}, nil
}

// payloadField is one tuple element or struct field collected while
// building a variant's payload: its representative value plus, when the
// field is itself an enum, the partial-root map that enum produced.
type payloadField struct {
	key      string // tuple index as string, or struct field name
	value    value.Value
	partials map[string]value.Value
}

// buildVariantPayload builds the representative variant's fields (if any)
// and returns the fully wrapped, externally-tagged example value for the
// group, its aggregate mutability, and — when one of its fields is itself
// an enum — the deeper partial-root entries that field's own build
// produced, rewrapped under this variant's own tag (spec.md §8 Scenario 4).
func buildVariantPayload(ctx Context, v registry.VariantSchema, sig VariantSignature, kb *knowledge.Base, out *[]MutationPathInternal) (value.Value, Mutability, map[string]value.Value, error) {
	name := VariantName(v.ShortPath)

	switch sig.Kind {
	case SigUnit:
		if ctx.TypeName.IsOption() && name == "None" {
			return value.Null(), Mutable, nil, nil
		}
		return value.String(string(name)), Mutable, nil, nil

	case SigTuple:
		var fields []payloadField
		var mutabilities []Mutability
		for i, item := range v.PrefixItems {
			childType, ok := item.Type.TypeName()
			if !ok {
				continue
			}
			// Unlike a true tuple struct, an enum tuple variant's field is
			// never path-collapsed onto its parent: collapsing would make
			// every single-field variant's path collide with the enum
			// root's own "" path.
			suffix := fmt.Sprintf(".%d", i)
			childCtx, err := ctx.CreateChildContext(childType, suffix, PathKind{
				Tag: TupleElement, Index: i, ParentType: ctx.TypeName,
			}, &name)
			if err != nil {
				mutabilities = append(mutabilities, NotMutable)
				fields = append(fields, payloadField{key: fmt.Sprint(i), value: value.Null()})
				continue
			}
			childRes, err := build(childCtx, kb, out)
			if err != nil {
				return value.Value{}, NotMutable, nil, err
			}
			mutabilities = append(mutabilities, childRes.Mutability)
			cv, ok := childRes.Example.ForParent()
			if !ok {
				cv = value.Null()
			}
			fields = append(fields, payloadField{key: fmt.Sprint(i), value: cv, partials: childRes.PartialRootExamples})
		}

		wrap := func(vals []value.Value) value.Value {
			var payload value.Value
			if len(vals) == 1 {
				payload = vals[0]
			} else {
				payload = value.Array(vals...)
			}
			if ctx.TypeName.IsOption() && name == "Some" {
				return payload
			}
			return value.Object().Set(string(name), payload)
		}
		payload, childPartials := assembleFieldPartials(fields, wrap)
		return payload, AggregateMutability(mutabilities), childPartials, nil

	case SigStruct:
		fieldNames := v.Required
		if len(fieldNames) == 0 {
			for f := range v.Properties {
				fieldNames = append(fieldNames, f)
			}
		}
		var fields []payloadField
		var mutabilities []Mutability
		for _, field := range fieldNames {
			prop, ok := v.Properties[field]
			if !ok {
				continue
			}
			childType, ok := prop.Type.TypeName()
			if !ok {
				continue
			}
			childCtx, err := ctx.CreateChildContext(childType, "."+field, PathKind{
				Tag: StructField, Field: field, ParentType: ctx.TypeName,
			}, &name)
			if err != nil {
				mutabilities = append(mutabilities, NotMutable)
				continue
			}
			childRes, err := build(childCtx, kb, out)
			if err != nil {
				return value.Value{}, NotMutable, nil, err
			}
			mutabilities = append(mutabilities, childRes.Mutability)
			if cv, ok := childRes.Example.ForParent(); ok {
				fields = append(fields, payloadField{key: field, value: cv, partials: childRes.PartialRootExamples})
			}
		}

		wrap := func(vals []value.Value) value.Value {
			obj := value.Object()
			for i, f := range fields {
				obj.Set(f.key, vals[i])
			}
			return value.Object().Set(string(name), obj)
		}
		payload, childPartials := assembleFieldPartials(fields, wrap)
		return payload, AggregateMutability(mutabilities), childPartials, nil

	default:
		return value.Null(), NotMutable, nil, nil
	}
}

// assembleFieldPartials wraps the baseline field values with wrap, then —
// for each field whose own build contributed a partial-root map (meaning
// that field is itself an enum) — re-wraps the payload with just that
// field's value substituted for each of its deeper variant selections.
// Those substituted wrappings are returned keyed by the field's own
// already-fully-qualified chain key, ready to merge straight into the
// caller's partialRoots map (spec.md §8 Scenario 4).
func assembleFieldPartials(fields []payloadField, wrap func([]value.Value) value.Value) (value.Value, map[string]value.Value) {
	base := make([]value.Value, len(fields))
	for i, f := range fields {
		base[i] = f.value
	}
	payload := wrap(base)

	var childPartials map[string]value.Value
	for i, f := range fields {
		for key, pv := range f.partials {
			if childPartials == nil {
				childPartials = make(map[string]value.Value)
			}
			substituted := make([]value.Value, len(base))
			copy(substituted, base)
			substituted[i] = pv
			childPartials[key] = wrap(substituted)
		}
	}
	return payload, childPartials
}

// groupVariantsBySignature groups variants sharing a structural signature,
// then orders the groups by canonical signature string — spec.md §4.5 Step 2
// and §5 call for a BTreeMap's sorted-key iteration order here, not mere
// insertion order, so two builds of the same enum produce byte-identical
// ExampleGroup ordering regardless of the registry's own oneOf ordering.
func groupVariantsBySignature(variants []registry.VariantSchema) []variantGroup {
	byKey := make(map[string]*variantGroup)

	for _, v := range variants {
		sig := signatureOf(v)
		key := sig.Canonical()
		g, ok := byKey[key]
		if !ok {
			g = &variantGroup{signature: sig}
			byKey[key] = g
		}
		g.variants = append(g.variants, v)
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	groups := make([]variantGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, *byKey[key])
	}
	return groups
}

func signatureOf(v registry.VariantSchema) VariantSignature {
	switch v.Kind {
	case "Tuple":
		types := make([]registry.TypeName, 0, len(v.PrefixItems))
		for _, item := range v.PrefixItems {
			if t, ok := item.Type.TypeName(); ok {
				types = append(types, t)
			}
		}
		return VariantSignature{Kind: SigTuple, TupleTypes: types}
	case "Struct":
		fields := v.Required
		if len(fields) == 0 {
			for f := range v.Properties {
				fields = append(fields, f)
			}
		}
		sigFields := make([]StructFieldSig, 0, len(fields))
		for _, f := range fields {
			if prop, ok := v.Properties[f]; ok {
				if t, ok := prop.Type.TypeName(); ok {
					sigFields = append(sigFields, StructFieldSig{Name: f, Type: t})
				}
			}
		}
		return VariantSignature{Kind: SigStruct, StructFields: sigFields}
	default:
		return VariantSignature{Kind: SigUnit}
	}
}

// selectPreferredExample picks the group example a parent builder should
// embed when this enum appears as a child field. Groups are tried in a
// fixed priority order rather than taking the first Mutable group
// encountered: a Unit "None"-shaped arm (or any other content-free variant)
// ranks last, because an empty placeholder technically satisfies
// Mutable-with-an-example but produces a useless or misleading parent
// example — the documented bevy_asset::Handle<Image> pitfall, where
// preferring a trivial arm over Strong{...} silently drops the one payload
// a caller actually wants to see. Struct-shaped groups rank above Tuple
// before Unit since struct payloads carry named, self-describing fields.
func selectPreferredExample(groups []ExampleGroup) (value.Value, bool) {
	rank := func(g ExampleGroup) int {
		switch {
		case g.Signature == "unit":
			return 2
		case strings.HasPrefix(g.Signature, "struct"):
			return 0
		default:
			return 1
		}
	}

	best := -1
	bestRank := 3
	for i, g := range groups {
		if g.Mutability != Mutable || g.Example == nil {
			continue
		}
		r := rank(g)
		if r < bestRank {
			bestRank = r
			best = i
		}
	}
	if best < 0 {
		return value.Value{}, false
	}
	return *groups[best].Example, true
}
