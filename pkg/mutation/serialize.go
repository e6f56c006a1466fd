package mutation

import (
	"encoding/json"
	"sort"

	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// wireMutabilityReason is MutabilityReason's JSON shape (spec.md §6.3).
type wireMutabilityReason struct {
	TypeName registry.TypeName `json:"type_name"`
	Issues   []string          `json:"issues,omitempty"`
	Message  string            `json:"message"`
}

// wireExampleGroup is ExampleGroup's JSON shape.
type wireExampleGroup struct {
	ApplicableVariants []VariantName `json:"applicable_variants"`
	Signature          string        `json:"signature"`
	Example            *value.Value  `json:"example,omitempty"`
	Mutability         string        `json:"mutability"`
}

// wireEnumPathData is EnumPathData's JSON shape.
type wireEnumPathData struct {
	VariantChain       []string      `json:"variant_chain"`
	ApplicableVariants []VariantName `json:"applicable_variants,omitempty"`
	RootExample        *value.Value  `json:"root_example,omitempty"`
}

// wireRow is one MutationPathInternal flattened to JSON per spec.md §6.3.
type wireRow struct {
	MutationPath        string                 `json:"mutation_path"`
	TypeName            registry.TypeName      `json:"type_name"`
	Mutability          string                 `json:"mutability"`
	MutabilityReason    *wireMutabilityReason  `json:"mutability_reason,omitempty"`
	Example             *value.Value           `json:"example,omitempty"`
	ExampleGroups       []wireExampleGroup     `json:"example_groups,omitempty"`
	EnumPathData        *wireEnumPathData      `json:"enum_path_data,omitempty"`
	Depth               int                    `json:"depth"`
	PartialRootExamples map[string]value.Value `json:"partial_root_examples,omitempty"`
}

func toWireRow(row MutationPathInternal) wireRow {
	w := wireRow{
		MutationPath: row.MutationPath,
		TypeName:     row.TypeName,
		Mutability:   row.Mutability.String(),
		Depth:        row.Depth,
	}
	if row.MutabilityReason != nil {
		w.MutabilityReason = &wireMutabilityReason{
			TypeName: row.MutabilityReason.TypeName,
			Issues:   row.MutabilityReason.Issues,
			Message:  row.MutabilityReason.Message,
		}
	}
	switch row.Example.Tag {
	case ExampleLeaf:
		v := row.Example.Leaf
		w.Example = &v
	case ExampleEnumRoot:
		for _, g := range row.Example.Groups {
			w.ExampleGroups = append(w.ExampleGroups, wireExampleGroup{
				ApplicableVariants: g.ApplicableVariants,
				Signature:          g.Signature,
				Example:            g.Example,
				Mutability:         g.Mutability.String(),
			})
		}
		if v, ok := row.Example.ForParent(); ok {
			w.Example = &v
		}
	}
	if row.EnumPathData != nil {
		chain := make([]string, len(row.EnumPathData.VariantChain))
		for i, v := range row.EnumPathData.VariantChain {
			chain[i] = string(v)
		}
		w.EnumPathData = &wireEnumPathData{
			VariantChain:       chain,
			ApplicableVariants: row.EnumPathData.ApplicableVariants,
			RootExample:        row.EnumPathData.RootExample,
		}
	}
	if len(row.PartialRootExamples) > 0 {
		w.PartialRootExamples = row.PartialRootExamples
	}
	return w
}

// Envelope is the top-level brp/mutation_paths response shape (spec.md §6.3).
type Envelope struct {
	MutationPaths    []wireRow             `json:"mutation_paths"`
	RootExample      *value.Value          `json:"root_example,omitempty"`
	Mutability       string                `json:"mutability"`
	MutabilityReason *wireMutabilityReason `json:"mutability_reason,omitempty"`
}

// BuildEnvelope serializes a flattened row table into the output envelope,
// sorting PartialRootExamples keys canonically (spec.md §6.3) and pulling
// the root row's (mutation_path == "") mutability/example up to the top.
func BuildEnvelope(rows []MutationPathInternal) Envelope {
	env := Envelope{Mutability: NotMutable.String()}
	for _, row := range rows {
		w := toWireRow(row)
		if len(w.PartialRootExamples) > 0 {
			w.PartialRootExamples = sortedPartialRootExamples(w.PartialRootExamples)
		}
		env.MutationPaths = append(env.MutationPaths, w)
		if row.MutationPath == "" {
			env.Mutability = row.Mutability.String()
			if row.MutabilityReason != nil {
				env.MutabilityReason = &wireMutabilityReason{
					TypeName: row.MutabilityReason.TypeName,
					Issues:   row.MutabilityReason.Issues,
					Message:  row.MutabilityReason.Message,
				}
			}
			if v, ok := row.Example.ForParent(); ok {
				env.RootExample = &v
			}
		}
	}
	return env
}

// sortedPartialRootExamples copies m into a new map, visiting its keys in
// sorted order. A Go map keeps no order of its own, so the sorted key order
// in the emitted JSON comes from encoding/json, which sorts map[string]X
// keys when marshaling.
func sortedPartialRootExamples(m map[string]value.Value) map[string]value.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]value.Value, len(m))
	for _, k := range keys {
		out[k] = m[k]
	}
	return out
}

// MarshalEnvelope renders an Envelope as indented JSON for tool output.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}
