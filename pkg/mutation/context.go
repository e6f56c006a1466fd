package mutation

import (
	"github.com/ormasoftchile/brp-mcp/pkg/brperr"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
)

// MaxDepth bounds recursion into self-referential or pathologically deep
// type graphs. 16 matches the ceiling observed in original_source's
// mutation_path_builder — deep enough for any realistic component tree,
// shallow enough to fail fast on a cycle.
const MaxDepth = 16

// Context threads the state the builder needs at every recursion level:
// where we are (TypeName, MutationPath, Depth, PathKind) and what variant
// selections, if any, got us here (VariantChain, ParentVariantSignature).
type Context struct {
	TypeName               registry.TypeName
	MutationPath           string
	Depth                  int
	PathKind               PathKind
	VariantChain           VariantChain
	ParentVariantSignature *VariantSignature
	Registry               *registry.Registry
}

// RootContext builds the Context for a top-level describe_type / mutation
// path request.
func RootContext(reg *registry.Registry, typeName registry.TypeName) Context {
	return Context{
		TypeName:     typeName,
		MutationPath: "",
		Depth:        0,
		PathKind:     PathKind{Tag: RootValue, Type: typeName},
		Registry:     reg,
	}
}

// CreateChildContext derives the Context for a child node, extending the
// mutation path and bumping depth. It returns a RecursionLimitError once
// MaxDepth is exceeded so the caller can fold that into the parent's
// Mutability instead of panicking or looping forever.
func (c Context) CreateChildContext(childType registry.TypeName, childPath string, kind PathKind, variant *VariantName) (Context, error) {
	if c.Depth+1 > MaxDepth {
		return Context{}, &brperr.RecursionLimitError{TypeName: string(childType), Limit: MaxDepth}
	}

	chain := c.VariantChain
	if variant != nil {
		chain = chain.Append(*variant)
	}

	return Context{
		TypeName:               childType,
		MutationPath:           c.MutationPath + childPath,
		Depth:                  c.Depth + 1,
		PathKind:               kind,
		VariantChain:           chain,
		ParentVariantSignature: c.ParentVariantSignature,
		Registry:               c.Registry,
	}, nil
}

// WithParentVariantSignature returns a copy of c carrying sig as the
// signature of the enum variant whose children are currently being built.
// CreateChildContext copies it on to every descendant; no builder in this
// package reads it back.
func (c Context) WithParentVariantSignature(sig *VariantSignature) Context {
	c.ParentVariantSignature = sig
	return c
}
