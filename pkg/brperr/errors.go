// Package brperr holds the error taxonomy shared across the mutation path
// builder, the format recovery engine, and the transport client. Most of
// these are not fatal to a request — recoverable-at-type-scope conditions
// (NotInRegistry, MissingSerializationTraits, RecursionLimit) are folded
// into a path's Mutability + reason by pkg/mutation rather than propagated,
// exactly as spec.md §7 requires. Only InvalidState and InvalidArgument are
// meant to propagate as hard errors.
package brperr

import "fmt"

// NotInRegistryError reports a dangling reference: a type named by a $ref
// that is absent from the current registry snapshot. Never fatal.
type NotInRegistryError struct {
	TypeName string
}

func (e *NotInRegistryError) Error() string {
	return fmt.Sprintf("type %q is not present in the registry", e.TypeName)
}

// MissingSerializationTraitsError reports a leaf Value type that lacks
// Serialize and/or Deserialize. Never fatal.
type MissingSerializationTraitsError struct {
	TypeName string
}

func (e *MissingSerializationTraitsError) Error() string {
	return fmt.Sprintf("type %q is missing Serialize/Deserialize reflect traits", e.TypeName)
}

// RecursionLimitError reports that the builder's depth limit was hit while
// descending into TypeName. Never fatal.
type RecursionLimitError struct {
	TypeName string
	Limit    int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit (%d) exceeded while descending into %q", e.Limit, e.TypeName)
}

// InvalidStateError reports a condition that should be structurally
// impossible (e.g. an enum signature group with zero members). Fatal for
// the current request, not for the process.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return "invalid internal state: " + e.Message }

// BrpCommunicationError wraps a transport or auxiliary-endpoint failure.
// The recovery engine logs it and falls through to the next recovery level.
type BrpCommunicationError struct {
	Message string
	Cause   error
}

func (e *BrpCommunicationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("brp communication error: %s: %v", e.Message, e.Cause)
	}
	return "brp communication error: " + e.Message
}

func (e *BrpCommunicationError) Unwrap() error { return e.Cause }

// InvalidArgumentError reports malformed caller-supplied parameters. Fatal
// for the current request.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Message }

// ToolCallError is a structured error meant to be surfaced to the caller
// intact, preserving both a human message and machine-readable details.
type ToolCallError struct {
	Message string
	Details map[string]any
}

func (e *ToolCallError) Error() string { return e.Message }

// NoTargetsFoundError reports that no app/example target with the given
// name exists across any scanned project.
type NoTargetsFoundError struct {
	TargetName string
	TargetType string // "app" or "example"
}

func (e *NoTargetsFoundError) Error() string {
	return fmt.Sprintf("no %s named %q found in any scanned project", e.TargetType, e.TargetName)
}

// PathDisambiguationError reports that a target name matched more than one
// project and the caller must narrow the search with a path filter.
type PathDisambiguationError struct {
	TargetName     string
	TargetType     string
	AvailablePaths []string
}

func (e *PathDisambiguationError) Error() string {
	return fmt.Sprintf("%s %q is ambiguous; disambiguate with one of: %v", e.TargetType, e.TargetName, e.AvailablePaths)
}
