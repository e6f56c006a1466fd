package recovery

import (
	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// CorrectionInfo records one attempted or guidance-only correction, always
// surfaced to the caller so they can learn what recovery tried.
type CorrectionInfo struct {
	TypeName       string
	Pattern        PatternKind
	CorrectedValue *value.Value // nil iff this correction is guidance-only
	Hint           string
	ValidValues    []string
	Examples       []value.Value
	Path           string
}

// Retryable reports whether this correction carries a concrete value a
// retry can substitute, as opposed to guidance-only fields (hint,
// valid_values, examples).
func (c CorrectionInfo) Retryable() bool {
	return c.CorrectedValue != nil
}

// OutcomeKind tags which terminal state Recover reached.
type OutcomeKind int

const (
	OutcomeRecovered OutcomeKind = iota
	OutcomeCorrectionFailed
	OutcomeNotRecoverable
)

// Outcome is Recover's result.
type Outcome struct {
	Kind            OutcomeKind
	CorrectedResult value.Value        // OutcomeRecovered
	RetryError      *transport.CallError // OutcomeCorrectionFailed
	Corrections     []CorrectionInfo
	FirstError      *transport.CallError
}
