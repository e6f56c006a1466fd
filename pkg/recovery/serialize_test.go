package recovery

import (
	"testing"

	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

func TestBuildEnvelopeRecoveredMarksSucceeded(t *testing.T) {
	corrected := value.Array(value.Number(1), value.Number(2), value.Number(3))
	out := Outcome{
		Kind:       OutcomeRecovered,
		FirstError: &transport.CallError{Code: -32602, Message: "expected an array for Vec3, found object"},
		Corrections: []CorrectionInfo{
			{TypeName: "bevy_math::Vec3", Pattern: PatternMathTypeArray, CorrectedValue: &corrected},
		},
	}
	original := value.Object().Set("x", value.Number(1)).Set("y", value.Number(2)).Set("z", value.Number(3))

	env := BuildEnvelope(out, []value.Value{original})
	if env.FormatCorrected != "succeeded" {
		t.Fatalf("format_corrected = %q, want succeeded", env.FormatCorrected)
	}
	if len(env.FormatCorrections) != 1 {
		t.Fatalf("got %d corrections, want 1", len(env.FormatCorrections))
	}
	if env.FormatCorrections[0].Method != "object_to_array" {
		t.Fatalf("method = %q, want object_to_array", env.FormatCorrections[0].Method)
	}
	if env.OriginalError == nil || env.OriginalError.Code != -32602 {
		t.Fatal("expected original_error to carry the first error's code")
	}
}

func TestBuildEnvelopeNotRecoverableOmitsCorrections(t *testing.T) {
	out := Outcome{Kind: OutcomeNotRecoverable, FirstError: &transport.CallError{Message: "connection reset"}}
	env := BuildEnvelope(out, nil)
	if env.FormatCorrected != "not_attempted" {
		t.Fatalf("format_corrected = %q, want not_attempted", env.FormatCorrected)
	}
	if len(env.FormatCorrections) != 0 {
		t.Fatalf("format_corrections = %v, want none", env.FormatCorrections)
	}
}
