package recovery

import "github.com/ormasoftchile/brp-mcp/pkg/value"

// wireCorrection is CorrectionInfo's JSON shape in the recovery envelope
// (spec.md §6.4).
type wireCorrection struct {
	TypeName       string       `json:"type_name"`
	OriginalValue  *value.Value `json:"original_value,omitempty"`
	CorrectedValue *value.Value `json:"corrected_value,omitempty"`
	Hint           string       `json:"hint,omitempty"`
	ValidValues    []string     `json:"valid_values,omitempty"`
	Method         string       `json:"method,omitempty"`
}

type wireFirstError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// Envelope is the §6.4 recovery response appended to a brp/call result when
// format recovery participated.
type Envelope struct {
	FormatCorrections []wireCorrection `json:"format_corrections,omitempty"`
	FormatCorrected   string           `json:"format_corrected"`
	OriginalError     *wireFirstError  `json:"original_error,omitempty"`
}

// correctionMethod maps a PatternKind to the §6.4 method tag.
func correctionMethod(k PatternKind) string {
	switch k {
	case PatternMathTypeArray:
		return "object_to_array"
	default:
		return "direct_replacement"
	}
}

// BuildEnvelope renders an Outcome as the §6.4 recovery envelope. originals
// are the slot values Recover saw before correction, indexed the same way
// as out.Corrections (both derive from extractSlots in call order).
func BuildEnvelope(out Outcome, originals []value.Value) Envelope {
	env := Envelope{}
	switch out.Kind {
	case OutcomeRecovered:
		env.FormatCorrected = "succeeded"
	case OutcomeCorrectionFailed:
		env.FormatCorrected = "failed"
	default:
		env.FormatCorrected = "not_attempted"
	}

	for i, c := range out.Corrections {
		wc := wireCorrection{
			TypeName:       c.TypeName,
			CorrectedValue: c.CorrectedValue,
			Hint:           c.Hint,
			ValidValues:    c.ValidValues,
			Method:         correctionMethod(c.Pattern),
		}
		if i < len(originals) {
			v := originals[i]
			wc.OriginalValue = &v
		}
		env.FormatCorrections = append(env.FormatCorrections, wc)
	}

	if out.FirstError != nil {
		env.OriginalError = &wireFirstError{Code: out.FirstError.Code, Message: out.FirstError.Message}
	}
	return env
}
