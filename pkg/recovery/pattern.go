// Package recovery implements the format error recovery engine: the
// three-level decision tree that intercepts a BRP call's format-mismatch
// error and either transforms the caller's input into a valid form and
// retries once, or returns structured guidance. All pattern detection is
// centralized here rather than scattered across transformers, so a single
// place owns the mapping from a raw BRP error string to a structured
// ErrorPattern.
package recovery

import (
	"regexp"
	"strings"
)

// PatternKind tags the shape of a parsed BRP error message.
type PatternKind int

const (
	PatternUnknown PatternKind = iota
	PatternMathTypeArray
	PatternMissingField
	PatternTypeMismatch
	PatternEnumUnitVariantMutation
	PatternEnumUnitVariantAccessError
	PatternAccessError
	PatternUnknownComponentType
)

// ErrorPattern is the structured classification of a BRP error message.
type ErrorPattern struct {
	Kind       PatternKind
	MathType   string   // PatternMathTypeArray: "Vec2"/"Vec3"/"Vec4"/"Quat"
	Field      string   // PatternMissingField
	Type       string   // PatternMissingField, PatternTypeMismatch
	Expected   string   // PatternTypeMismatch, PatternEnumUnitVariantMutation
	Actual     string   // PatternTypeMismatch, PatternEnumUnitVariantMutation
	Access     string   // PatternTypeMismatch, PatternAccessError
	IsVariant  bool     // PatternTypeMismatch
	ValidNames []string // PatternEnumUnitVariantMutation / AccessError: "expected one of: A, B, C"
}

var (
	mathTypeRe     = regexp.MustCompile(`\b(Vec2|Vec3|Vec4|Quat)\b`)
	missingFieldRe = regexp.MustCompile(`(?i)unknown field[^"]*"([^"]+)"`)
	mismatchRe     = regexp.MustCompile(`(?i)expected\s+(?:variant\s+)?([A-Za-z0-9_:<>]+)[,]?\s+(?:found|got|actual)\s+(?:variant\s+)?([A-Za-z0-9_:<>]+)`)
	variantRe      = regexp.MustCompile(`(?i)variant`)
	accessRe       = regexp.MustCompile(`(?i)access error|failed to access|does not exist`)
	expectedOneOf  = regexp.MustCompile(`(?i)expected one of:\s*([^.]+)`)
	unknownCompRe  = regexp.MustCompile(`(?i)unknown component type`)
)

// Classify parses a raw BRP error message into an ErrorPattern. Messages
// that match none of the known forms classify as PatternUnknown — callers
// treat that as "no Level 3 transformer applies".
func Classify(message string) ErrorPattern {
	if unknownCompRe.MatchString(message) {
		return ErrorPattern{Kind: PatternUnknownComponentType}
	}
	if m := mathTypeRe.FindStringSubmatch(message); m != nil && looksLikeObjectVsArray(message) {
		return ErrorPattern{Kind: PatternMathTypeArray, MathType: m[1]}
	}
	if m := missingFieldRe.FindStringSubmatch(message); m != nil {
		return ErrorPattern{Kind: PatternMissingField, Field: m[1]}
	}
	if m := mismatchRe.FindStringSubmatch(message); m != nil {
		p := ErrorPattern{Kind: PatternTypeMismatch, Expected: m[1], Actual: m[2]}
		p.IsVariant = variantRe.MatchString(message)
		if accessRe.MatchString(message) {
			p.Access = extractQuoted(message)
		}
		if p.IsVariant {
			if accessRe.MatchString(message) {
				p.Kind = PatternEnumUnitVariantAccessError
			} else {
				p.Kind = PatternEnumUnitVariantMutation
			}
			p.ValidNames = extractValidNames(message)
		}
		return p
	}
	if accessRe.MatchString(message) {
		p := ErrorPattern{Kind: PatternAccessError, Access: extractQuoted(message)}
		p.ValidNames = extractValidNames(message)
		return p
	}
	return ErrorPattern{Kind: PatternUnknown}
}

func looksLikeObjectVsArray(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "array") || strings.Contains(lower, "sequence")
}

func extractQuoted(message string) string {
	start := strings.IndexByte(message, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(message[start+1:], '"')
	if end < 0 {
		return ""
	}
	return message[start+1 : start+1+end]
}

func extractValidNames(message string) []string {
	m := expectedOneOf.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := strings.TrimSpace(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}
