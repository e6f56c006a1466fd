package recovery

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/ormasoftchile/brp-mcp/pkg/knowledge"
	"github.com/ormasoftchile/brp-mcp/pkg/registry"
	"github.com/ormasoftchile/brp-mcp/pkg/transport"
	"github.com/ormasoftchile/brp-mcp/pkg/value"
)

// typedMethods are the only BRP methods whose parameters name a concrete
// component/resource type and therefore can benefit from recovery; every
// other method's error passes through untouched (spec.md §4.6).
var typedMethods = map[string]bool{
	"spawn":            true,
	"insert":           true,
	"insert_resource":  true,
	"mutate_component": true,
	"mutate_resource":  true,
}

// slot is one (type, value) pair named by a typed method's parameters,
// plus enough closure state to substitute a corrected value back in.
type slot struct {
	typeName registry.TypeName
	path     string // mutation path, "" for spawn/insert/insert_resource whole-value slots
	value    value.Value
	set      func(params value.Value, corrected value.Value) value.Value
}

// Recover is the single entry point: given the BRP method, the parameters
// that produced firstErr, and that error itself, attempt the three-level
// recovery decision tree and return a terminal Outcome.
func Recover(ctx context.Context, client *transport.Client, reg *registry.Registry, kb *knowledge.Base, method string, params value.Value, firstErr *transport.CallError) Outcome {
	if !typedMethods[method] {
		return Outcome{Kind: OutcomeNotRecoverable, FirstError: firstErr}
	}

	slots := extractSlots(method, params)
	if len(slots) == 0 {
		return Outcome{Kind: OutcomeNotRecoverable, FirstError: firstErr}
	}

	if out, done := level1(reg, slots, firstErr); done {
		return out
	}

	corrections, done := level2(ctx, client, reg, slots, method, firstErr)
	if !done {
		corrections, done = level3(slots, firstErr)
	}
	if !done || len(corrections) == 0 {
		return Outcome{Kind: OutcomeNotRecoverable, FirstError: firstErr, Corrections: corrections}
	}

	allRetryable := true
	for _, c := range corrections {
		if !c.Retryable() {
			allRetryable = false
			break
		}
	}
	if !allRetryable {
		return Outcome{Kind: OutcomeNotRecoverable, FirstError: firstErr, Corrections: corrections}
	}

	return executeRetry(ctx, client, method, params, slots, corrections, firstErr)
}

// level1 implements the registry/serialization pre-check. It only halts
// recovery outright when the error message carries the "unknown component
// type" signature Bevy emits for types missing Serialize/Deserialize.
func level1(reg *registry.Registry, slots []slot, firstErr *transport.CallError) (Outcome, bool) {
	if Classify(firstErr.Message).Kind != PatternUnknownComponentType {
		return Outcome{}, false
	}
	for _, s := range slots {
		status := reg.Status(s.typeName)
		if status.InRegistry && !reg.BRPCompatible(s.typeName) {
			info := CorrectionInfo{
				TypeName: string(s.typeName),
				Pattern:  PatternUnknownComponentType,
				Hint:     fmt.Sprintf("%s is missing #[derive(Serialize, Deserialize)] (or the equivalent reflect traits) and cannot cross the BRP wire", s.typeName),
			}
			return Outcome{Kind: OutcomeNotRecoverable, FirstError: firstErr, Corrections: []CorrectionInfo{info}}, true
		}
	}
	return Outcome{}, false
}

// level2 queries extras/discover_format for the first slot's type. A
// transport failure or an unrecognized response is "nothing" — control
// falls through to Level 3.
func level2(ctx context.Context, client *transport.Client, reg *registry.Registry, slots []slot, method string, firstErr *transport.CallError) ([]CorrectionInfo, bool) {
	if client == nil {
		return nil, false
	}
	target := slots[0]

	reqParams := value.Object().Set("types", value.Array(value.String(string(target.typeName))))
	resp, callErr := client.Call(ctx, "extras/discover_format", reqParams)
	if callErr != nil {
		return nil, false
	}

	typeInfo, ok := resp.Get(string(target.typeName))
	if !ok {
		return nil, false
	}

	if (method == "mutate_component" || method == "mutate_resource") && target.path != "" {
		if paths, ok := typeInfo.Get("mutationPaths"); ok && paths.Kind() == value.KindArray && paths.Len() > 0 {
			valid := make([]string, 0, paths.Len())
			for _, p := range paths.Elements() {
				if s, ok := p.Str(); ok {
					valid = append(valid, s)
				}
			}
			info := CorrectionInfo{
				TypeName:    string(target.typeName),
				Pattern:     PatternAccessError,
				Path:        target.path,
				ValidValues: valid,
				Hint:        "the path itself is not valid for this type; see valid_values for the discoverable mutation paths",
			}
			return []CorrectionInfo{info}, true
		}
	}

	example, ok := typeInfo.Get("example")
	if !ok {
		return nil, false
	}
	corrected := example
	info := CorrectionInfo{TypeName: string(target.typeName), Pattern: PatternUnknown, CorrectedValue: &corrected}
	return []CorrectionInfo{info}, true
}

// transformRule is one dispatch table entry gated by an expr-lang guard
// expression evaluated against the pattern/type environment — the same
// technique the teacher's runtime engine uses for `when:` step conditions.
type transformRule struct {
	name  string
	when  string
	apply func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool)
}

var transformRules = []transformRule{
	{
		name: "math-object-to-array",
		when: `pattern.Kind == "MathTypeArray"`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			arr, ok := transformMathObjectToArray(pattern, s.value)
			if !ok {
				return CorrectionInfo{}, false
			}
			return CorrectionInfo{TypeName: string(s.typeName), Pattern: pattern.Kind, Path: s.path, CorrectedValue: &arr}, true
		},
	},
	{
		name: "single-field-unwrap",
		when: `pattern.Kind == "TypeMismatch" && pattern.IsVariant`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			inner, ok := transformSingleFieldUnwrap(s.value)
			if !ok {
				return CorrectionInfo{}, false
			}
			return CorrectionInfo{TypeName: string(s.typeName), Pattern: pattern.Kind, Path: s.path, CorrectedValue: &inner}, true
		},
	},
	{
		name: "array-first-element",
		when: `pattern.Kind == "TypeMismatch" && !pattern.IsVariant`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			first, ok := transformArrayFirstElement(s.value)
			if !ok {
				return CorrectionInfo{}, false
			}
			return CorrectionInfo{TypeName: string(s.typeName), Pattern: pattern.Kind, Path: s.path, CorrectedValue: &first}, true
		},
	},
	{
		name: "enum-variant-guidance",
		when: `pattern.Kind == "EnumUnitVariantMutation" || pattern.Kind == "EnumUnitVariantAccessError"`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			return buildEnumVariantGuidance(s.typeName, pattern), true
		},
	},
	{
		name: "missing-field-guidance",
		when: `pattern.Kind == "MissingField"`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			return CorrectionInfo{
				TypeName: string(s.typeName),
				Pattern:  pattern.Kind,
				Path:     s.path,
				Hint:     fmt.Sprintf("%q is not a field of %s", pattern.Field, s.typeName),
			}, true
		},
	},
	{
		name: "generic-access-error-guidance",
		when: `pattern.Kind == "AccessError"`,
		apply: func(s slot, pattern ErrorPattern, kb *knowledge.Base) (CorrectionInfo, bool) {
			return CorrectionInfo{
				TypeName:    string(s.typeName),
				Pattern:     pattern.Kind,
				Path:        s.path,
				ValidValues: pattern.ValidNames,
				Hint:        fmt.Sprintf("%q does not resolve to a mutable location on %s", pattern.Access, s.typeName),
			}, true
		},
	},
}

func patternKindName(k PatternKind) string {
	switch k {
	case PatternMathTypeArray:
		return "MathTypeArray"
	case PatternMissingField:
		return "MissingField"
	case PatternTypeMismatch:
		return "TypeMismatch"
	case PatternEnumUnitVariantMutation:
		return "EnumUnitVariantMutation"
	case PatternEnumUnitVariantAccessError:
		return "EnumUnitVariantAccessError"
	case PatternAccessError:
		return "AccessError"
	case PatternUnknownComponentType:
		return "UnknownComponentType"
	default:
		return "Unknown"
	}
}

// level3 classifies firstErr's message and dispatches to the first
// transformer whose guard matches, applied to the first slot only: a
// spawn/insert naming several components gets a correction for its first
// component and none for the rest.
func level3(slots []slot, firstErr *transport.CallError) ([]CorrectionInfo, bool) {
	pattern := Classify(firstErr.Message)
	if pattern.Kind == PatternUnknown {
		return nil, false
	}
	target := slots[0]

	env := map[string]any{
		"pattern": map[string]any{
			"Kind":      patternKindName(pattern.Kind),
			"IsVariant": pattern.IsVariant,
		},
	}

	for _, rule := range transformRules {
		matched, err := evalGuard(rule.when, env)
		if err != nil || !matched {
			continue
		}
		info, ok := rule.apply(target, pattern, nil)
		if !ok {
			continue
		}
		return []CorrectionInfo{info}, true
	}
	return nil, false
}

func evalGuard(guard string, env map[string]any) (bool, error) {
	program, err := expr.Compile(guard, expr.Env(env), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("recovery: compile guard %q: %w", guard, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("recovery: eval guard %q: %w", guard, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("recovery: guard %q did not return bool", guard)
	}
	return result, nil
}

func executeRetry(ctx context.Context, client *transport.Client, method string, params value.Value, slots []slot, corrections []CorrectionInfo, firstErr *transport.CallError) Outcome {
	newParams := params
	for i, c := range corrections {
		newParams = slots[i].set(newParams, *c.CorrectedValue)
	}

	result, retryErr := client.Call(ctx, method, newParams)
	if retryErr != nil {
		return Outcome{Kind: OutcomeCorrectionFailed, FirstError: firstErr, RetryError: retryErr, Corrections: corrections}
	}
	return Outcome{Kind: OutcomeRecovered, FirstError: firstErr, CorrectedResult: result, Corrections: corrections}
}

func extractSlots(method string, params value.Value) []slot {
	switch method {
	case "spawn", "insert":
		components, ok := params.Get("components")
		if !ok || components.Kind() != value.KindObject {
			return nil
		}
		var slots []slot
		for _, key := range components.Keys() {
			key := key
			v, _ := components.Get(key)
			slots = append(slots, slot{
				typeName: registry.TypeName(key),
				value:    v,
				set: func(p value.Value, corrected value.Value) value.Value {
					comps, _ := p.Get("components")
					comps.Set(key, corrected)
					return p
				},
			})
		}
		return slots

	case "insert_resource":
		res, ok := params.Get("resource")
		if !ok {
			return nil
		}
		resName, ok := res.Str()
		if !ok {
			return nil
		}
		v, _ := params.Get("value")
		return []slot{{
			typeName: registry.TypeName(resName),
			value:    v,
			set: func(p value.Value, corrected value.Value) value.Value {
				return p.Set("value", corrected)
			},
		}}

	case "mutate_component":
		comp, ok := params.Get("component")
		if !ok {
			return nil
		}
		compName, ok := comp.Str()
		if !ok {
			return nil
		}
		path, _ := params.Get("path")
		pathStr, _ := path.Str()
		v, _ := params.Get("value")
		return []slot{{
			typeName: registry.TypeName(compName),
			path:     pathStr,
			value:    v,
			set: func(p value.Value, corrected value.Value) value.Value {
				return p.Set("value", corrected)
			},
		}}

	case "mutate_resource":
		res, ok := params.Get("resource")
		if !ok {
			return nil
		}
		resName, ok := res.Str()
		if !ok {
			return nil
		}
		path, _ := params.Get("path")
		pathStr, _ := path.Str()
		v, _ := params.Get("value")
		return []slot{{
			typeName: registry.TypeName(resName),
			path:     pathStr,
			value:    v,
			set: func(p value.Value, corrected value.Value) value.Value {
				return p.Set("value", corrected)
			},
		}}

	default:
		return nil
	}
}

// OriginalValues returns the pre-correction slot values for method/params in
// the same order Recover's Outcome.Corrections were produced, so a caller
// building the §6.4 envelope can zip them together positionally.
func OriginalValues(method string, params value.Value) []value.Value {
	slots := extractSlots(method, params)
	out := make([]value.Value, len(slots))
	for i, s := range slots {
		out[i] = s.value
	}
	return out
}
