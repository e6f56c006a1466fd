package mutation

// Summarize renders a short human-readable line for a mutability reason:
// Message when set, else a fixed phrase for the reason Kind. The wire rows
// built in serialize.go carry Message directly and do not call this.
func (r *MutabilityReason) Summarize() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	switch r.Kind {
	case ReasonNotInRegistry:
		return "type not present in registry"
	case ReasonMissingSerializationTraits:
		return "type missing Serialize/Deserialize"
	case ReasonRecursionLimit:
		return "recursion limit exceeded"
	case ReasonNoVariantsMutable:
		return "no enum variant is mutable"
	case ReasonPartialVariants:
		return "some enum variants are not mutable"
	case ReasonMapValueIncompatible:
		return "map value type is not mutable"
	case ReasonArrayElementIncompatible:
		return "array element type is not mutable"
	default:
		return "not mutable"
	}
}
