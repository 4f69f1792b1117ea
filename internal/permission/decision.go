package permission

// Result is the outcome class of an authorization decision.
type Result int

const (
	ResultDeny Result = iota
	ResultAllow
	ResultConditional
)

// Decision is what the policy hands back for an action request. Conditional
// decisions carry a criteria tree for the store to fold into its query, or
// for the caller to check against a single resource's facts.
type Decision struct {
	Result   Result
	Criteria Criteria
}

// Allowed returns an unconditional allow.
func Allowed() Decision {
	return Decision{Result: ResultAllow}
}

// Denied returns an unconditional deny.
func Denied() Decision {
	return Decision{Result: ResultDeny}
}

// ConditionalOn returns a decision gated on the given criteria tree.
func ConditionalOn(c Criteria) Decision {
	return Decision{Result: ResultConditional, Criteria: c}
}

// Satisfied reports whether the decision permits acting on a resource with
// the given facts. Conditional decisions evaluate their criteria in memory.
func (d Decision) Satisfied(f Facts) bool {
	switch d.Result {
	case ResultAllow:
		return true
	case ResultConditional:
		return d.Criteria != nil && d.Criteria.Matches(f)
	default:
		return false
	}
}
