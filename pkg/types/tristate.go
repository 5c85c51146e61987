package types

// TriState is the aggregated activation of a set of items.
type TriState int

const (
	False TriState = iota
	True
	Indeterminate
)

// FromBool converts a plain flag.
func FromBool(b bool) TriState {
	if b {
		return True
	}
	return False
}

// Aggregate applies the tri-state rule: True when every value is True, False
// when every value is False, Indeterminate otherwise. The second result is
// false for an empty input, which callers treat as "keep the previous value".
func Aggregate(values []TriState) (TriState, bool) {
	if len(values) == 0 {
		return False, false
	}
	first := values[0]
	if first == Indeterminate {
		return Indeterminate, true
	}
	for _, v := range values[1:] {
		if v != first {
			return Indeterminate, true
		}
	}
	return first, true
}

func (s TriState) String() string {
	switch s {
	case True:
		return "active"
	case False:
		return "inactive"
	default:
		return "partial"
	}
}
