package enums

import "fmt"

// CounterPhase tracks whether a counter's cart is being built or has a
// submission in flight.
type CounterPhase string

const (
	CounterPhaseBuilding   CounterPhase = "building"
	CounterPhaseSubmitting CounterPhase = "submitting"
)

var validCounterPhases = []CounterPhase{
	CounterPhaseBuilding,
	CounterPhaseSubmitting,
}

// String implements fmt.Stringer.
func (c CounterPhase) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CounterPhase.
func (c CounterPhase) IsValid() bool {
	for _, candidate := range validCounterPhases {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCounterPhase converts raw input into a CounterPhase.
func ParseCounterPhase(value string) (CounterPhase, error) {
	for _, candidate := range validCounterPhases {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid counter phase %q", value)
}
