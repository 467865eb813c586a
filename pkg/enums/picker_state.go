package enums

import "fmt"

// PickerState models the medicine picker's dialog flow: typing, waiting on the
// detail fetch, ready for quantity/price entry, or failed.
type PickerState string

const (
	PickerStateIdle          PickerState = "idle"
	PickerStateSearching     PickerState = "searching"
	PickerStateDetailLoading PickerState = "detail_loading"
	PickerStateReady         PickerState = "ready"
	PickerStateError         PickerState = "error"
)

var validPickerStates = []PickerState{
	PickerStateIdle,
	PickerStateSearching,
	PickerStateDetailLoading,
	PickerStateReady,
	PickerStateError,
}

// String implements fmt.Stringer.
func (p PickerState) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PickerState.
func (p PickerState) IsValid() bool {
	for _, candidate := range validPickerStates {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickerState converts raw input into a PickerState.
func ParsePickerState(value string) (PickerState, error) {
	for _, candidate := range validPickerStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid picker state %q", value)
}
