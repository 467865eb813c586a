package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	cases := []struct {
		input string
		want  PaymentMethod
	}{
		{"cash", PaymentMethodCash},
		{"CASH", PaymentMethodCash},
		{"  upi ", PaymentMethodUPI},
		{"Card", PaymentMethodCard},
	}

	for _, tc := range cases {
		got, err := ParsePaymentMethod(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}

	_, err := ParsePaymentMethod("barter")
	assert.Error(t, err)
}

func TestPaymentMethodLabels(t *testing.T) {
	assert.Equal(t, "Cash", PaymentMethodCash.Label())
	assert.Equal(t, "UPI", PaymentMethodUPI.Label())
	assert.Equal(t, "Card", PaymentMethodCard.Label())
}

func TestCounterPhaseValidation(t *testing.T) {
	assert.True(t, CounterPhaseBuilding.IsValid())
	assert.True(t, CounterPhaseSubmitting.IsValid())
	assert.False(t, CounterPhase("done").IsValid())
}

func TestPickerStateValidation(t *testing.T) {
	for _, state := range []PickerState{
		PickerStateIdle,
		PickerStateSearching,
		PickerStateDetailLoading,
		PickerStateReady,
		PickerStateError,
	} {
		assert.True(t, state.IsValid(), "state %q", state)
	}
	assert.False(t, PickerState("stuck").IsValid())
}
