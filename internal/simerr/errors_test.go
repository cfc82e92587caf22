package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_KeepsIdentity(t *testing.T) {
	err := New(ErrFlightNotFound, "flight %s not found", "FL123")

	assert.Equal(t, "flight FL123 not found", err.Error())
	assert.True(t, errors.Is(err, ErrFlightNotFound))
	assert.False(t, errors.Is(err, ErrTicketNotFound))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", ErrPassengerNotFound, KindNotFound},
		{"wrapped", fmt.Errorf("failed to buy: %w", ErrNoCapacity), KindCapacityExceeded},
		{"validation", New(ErrInvalidBaggage, "baggage 21 kg"), KindValidation},
		{"ownership", ErrNotOwner, KindOwnershipMismatch},
		{"state", ErrAlreadyReturned, KindInvalidState},
		{"plain", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "RegistrationClosed", CodeOf(fmt.Errorf("wrap: %w", ErrRegistrationClosed)))
	assert.Equal(t, "Internal", CodeOf(errors.New("boom")))
	assert.Equal(t, "", CodeOf(nil))
}
