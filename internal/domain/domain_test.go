package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingReference(t *testing.T) {
	assert.Equal(t, "BK000042", (&Booking{ID: 42}).Reference())
	assert.Equal(t, "BK1234567", (&Booking{ID: 1234567}).Reference())
}

func TestAlreadyCancelledIsInvalidState(t *testing.T) {
	err := fmt.Errorf("%w: booking 3", ErrAlreadyCancelled)
	assert.True(t, errors.Is(err, ErrAlreadyCancelled))
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestFlightStatusValid(t *testing.T) {
	assert.True(t, FlightStatusCompleted.Valid())
	assert.False(t, FlightStatus("DELAYED").Valid())
}
