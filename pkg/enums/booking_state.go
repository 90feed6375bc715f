package enums

import "fmt"

// BookingState tracks the outcome of a payment session's booking.
// The absence of a status record implies processing.
type BookingState string

const (
	BookingStateProcessing BookingState = "processing"
	BookingStateConfirmed  BookingState = "confirmed"
	BookingStateFailed     BookingState = "failed"
)

var validBookingStates = []BookingState{
	BookingStateProcessing,
	BookingStateConfirmed,
	BookingStateFailed,
}

// String implements fmt.Stringer.
func (b BookingState) String() string {
	return string(b)
}

// IsValid reports whether the state is recognized.
func (b BookingState) IsValid() bool {
	for _, candidate := range validBookingStates {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state admits no further transitions.
func (b BookingState) IsTerminal() bool {
	return b == BookingStateConfirmed || b == BookingStateFailed
}

// ParseBookingState converts a raw string into a BookingState.
func ParseBookingState(value string) (BookingState, error) {
	for _, candidate := range validBookingStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking state %q", value)
}
