package enums

import "fmt"

// PassengerType mirrors the supplier's traveler categories.
type PassengerType string

const (
	PassengerTypeAdult             PassengerType = "adult"
	PassengerTypeChild             PassengerType = "child"
	PassengerTypeInfantWithoutSeat PassengerType = "infant_without_seat"
)

var validPassengerTypes = []PassengerType{
	PassengerTypeAdult,
	PassengerTypeChild,
	PassengerTypeInfantWithoutSeat,
}

// String implements fmt.Stringer.
func (p PassengerType) String() string {
	return string(p)
}

// IsValid reports whether the passenger type is recognized.
func (p PassengerType) IsValid() bool {
	for _, candidate := range validPassengerTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePassengerType converts a raw string into a PassengerType.
func ParsePassengerType(value string) (PassengerType, error) {
	for _, candidate := range validPassengerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid passenger type %q", value)
}
