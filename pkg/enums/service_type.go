package enums

import "fmt"

// ServiceType classifies ancillary services attached to a flight offer.
type ServiceType string

const (
	ServiceTypeSeat    ServiceType = "seat"
	ServiceTypeBaggage ServiceType = "baggage"
)

var validServiceTypes = []ServiceType{
	ServiceTypeSeat,
	ServiceTypeBaggage,
}

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}

// IsValid reports whether the service type is recognized.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceType converts a raw string into a ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
