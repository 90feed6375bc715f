package types

import "github.com/wayfarerhq/wayfarer-backend/pkg/enums"

// SelectedService is the verbose ancillary representation used for cart
// display: it carries price components and the association to a traveler
// and flight segment.
type SelectedService struct {
	ID          string            `json:"id"`
	Type        enums.ServiceType `json:"type"`
	Quantity    int               `json:"quantity"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	PassengerID string            `json:"passenger_id"`
	SegmentID   string            `json:"segment_id"`
	Designator  string            `json:"designator,omitempty"`
}

// OrderService is the minimal {id, quantity} pair the supplier's
// order-creation contract accepts.
type OrderService struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// SelectedServices preserves insertion order.
type SelectedServices []SelectedService

// OrderServices derives the minimal order representation from the verbose
// one, so the two lists cannot drift apart.
func (s SelectedServices) OrderServices() []OrderService {
	out := make([]OrderService, 0, len(s))
	for _, svc := range s {
		out = append(out, OrderService{ID: svc.ID, Quantity: svc.Quantity})
	}
	return out
}
