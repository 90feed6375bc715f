package types

import (
	"time"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
)

// BookingStatus is the durable record of a payment session's booking
// outcome. It is written exactly once per session by the payment webhook
// handler and read by the status endpoint; confirmed/failed are final.
type BookingStatus struct {
	Status           enums.BookingState `json:"status"`
	BookingReference string             `json:"booking_reference,omitempty"`
	DuffelOrderID    string             `json:"duffel_order_id,omitempty"`
	Error            string             `json:"error,omitempty"`
	Amount           string             `json:"amount,omitempty"`
	Currency         string             `json:"currency,omitempty"`
	Passengers       []Passenger        `json:"passengers,omitempty"`
	Services         []OrderService     `json:"services,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}
