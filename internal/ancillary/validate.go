package ancillary

import (
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// ValidateServices replays a flat submitted selection through the wizard
// so writes arriving as one list obey the same seat rules as interactive
// selection: one seat per passenger per segment, no designator held twice.
// When the cart recorded no passenger ids the set is derived from the
// services themselves, which skips the unknown-passenger check but keeps
// the conflict rules intact.
func ValidateServices(offerID string, passengerIDs []string, services types.SelectedServices) error {
	if len(services) == 0 {
		return nil
	}

	passengers := make([]types.Passenger, 0, len(passengerIDs))
	for _, id := range passengerIDs {
		if id != "" {
			passengers = append(passengers, types.Passenger{ID: id})
		}
	}
	if len(passengers) == 0 {
		seen := make(map[string]struct{})
		for _, svc := range services {
			if svc.PassengerID == "" {
				continue
			}
			if _, ok := seen[svc.PassengerID]; ok {
				continue
			}
			seen[svc.PassengerID] = struct{}{}
			passengers = append(passengers, types.Passenger{ID: svc.PassengerID})
		}
	}
	if len(passengers) == 0 {
		passengers = SyntheticPassengers(1)
	}

	sel, err := NewSelection(offerID, passengers)
	if err != nil {
		return err
	}

	if err := sel.OpenSeatMap(); err != nil {
		return err
	}
	for _, svc := range services {
		if svc.Type != enums.ServiceTypeSeat {
			continue
		}
		// Seats without a seat-map association cannot conflict.
		if svc.PassengerID == "" || svc.SegmentID == "" || svc.Designator == "" {
			continue
		}
		if err := sel.AssignSeat(SeatChoice{
			PassengerID: svc.PassengerID,
			SegmentID:   svc.SegmentID,
			ServiceID:   svc.ID,
			Designator:  svc.Designator,
			Amount:      svc.Amount,
			Currency:    svc.Currency,
		}); err != nil {
			return err
		}
	}
	if err := sel.CloseSeatMap(); err != nil {
		return err
	}

	if err := sel.OpenBaggage(); err != nil {
		return err
	}
	for _, svc := range services {
		if svc.Type != enums.ServiceTypeBaggage {
			continue
		}
		if svc.PassengerID == "" || svc.SegmentID == "" {
			continue
		}
		if err := sel.SetBaggage(BagChoice{
			PassengerID: svc.PassengerID,
			SegmentID:   svc.SegmentID,
			ServiceID:   svc.ID,
			Quantity:    svc.Quantity,
			Amount:      svc.Amount,
			Currency:    svc.Currency,
		}); err != nil {
			return err
		}
	}
	return sel.CloseBaggage()
}
