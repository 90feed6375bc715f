package ancillary

import (
	"fmt"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// Stage identifies where the traveler is in the ancillary wizard.
type Stage string

const (
	StageSeatDecision     Stage = "seat_decision"
	StageSeatSelection    Stage = "seat_selection"
	StageBaggageDecision  Stage = "baggage_decision"
	StageBaggageSelection Stage = "baggage_selection"
	StageComplete         Stage = "complete"
)

// Selection walks one offer through the optional seat and baggage steps.
// Seats must fully resolve (selection or explicit skip) before baggage is
// offered; declining both proceeds straight to completion. Closing a step
// without choosing anything means zero services of that type.
type Selection struct {
	offerID      string
	passengerIDs map[string]struct{}
	stage        Stage
	seats        []types.SelectedService
	bags         []types.SelectedService
}

// SeatChoice is one seat assignment request.
type SeatChoice struct {
	PassengerID string
	SegmentID   string
	ServiceID   string
	Designator  string
	Amount      string
	Currency    string
}

// BagChoice sets the baggage quantity for one passenger/segment service.
// Quantity zero removes the selection.
type BagChoice struct {
	PassengerID string
	SegmentID   string
	ServiceID   string
	Quantity    int
	Amount      string
	Currency    string
}

// NewSelection starts the wizard for an offer and its traveler list.
func NewSelection(offerID string, passengers []types.Passenger) (*Selection, error) {
	if offerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if len(passengers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one passenger required")
	}
	ids := make(map[string]struct{}, len(passengers))
	for _, p := range passengers {
		ids[p.ID] = struct{}{}
	}
	return &Selection{
		offerID:      offerID,
		passengerIDs: ids,
		stage:        StageSeatDecision,
	}, nil
}

// Stage reports the current wizard stage.
func (s *Selection) Stage() Stage {
	return s.stage
}

// OfferID returns the offer this selection belongs to.
func (s *Selection) OfferID() string {
	return s.offerID
}

// OpenSeatMap opts the traveler into seat selection.
func (s *Selection) OpenSeatMap() error {
	if s.stage != StageSeatDecision {
		return s.stageError(StageSeatDecision)
	}
	s.stage = StageSeatSelection
	return nil
}

// DeclineSeats skips seat selection entirely.
func (s *Selection) DeclineSeats() error {
	if s.stage != StageSeatDecision {
		return s.stageError(StageSeatDecision)
	}
	s.stage = StageBaggageDecision
	return nil
}

// AssignSeat records a seat for a passenger on a segment. A designator
// held by another passenger on the same segment rejects the request until
// the conflicting seat is deselected, and a passenger may hold at most one
// seat per segment.
func (s *Selection) AssignSeat(choice SeatChoice) error {
	if s.stage != StageSeatSelection {
		return s.stageError(StageSeatSelection)
	}
	if choice.PassengerID == "" || choice.SegmentID == "" || choice.ServiceID == "" || choice.Designator == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "passenger, segment, service and designator are required")
	}
	if _, ok := s.passengerIDs[choice.PassengerID]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown passenger %q", choice.PassengerID))
	}

	for _, seat := range s.seats {
		if seat.SegmentID != choice.SegmentID {
			continue
		}
		if seat.Designator == choice.Designator {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("seat %s is already assigned", choice.Designator))
		}
		if seat.PassengerID == choice.PassengerID {
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("passenger %s already holds seat %s on this segment", choice.PassengerID, seat.Designator))
		}
	}

	s.seats = append(s.seats, types.SelectedService{
		ID:          choice.ServiceID,
		Type:        enums.ServiceTypeSeat,
		Quantity:    1,
		Amount:      choice.Amount,
		Currency:    choice.Currency,
		PassengerID: choice.PassengerID,
		SegmentID:   choice.SegmentID,
		Designator:  choice.Designator,
	})
	return nil
}

// UnassignSeat releases the passenger's seat on a segment, if any.
func (s *Selection) UnassignSeat(passengerID, segmentID string) error {
	if s.stage != StageSeatSelection {
		return s.stageError(StageSeatSelection)
	}
	for i, seat := range s.seats {
		if seat.PassengerID == passengerID && seat.SegmentID == segmentID {
			s.seats = append(s.seats[:i], s.seats[i+1:]...)
			return nil
		}
	}
	return nil
}

// CloseSeatMap resolves the seat step with whatever was chosen, possibly
// nothing, and moves on to baggage.
func (s *Selection) CloseSeatMap() error {
	if s.stage != StageSeatSelection {
		return s.stageError(StageSeatSelection)
	}
	s.stage = StageBaggageDecision
	return nil
}

// OpenBaggage opts the traveler into baggage selection.
func (s *Selection) OpenBaggage() error {
	if s.stage != StageBaggageDecision {
		return s.stageError(StageBaggageDecision)
	}
	s.stage = StageBaggageSelection
	return nil
}

// DeclineBaggage skips baggage and completes the wizard.
func (s *Selection) DeclineBaggage() error {
	if s.stage != StageBaggageDecision {
		return s.stageError(StageBaggageDecision)
	}
	s.stage = StageComplete
	return nil
}

// SetBaggage replaces the quantity for one passenger/segment allowance.
func (s *Selection) SetBaggage(choice BagChoice) error {
	if s.stage != StageBaggageSelection {
		return s.stageError(StageBaggageSelection)
	}
	if choice.PassengerID == "" || choice.SegmentID == "" || choice.ServiceID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "passenger, segment and service are required")
	}
	if _, ok := s.passengerIDs[choice.PassengerID]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown passenger %q", choice.PassengerID))
	}
	if choice.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	for i, bag := range s.bags {
		if bag.ID == choice.ServiceID && bag.PassengerID == choice.PassengerID && bag.SegmentID == choice.SegmentID {
			if choice.Quantity == 0 {
				s.bags = append(s.bags[:i], s.bags[i+1:]...)
				return nil
			}
			s.bags[i].Quantity = choice.Quantity
			return nil
		}
	}
	if choice.Quantity == 0 {
		return nil
	}

	s.bags = append(s.bags, types.SelectedService{
		ID:          choice.ServiceID,
		Type:        enums.ServiceTypeBaggage,
		Quantity:    choice.Quantity,
		Amount:      choice.Amount,
		Currency:    choice.Currency,
		PassengerID: choice.PassengerID,
		SegmentID:   choice.SegmentID,
	})
	return nil
}

// CloseBaggage resolves the baggage step and completes the wizard.
func (s *Selection) CloseBaggage() error {
	if s.stage != StageBaggageSelection {
		return s.stageError(StageBaggageSelection)
	}
	s.stage = StageComplete
	return nil
}

// Services returns the verbose representation in insertion order, seats
// before bags. The minimal order list is derived from it via
// types.SelectedServices so the two cannot diverge.
func (s *Selection) Services() types.SelectedServices {
	out := make(types.SelectedServices, 0, len(s.seats)+len(s.bags))
	out = append(out, s.seats...)
	out = append(out, s.bags...)
	return out
}

// OrderServices returns the minimal {id, quantity} pairs the supplier's
// order-creation contract accepts.
func (s *Selection) OrderServices() []types.OrderService {
	return s.Services().OrderServices()
}

func (s *Selection) stageError(want Stage) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict,
		fmt.Sprintf("operation requires stage %s, current stage is %s", want, s.stage))
}
