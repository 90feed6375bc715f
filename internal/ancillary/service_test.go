package ancillary

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer-backend/pkg/duffel"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
)

type stubSupplier struct {
	offer    *duffel.Offer
	offerErr error
	seatMaps []json.RawMessage
	seatErr  error
}

func (s *stubSupplier) GetOffer(ctx context.Context, offerID string) (*duffel.Offer, error) {
	if s.offerErr != nil {
		return nil, s.offerErr
	}
	return s.offer, nil
}

func (s *stubSupplier) ListSeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error) {
	if s.seatErr != nil {
		return nil, s.seatErr
	}
	return s.seatMaps, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func TestPassengersFromSupplier(t *testing.T) {
	supplier := &stubSupplier{
		offer: &duffel.Offer{
			ID: "off_123",
			Passengers: []duffel.OfferPassenger{
				{ID: "pas_1", Type: "adult", GivenName: "Amelia", FamilyName: "Earhart"},
				{ID: "pas_2", Type: "child"},
			},
		},
	}
	svc, err := NewService(supplier, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.Passengers(context.Background(), "off_123", 4)
	if err != nil {
		t.Fatalf("Passengers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("passengers = %d, want 2", len(got))
	}
	if got[0].ID != "pas_1" || got[0].GivenName != "Amelia" {
		t.Fatalf("passengers[0] = %+v", got[0])
	}
	if got[1].Type != "child" {
		t.Fatalf("passengers[1].Type = %s, want child", got[1].Type)
	}
}

func TestPassengersFallBackToPlaceholders(t *testing.T) {
	supplier := &stubSupplier{offerErr: errors.New("supplier down")}
	svc, err := NewService(supplier, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.Passengers(context.Background(), "off_123", 3)
	if err != nil {
		t.Fatalf("Passengers: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("passengers = %d, want 3", len(got))
	}
	for i, p := range got {
		want := "passenger_" + string(rune('1'+i))
		if p.ID != want {
			t.Fatalf("passengers[%d].ID = %s, want %s", i, p.ID, want)
		}
		if p.Type != "adult" {
			t.Fatalf("passengers[%d].Type = %s, want adult", i, p.Type)
		}
	}
}

func TestSyntheticPassengersMinimumOne(t *testing.T) {
	got := SyntheticPassengers(0)
	if len(got) != 1 {
		t.Fatalf("passengers = %d, want 1", len(got))
	}
	if got[0].ID != "passenger_1" {
		t.Fatalf("passengers[0].ID = %s, want passenger_1", got[0].ID)
	}
}

func TestSeatMapsPassthrough(t *testing.T) {
	raw := json.RawMessage(`{"id":"sea_1","cabins":[]}`)
	supplier := &stubSupplier{seatMaps: []json.RawMessage{raw}}
	svc, err := NewService(supplier, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	maps, err := svc.SeatMaps(context.Background(), "off_123")
	if err != nil {
		t.Fatalf("SeatMaps: %v", err)
	}
	if len(maps) != 1 || string(maps[0]) != string(raw) {
		t.Fatalf("seat maps = %v", maps)
	}
}

func TestSeatMapsWrapsSupplierError(t *testing.T) {
	supplier := &stubSupplier{seatErr: errors.New("boom")}
	svc, err := NewService(supplier, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if _, err := svc.SeatMaps(context.Background(), "off_123"); err == nil {
		t.Fatal("expected error from supplier")
	}
}
