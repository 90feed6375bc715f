package ancillary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wayfarerhq/wayfarer-backend/pkg/duffel"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// SupplierClient is the slice of the supplier API the ancillary flow uses.
type SupplierClient interface {
	GetOffer(ctx context.Context, offerID string) (*duffel.Offer, error)
	ListSeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error)
}

// Service resolves offer passengers and seat maps from the supplier.
type Service interface {
	Passengers(ctx context.Context, offerID string, fallbackCount int) ([]types.Passenger, error)
	SeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error)
}

type service struct {
	supplier SupplierClient
	logg     *logger.Logger
}

// NewService builds the ancillary service.
func NewService(supplier SupplierClient, logg *logger.Logger) (Service, error) {
	if supplier == nil {
		return nil, fmt.Errorf("supplier client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{supplier: supplier, logg: logg}, nil
}

// Passengers returns the supplier-assigned passenger identities for an
// offer. When the lookup fails the selector still has to render, so the
// result degrades to synthetic placeholders sized to the originating
// search's passenger count.
func (s *service) Passengers(ctx context.Context, offerID string, fallbackCount int) ([]types.Passenger, error) {
	if offerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.supplier.GetOffer(ctx, offerID)
	if err == nil && len(offer.Passengers) > 0 {
		out := make([]types.Passenger, 0, len(offer.Passengers))
		for _, p := range offer.Passengers {
			out = append(out, types.Passenger{
				ID:         p.ID,
				Type:       enums.PassengerType(p.Type),
				GivenName:  p.GivenName,
				FamilyName: p.FamilyName,
			})
		}
		return out, nil
	}

	lctx := s.logg.WithOfferID(ctx, offerID)
	if err != nil {
		s.logg.Warn(lctx, fmt.Sprintf("passenger lookup failed, using placeholders: %v", err))
	} else {
		s.logg.Info(lctx, "offer has no passengers, using placeholders")
	}
	return SyntheticPassengers(fallbackCount), nil
}

// SeatMaps proxies the supplier's seat map payloads untouched.
func (s *service) SeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error) {
	if offerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	maps, err := s.supplier.ListSeatMaps(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seat maps")
	}
	return maps, nil
}

// SyntheticPassengers builds placeholder identities passenger_1..n used
// when the supplier lookup is unavailable. Counts below one yield a
// single placeholder so the selector always has someone to assign to.
func SyntheticPassengers(count int) []types.Passenger {
	if count < 1 {
		count = 1
	}
	out := make([]types.Passenger, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, types.Passenger{
			ID:   fmt.Sprintf("passenger_%d", i),
			Type: "adult",
		})
	}
	return out
}
