package controllers

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer-backend/api/responses"
	"github.com/wayfarerhq/wayfarer-backend/api/validators"
	"github.com/wayfarerhq/wayfarer-backend/internal/ancillary"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type offerPassengersRequest struct {
	OfferID        string `json:"offerId" validate:"required"`
	PassengerCount int    `json:"passengerCount,omitempty" validate:"omitempty,min=1,max=9"`
}

type offerPassengersResponse struct {
	OfferID    string            `json:"offerId"`
	Passengers []types.Passenger `json:"passengers"`
}

// OfferPassengers resolves the supplier-assigned passenger identities for
// an offer. The response shape is fixed: the selector consumes it directly.
func OfferPassengers(svc ancillary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req offerPassengersRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		passengers, err := svc.Passengers(ctx, req.OfferID, req.PassengerCount)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, offerPassengersResponse{
			OfferID:    req.OfferID,
			Passengers: passengers,
		})
	}
}

type offerSeatMapsRequest struct {
	OfferID string `json:"offerId" validate:"required"`
}

// OfferSeatMaps passes the supplier's seat maps through untouched so the
// seat picker renders whatever cabin layout the airline published.
func OfferSeatMaps(svc ancillary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req offerSeatMapsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		maps, err := svc.SeatMaps(ctx, req.OfferID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, maps)
	}
}
