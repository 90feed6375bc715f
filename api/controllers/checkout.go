package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/wayfarerhq/wayfarer-backend/api/responses"
	"github.com/wayfarerhq/wayfarer-backend/api/validators"
	"github.com/wayfarerhq/wayfarer-backend/internal/checkout"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type checkoutRequest struct {
	OfferID     string           `json:"offerId" validate:"required"`
	Passengers  json.RawMessage  `json:"passengers" validate:"required"`
	Services    []serviceRequest `json:"services,omitempty" validate:"omitempty,dive"`
	TotalAmount string           `json:"totalAmount" validate:"required"`
	Currency    string           `json:"currency" validate:"required"`
	OfferData   json.RawMessage  `json:"offerData,omitempty"`
}

// InitiateCheckout opens a hosted payment session for the priced offer.
// The response is the fixed {sessionId, url} pair the storefront redirects
// through.
func InitiateCheckout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		services := make(types.SelectedServices, 0, len(req.Services))
		for _, svcReq := range req.Services {
			serviceType, err := enums.ParseServiceType(svcReq.Type)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			services = append(services, types.SelectedService{
				ID:          svcReq.ID,
				Type:        serviceType,
				Quantity:    svcReq.Quantity,
				Amount:      svcReq.Amount,
				Currency:    svcReq.Currency,
				PassengerID: svcReq.PassengerID,
				SegmentID:   svcReq.SegmentID,
				Designator:  svcReq.Designator,
			})
		}

		session, err := svc.Initiate(ctx, checkout.InitiateInput{
			OfferID:     req.OfferID,
			Passengers:  req.Passengers,
			Services:    services,
			TotalAmount: req.TotalAmount,
			Currency:    req.Currency,
			OfferData:   req.OfferData,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, session)
	}
}
