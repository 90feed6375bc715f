package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wayfarerhq/wayfarer-backend/api/responses"
	"github.com/wayfarerhq/wayfarer-backend/api/validators"
	"github.com/wayfarerhq/wayfarer-backend/internal/cart"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type addOfferRequest struct {
	OfferID      string          `json:"offerId" validate:"required"`
	Offer        json.RawMessage `json:"offer,omitempty"`
	SearchParams json.RawMessage `json:"searchParams,omitempty"`
	PassengerIDs []string        `json:"passengerIds,omitempty"`
}

type serviceRequest struct {
	ID          string `json:"id" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=seat baggage"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	Amount      string `json:"amount" validate:"required"`
	Currency    string `json:"currency" validate:"required"`
	PassengerID string `json:"passengerId,omitempty"`
	SegmentID   string `json:"segmentId,omitempty"`
	Designator  string `json:"designator,omitempty"`
}

type setServicesRequest struct {
	Services []serviceRequest `json:"services" validate:"required,dive"`
}

type cartItemView struct {
	OfferID      string                 `json:"offerId"`
	Offer        json.RawMessage        `json:"offer,omitempty"`
	PassengerIDs []string               `json:"passengerIds,omitempty"`
	Services     types.SelectedServices `json:"services"`
}

type cartView struct {
	CartID string         `json:"cartId"`
	Items  []cartItemView `json:"items"`
}

func newCartView(record *models.CartRecord) cartView {
	view := cartView{
		CartID: record.ID.String(),
		Items:  []cartItemView{},
	}
	for i := range record.Items {
		item := &record.Items[i]
		services := cart.ServicesView(item)
		if services == nil {
			services = types.SelectedServices{}
		}
		view.Items = append(view.Items, cartItemView{
			OfferID:      item.OfferID,
			Offer:        item.Offer,
			PassengerIDs: item.PassengerIDs,
			Services:     services,
		})
	}
	return view
}

func CreateCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		record, err := svc.CreateSession(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(record))
	}
}

func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.Get(ctx, cartID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(record))
	}
}

func AddCartOffer(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req addOfferRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		item, err := svc.AddOffer(ctx, cartID, cart.AddOfferInput{
			OfferID:      req.OfferID,
			Offer:        req.Offer,
			SearchParams: req.SearchParams,
			PassengerIDs: req.PassengerIDs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		services := cart.ServicesView(item)
		if services == nil {
			services = types.SelectedServices{}
		}
		responses.WriteSuccess(w, cartItemView{
			OfferID:      item.OfferID,
			Offer:        item.Offer,
			PassengerIDs: item.PassengerIDs,
			Services:     services,
		})
	}
}

// SetCartServices replaces the ancillary selection for an offer. A cart
// that does not hold the offer acknowledges without changing anything.
func SetCartServices(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offerID := chi.URLParam(r, "offerID")

		var req setServicesRequest
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

		if err := svc.SetServicesForOffer(ctx, cartID, offerID, services); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func RemoveCartOffer(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offerID := chi.URLParam(r, "offerID")
		if offerID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "offer id required"))
			return
		}

		if err := svc.ClearOffer(ctx, cartID, offerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cartID, err := cartIDFromURL(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.ClearAll(ctx, cartID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func cartIDFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "cartID")
	cartID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id must be a valid uuid")
	}
	return cartID, nil
}
