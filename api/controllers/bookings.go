package controllers

import (
	"net/http"

	"github.com/wayfarerhq/wayfarer-backend/api/responses"
	"github.com/wayfarerhq/wayfarer-backend/api/validators"
	"github.com/wayfarerhq/wayfarer-backend/internal/booking"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
)

type bookingStatusRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Wait      bool   `json:"wait,omitempty"`
}

// BookingStatus returns the booking outcome for a payment session. The
// body is the raw status record; a session that has no record yet reads
// as processing so the storefront keeps polling. With wait set the
// request blocks server-side until the record turns terminal or the
// poller's attempt budget runs out, at which point the last observed
// (processing) record is returned.
func BookingStatus(svc booking.StatusService, poller *booking.Poller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req bookingStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if req.Wait && poller != nil {
			result, err := poller.Wait(ctx, req.SessionID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteJSON(w, http.StatusOK, result.Status)
			return
		}

		status, err := svc.Lookup(ctx, req.SessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, status)
	}
}
