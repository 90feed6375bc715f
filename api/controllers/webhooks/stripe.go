package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/wayfarerhq/wayfarer-backend/api/responses"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

type receivedAck struct {
	Received bool `json:"received"`
}

// retryableDelivery reports whether the handler failed before writing any
// booking outcome. Those failures carry retryable codes (infrastructure);
// validation failures are permanent and their outcome is already recorded.
func retryableDelivery(err error) bool {
	coded := pkgerrors.As(err)
	return coded != nil && pkgerrors.MetadataFor(coded.Code()).Retryable
}

// StripeWebhook handles payment completion events. The provider's delivery
// contract drives the response codes: a bad signature is the only client
// error. Once the event is authentic, the response depends on whether an
// outcome reached the booking status record. A recorded outcome (confirmed
// or failed) is acknowledged even when processing failed, because
// redelivery would not change it. A failure that left no record behind
// releases the event id mark and fails the delivery, so the provider
// retries and the booking can still complete.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook handler unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid stripe signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// The event has not been processed at all; failing the
			// delivery makes the provider redeliver it.
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook idempotency check"))
			return
		}
		if alreadyProcessed {
			responses.WriteJSON(w, http.StatusOK, receivedAck{Received: true})
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			if logg != nil {
				logg.Error(ctx, fmt.Sprintf("stripe event %s processing failed", event.ID), err)
			}
			if retryableDelivery(err) {
				// No outcome reached the booking record. Release the
				// event id and fail the delivery so the provider
				// redelivers; the session claim still caps the supplier
				// call at once per session.
				if delErr := guard.Delete(ctx, event.ID); delErr != nil && logg != nil {
					logg.Error(ctx, fmt.Sprintf("release of event %s failed", event.ID), delErr)
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}
			// The outcome is recorded against the session; re-delivery
			// would not change it, so the event id mark stays.
			responses.WriteJSON(w, http.StatusOK, receivedAck{Received: true})
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("stripe event %s processed", event.ID))
		}
		responses.WriteJSON(w, http.StatusOK, receivedAck{Received: true})
	}
}
