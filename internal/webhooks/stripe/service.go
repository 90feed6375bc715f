package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"

	"github.com/wayfarerhq/wayfarer-backend/internal/booking"
	"github.com/wayfarerhq/wayfarer-backend/internal/checkout"
	"github.com/wayfarerhq/wayfarer-backend/pkg/duffel"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/metrics"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type supplierClient interface {
	CreateOrder(ctx context.Context, input duffel.CreateOrderInput) (*duffel.Order, error)
}

// ServiceParams wires the webhook service's collaborators.
type ServiceParams struct {
	Supplier      supplierClient
	StatusService booking.StatusService
	Metrics       *metrics.BookingMetrics
	Logger        *logger.Logger
}

// Service turns completed payment sessions into supplier orders. It is the
// only writer of booking status records: the session is claimed first, the
// order placed second, the terminal outcome recorded last, so a session
// books at most once no matter how many times the event is delivered.
type Service struct {
	supplier supplierClient
	status   booking.StatusService
	metrics  *metrics.BookingMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "supplier client required")
	}
	if params.StatusService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "status service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		supplier: params.Supplier,
		status:   params.StatusService,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// HandleEvent processes one verified Stripe event. Event types other than
// checkout completion are acknowledged without action.
//
// Error contract: a returned error with a retryable code means no outcome
// reached the booking status record, and the caller may have the event
// redelivered; every other error corresponds to an outcome that is already
// recorded (or permanently unprocessable) and must not be retried.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.handleCompletedSession(ctx, &session)
	default:
		return nil
	}
}

func (s *Service) handleCompletedSession(ctx context.Context, session *stripe.CheckoutSession) error {
	if session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	start := time.Now()
	lctx := s.logg.WithSessionID(ctx, session.ID)

	claimed, err := s.status.Claim(ctx, session.ID)
	if err != nil {
		return err
	}
	if !claimed {
		s.metrics.IncDuplicate()
		s.metrics.ObserveDuration("duplicate", time.Since(start))
		s.logg.Info(lctx, "session already claimed, skipping redelivery")
		return nil
	}

	request, err := bookingRequestFromMetadata(session.Metadata)
	if err != nil {
		writeErr := s.writeFailed(ctx, session.ID, request, err.Error())
		s.metrics.IncFailed()
		s.metrics.ObserveDuration("failed", time.Since(start))
		return multierr.Append(err, writeErr)
	}

	payment := paymentFromSession(session, request)
	order, err := s.supplier.CreateOrder(ctx, duffel.CreateOrderInput{
		OfferID:    request.OfferID,
		Passengers: request.Passengers,
		Services:   request.ServicesRaw,
		Payment:    payment,
	})
	if err != nil {
		s.logg.Error(lctx, "supplier order creation failed", err)
		writeErr := s.writeFailed(ctx, session.ID, request, err.Error())
		s.metrics.IncFailed()
		s.metrics.ObserveDuration("failed", time.Since(start))
		// The outcome is recorded; the delivery itself succeeded.
		return writeErr
	}

	status := types.BookingStatus{
		Status:           enums.BookingStateConfirmed,
		BookingReference: order.BookingReference,
		DuffelOrderID:    order.ID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Passengers:       request.PassengerViews,
		Services:         request.Services,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.status.WriteFinal(ctx, session.ID, status); err != nil {
		s.logg.Error(lctx, "booking confirmed but status write failed", err)
		return err
	}

	s.metrics.IncConfirmed()
	s.metrics.ObserveDuration("confirmed", time.Since(start))
	s.logg.Info(lctx, fmt.Sprintf("booking confirmed: %s", order.BookingReference))
	return nil
}

func (s *Service) writeFailed(ctx context.Context, sessionID string, request *bookingRequest, reason string) error {
	status := types.BookingStatus{
		Status:    enums.BookingStateFailed,
		Error:     reason,
		Timestamp: time.Now().UTC(),
	}
	if request != nil {
		status.Passengers = request.PassengerViews
		status.Services = request.Services
	}
	return s.status.WriteFinal(ctx, sessionID, status)
}

// bookingRequest is the order reconstructed from session metadata.
type bookingRequest struct {
	OfferID        string
	Passengers     json.RawMessage
	ServicesRaw    json.RawMessage
	Services       []types.OrderService
	PassengerViews []types.Passenger
	Amount         string
	Currency       string
}

func bookingRequestFromMetadata(metadata map[string]string) (*bookingRequest, error) {
	offerID := metadata[checkout.MetaOfferID]
	if offerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id missing from session metadata")
	}

	passengersRaw := metadata[checkout.MetaPassengers]
	if passengersRaw == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passengers missing from session metadata")
	}
	var passengerViews []types.Passenger
	if err := json.Unmarshal([]byte(passengersRaw), &passengerViews); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode passengers metadata")
	}
	if len(passengerViews) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passengers missing from session metadata")
	}

	request := &bookingRequest{
		OfferID:        offerID,
		Passengers:     json.RawMessage(passengersRaw),
		PassengerViews: passengerViews,
		Amount:         metadata[checkout.MetaOfferAmount],
		Currency:       metadata[checkout.MetaOfferCurrency],
	}

	if servicesRaw := metadata[checkout.MetaServices]; servicesRaw != "" {
		var services []types.OrderService
		if err := json.Unmarshal([]byte(servicesRaw), &services); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode services metadata")
		}
		if len(services) > 0 {
			request.ServicesRaw = json.RawMessage(servicesRaw)
			request.Services = services
		}
	}

	return request, nil
}

// paymentFromSession declares the amount actually captured. The captured
// total takes precedence over the metadata snapshot; the snapshot covers
// test fixtures where the provider omits the amount.
func paymentFromSession(session *stripe.CheckoutSession, request *bookingRequest) duffel.OrderPayment {
	payment := duffel.OrderPayment{Type: "balance"}
	if request != nil {
		payment.Amount = request.Amount
		payment.Currency = request.Currency
	}

	if session.AmountTotal > 0 && session.Currency != "" {
		currency, err := enums.ParseCurrency(strings.ToUpper(string(session.Currency)))
		if err == nil {
			exp := int32(2)
			if currency == enums.CurrencyJPY {
				exp = 0
			}
			payment.Amount = decimal.NewFromInt(session.AmountTotal).Shift(-exp).StringFixed(exp)
			payment.Currency = currency.String()
		}
	}
	return payment
}
