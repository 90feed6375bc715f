package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	stripeclient "github.com/wayfarerhq/wayfarer-backend/pkg/stripe"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

// Metadata keys stashed on the payment session. They are the only channel
// through which the webhook handler reconstructs the booking request.
const (
	MetaOfferID       = "offer_id"
	MetaPassengers    = "passengers"
	MetaServices      = "services"
	MetaOfferAmount   = "offer_amount"
	MetaOfferCurrency = "offer_currency"
)

// PaymentClient is the slice of the payment provider used at checkout.
type PaymentClient interface {
	CreateCheckoutSession(ctx context.Context, input stripeclient.CheckoutSessionInput) (*stripeclient.CheckoutSession, error)
}

// Service turns a priced cart into a hosted payment session.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*Session, error)
}

// InitiateInput is the storefront's checkout request. Passengers is the
// traveler payload kept verbatim so optional identity fields survive the
// round trip to the supplier untouched.
type InitiateInput struct {
	OfferID     string
	Passengers  json.RawMessage
	Services    types.SelectedServices
	TotalAmount string
	Currency    string
	OfferData   json.RawMessage
}

// Session is the hosted payment page handed back to the storefront.
type Session struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type service struct {
	payments PaymentClient
	logg     *logger.Logger
}

// NewService builds the checkout service.
func NewService(payments PaymentClient, logg *logger.Logger) (Service, error) {
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{payments: payments, logg: logg}, nil
}

// Initiate validates the request, recomputes the grand total from the
// offer's base fare plus the selected ancillaries, and opens a hosted
// payment session carrying everything the webhook handler needs later.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*Session, error) {
	if input.OfferID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	passengerCount, err := countJSONArray(input.Passengers)
	if err != nil || passengerCount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one passenger required")
	}
	currency, err := enums.ParseCurrency(input.Currency)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", input.Currency))
	}

	total, err := s.resolveTotal(input)
	if err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be positive")
	}

	amountMinor, err := MinorUnits(total, currency)
	if err != nil {
		return nil, err
	}

	servicesJSON, err := json.Marshal(input.Services.OrderServices())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode services")
	}

	metadata := map[string]string{
		MetaOfferID:       input.OfferID,
		MetaPassengers:    string(input.Passengers),
		MetaServices:      string(servicesJSON),
		MetaOfferAmount:   total.StringFixed(2),
		MetaOfferCurrency: currency.String(),
	}
	if currency == enums.CurrencyJPY {
		metadata[MetaOfferAmount] = total.StringFixed(0)
	}

	created, err := s.payments.CreateCheckoutSession(ctx, stripeclient.CheckoutSessionInput{
		AmountMinor: amountMinor,
		Currency:    currency.String(),
		Description: fmt.Sprintf("Flight booking %s", input.OfferID),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}

	lctx := s.logg.WithOfferID(ctx, input.OfferID)
	lctx = s.logg.WithSessionID(lctx, created.ID)
	s.logg.Info(lctx, fmt.Sprintf("checkout session opened for %s %s", metadata[MetaOfferAmount], currency))

	return &Session{SessionID: created.ID, URL: created.URL}, nil
}

// resolveTotal prefers recomputing from the offer snapshot; the submitted
// total is only trusted when no snapshot came along.
func (s *service) resolveTotal(input InitiateInput) (decimal.Decimal, error) {
	base := baseAmountFromOffer(input.OfferData)
	if base != "" {
		return ComputeGrandTotal(base, input.Services)
	}

	total, err := decimal.NewFromString(input.TotalAmount)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid total amount %q", input.TotalAmount))
	}
	return total, nil
}

func baseAmountFromOffer(offerData json.RawMessage) string {
	if len(offerData) == 0 {
		return ""
	}
	var offer struct {
		TotalAmount string `json:"total_amount"`
	}
	if err := json.Unmarshal(offerData, &offer); err != nil {
		return ""
	}
	return offer.TotalAmount
}

func countJSONArray(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return 0, err
	}
	return len(elems), nil
}
