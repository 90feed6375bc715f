package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	stripeclient "github.com/wayfarerhq/wayfarer-backend/pkg/stripe"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type stubPayments struct {
	lastInput stripeclient.CheckoutSessionInput
	session   *stripeclient.CheckoutSession
	err       error
	calls     int
}

func (s *stubPayments) CreateCheckoutSession(ctx context.Context, input stripeclient.CheckoutSessionInput) (*stripeclient.CheckoutSession, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func validInput() InitiateInput {
	return InitiateInput{
		OfferID:    "off_123",
		Passengers: json.RawMessage(`[{"id":"pas_1","given_name":"Amelia","family_name":"Earhart"}]`),
		Services: types.SelectedServices{
			{ID: "ase_1", Type: enums.ServiceTypeSeat, Quantity: 1, Amount: "25.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1", Designator: "12A"},
			{ID: "bag_1", Type: enums.ServiceTypeBaggage, Quantity: 2, Amount: "40.00", Currency: "USD", PassengerID: "pas_1", SegmentID: "seg_1"},
		},
		TotalAmount: "605.00",
		Currency:    "USD",
		OfferData:   json.RawMessage(`{"id":"off_123","total_amount":"500.00","total_currency":"USD"}`),
	}
}

func newTestService(t *testing.T, payments PaymentClient) Service {
	t.Helper()
	svc, err := NewService(payments, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestInitiateComputesTotalAndStashesMetadata(t *testing.T) {
	payments := &stubPayments{session: &stripeclient.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}}
	svc := newTestService(t, payments)

	got, err := svc.Initiate(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if got.SessionID != "cs_test_1" || got.URL != "https://pay.example/cs_test_1" {
		t.Fatalf("session = %+v", got)
	}

	// 500.00 base + 25.00 seat + 2 x 40.00 bags = 605.00 → 60500 minor units.
	if payments.lastInput.AmountMinor != 60500 {
		t.Fatalf("amount minor = %d, want 60500", payments.lastInput.AmountMinor)
	}
	if payments.lastInput.Currency != "USD" {
		t.Fatalf("currency = %s, want USD", payments.lastInput.Currency)
	}

	meta := payments.lastInput.Metadata
	if meta[MetaOfferID] != "off_123" {
		t.Fatalf("offer id metadata = %q", meta[MetaOfferID])
	}
	if meta[MetaOfferAmount] != "605.00" || meta[MetaOfferCurrency] != "USD" {
		t.Fatalf("amount metadata = %q %q", meta[MetaOfferAmount], meta[MetaOfferCurrency])
	}

	var passengers []map[string]any
	if err := json.Unmarshal([]byte(meta[MetaPassengers]), &passengers); err != nil {
		t.Fatalf("passengers metadata not JSON: %v", err)
	}
	if len(passengers) != 1 || passengers[0]["given_name"] != "Amelia" {
		t.Fatalf("passengers metadata = %s", meta[MetaPassengers])
	}

	var services []types.OrderService
	if err := json.Unmarshal([]byte(meta[MetaServices]), &services); err != nil {
		t.Fatalf("services metadata not JSON: %v", err)
	}
	if len(services) != 2 || services[0].ID != "ase_1" || services[1].Quantity != 2 {
		t.Fatalf("services metadata = %s", meta[MetaServices])
	}
}

func TestInitiateTrustsSubmittedTotalWithoutSnapshot(t *testing.T) {
	payments := &stubPayments{session: &stripeclient.CheckoutSession{ID: "cs_test_2", URL: "https://pay.example/cs_test_2"}}
	svc := newTestService(t, payments)

	input := validInput()
	input.OfferData = nil
	input.Services = nil
	input.TotalAmount = "350.00"
	input.Currency = "AUD"

	if _, err := svc.Initiate(context.Background(), input); err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if payments.lastInput.AmountMinor != 35000 {
		t.Fatalf("amount minor = %d, want 35000", payments.lastInput.AmountMinor)
	}
}

func TestInitiateValidation(t *testing.T) {
	payments := &stubPayments{session: &stripeclient.CheckoutSession{ID: "cs", URL: "u"}}
	svc := newTestService(t, payments)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*InitiateInput)
	}{
		{"empty offer id", func(in *InitiateInput) { in.OfferID = "" }},
		{"no passengers", func(in *InitiateInput) { in.Passengers = json.RawMessage(`[]`) }},
		{"malformed passengers", func(in *InitiateInput) { in.Passengers = json.RawMessage(`{"oops":1}`) }},
		{"bad currency", func(in *InitiateInput) { in.Currency = "XXX" }},
		{"zero total", func(in *InitiateInput) {
			in.OfferData = nil
			in.Services = nil
			in.TotalAmount = "0.00"
		}},
		{"negative total", func(in *InitiateInput) {
			in.OfferData = nil
			in.Services = nil
			in.TotalAmount = "-10.00"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Initiate(ctx, input)
			if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if payments.calls != 0 {
		t.Fatalf("payment provider called %d times for invalid input", payments.calls)
	}
}

func TestInitiatePropagatesProviderError(t *testing.T) {
	payments := &stubPayments{err: errors.New("stripe down")}
	svc := newTestService(t, payments)

	if _, err := svc.Initiate(context.Background(), validInput()); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}
