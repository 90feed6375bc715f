package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wayfarerhq/wayfarer-backend/internal/cart"
	checkoutsvc "github.com/wayfarerhq/wayfarer-backend/internal/checkout"
	"github.com/wayfarerhq/wayfarer-backend/pkg/config"
	"github.com/wayfarerhq/wayfarer-backend/pkg/db/models"
	"github.com/wayfarerhq/wayfarer-backend/pkg/enums"
	"github.com/wayfarerhq/wayfarer-backend/pkg/logger"
	"github.com/wayfarerhq/wayfarer-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) CreateSession(ctx context.Context) (*models.CartRecord, error) {
	return &models.CartRecord{ID: uuid.New()}, nil
}

func (stubCartService) Get(ctx context.Context, cartID uuid.UUID) (*models.CartRecord, error) {
	return &models.CartRecord{ID: cartID}, nil
}

func (stubCartService) AddOffer(ctx context.Context, cartID uuid.UUID, input cart.AddOfferInput) (*models.CartItem, error) {
	return &models.CartItem{ID: uuid.New(), CartID: cartID, OfferID: input.OfferID}, nil
}

func (stubCartService) SetServicesForOffer(ctx context.Context, cartID uuid.UUID, offerID string, services types.SelectedServices) error {
	return nil
}

func (stubCartService) ClearOffer(ctx context.Context, cartID uuid.UUID, offerID string) error {
	return nil
}

func (stubCartService) ClearAll(ctx context.Context, cartID uuid.UUID) error {
	return nil
}

type stubAncillaryService struct{}

func (stubAncillaryService) Passengers(ctx context.Context, offerID string, fallbackCount int) ([]types.Passenger, error) {
	return []types.Passenger{{ID: "pas_1", Type: "adult", GivenName: "Amelia", FamilyName: "Earhart"}}, nil
}

func (stubAncillaryService) SeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error) {
	return []json.RawMessage{json.RawMessage(`{"id":"sea_1"}`)}, nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) Initiate(ctx context.Context, input checkoutsvc.InitiateInput) (*checkoutsvc.Session, error) {
	return &checkoutsvc.Session{SessionID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type stubStatusService struct{}

func (stubStatusService) Lookup(ctx context.Context, sessionID string) (*types.BookingStatus, error) {
	return &types.BookingStatus{Status: enums.BookingStateProcessing}, nil
}

func (stubStatusService) Claim(ctx context.Context, sessionID string) (bool, error) {
	return true, nil
}

func (stubStatusService) WriteFinal(ctx context.Context, sessionID string, status types.BookingStatus) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logg := logger.New(logger.Options{
		ServiceName: "test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})

	return NewRouter(RouterParams{
		Config: &config.Config{
			App: config.AppConfig{Env: "dev", Port: "8080"},
		},
		Logger:           logg,
		DB:               stubPinger{},
		Redis:            stubPinger{},
		CartService:      stubCartService{},
		AncillaryService: stubAncillaryService{},
		CheckoutService:  stubCheckoutService{},
		StatusService:    stubStatusService{},
	})
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCheckoutWireContract(t *testing.T) {
	router := newTestRouter(t)

	body := `{
		"offerId": "off_123",
		"passengers": [{"id":"pas_1","given_name":"Amelia","family_name":"Earhart"}],
		"totalAmount": "605.00",
		"currency": "USD"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	// The response is the raw {sessionId, url} pair, no envelope.
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp["sessionId"] != "cs_test_1" || resp["url"] != "https://pay.example/cs_test_1" {
		t.Fatalf("response = %s", rec.Body.String())
	}
}

func TestBookingStatusDefaultsToProcessing(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/status", strings.NewReader(`{"sessionId":"cs_unknown"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var status types.BookingStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if status.Status != enums.BookingStateProcessing {
		t.Fatalf("status = %s, want processing", status.Status)
	}
}

func TestOfferPassengersWireContract(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/passengers", strings.NewReader(`{"offerId":"off_123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		OfferID    string            `json:"offerId"`
		Passengers []types.Passenger `json:"passengers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if resp.OfferID != "off_123" || len(resp.Passengers) != 1 {
		t.Fatalf("response = %s", rec.Body.String())
	}
}

func TestOfferSeatMapsPassthrough(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/seat-maps", strings.NewReader(`{"offerId":"off_123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("response = %s", rec.Body.String())
	}
}

func TestCreateCart(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			CartID string `json:"cartId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if _, err := uuid.Parse(envelope.Data.CartID); err != nil {
		t.Fatalf("cart id not a uuid: %s", rec.Body.String())
	}
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"offerId":"off_1","bogus":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
	}
}
