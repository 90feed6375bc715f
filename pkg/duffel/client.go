package duffel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/wayfarerhq/wayfarer-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.duffel.com"
	apiVersion                 = "v2"
	requestBodyReadLimit int64 = 2048
)

var errAPIKeyRequired = errors.New("duffel api key is required")

// Client wraps the Duffel flights API surface the storefront depends on:
// offer lookup, seat maps and order creation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured Duffel base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Duffel client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// OfferPassenger is the lightweight traveler record attached to an offer.
type OfferPassenger struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Offer is the subset of a priced offer the storefront interprets; the
// remainder of the payload stays opaque.
type Offer struct {
	ID            string           `json:"id"`
	TotalAmount   string           `json:"total_amount"`
	TotalCurrency string           `json:"total_currency"`
	ExpiresAt     time.Time        `json:"expires_at"`
	Passengers    []OfferPassenger `json:"passengers"`
}

// Order is the confirmed supplier reservation.
type Order struct {
	ID               string `json:"id"`
	BookingReference string `json:"booking_reference"`
}

// OrderPayment declares the amount collected for the order.
type OrderPayment struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrderInput carries everything Duffel needs to instantly ticket an
// offer that has already been paid for.
type CreateOrderInput struct {
	OfferID    string          `json:"-"`
	Passengers json.RawMessage `json:"-"`
	Services   json.RawMessage `json:"-"`
	Payment    OrderPayment    `json:"-"`
}

// GetOffer fetches a single offer including its passenger list.
func (c *Client) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "duffel client not configured")
	}
	trimmed := strings.TrimSpace(offerID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
	}

	endpoint := fmt.Sprintf("%s/air/offers/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	var apiResp struct {
		Data Offer `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &apiResp, "offer lookup"); err != nil {
		return nil, err
	}
	return &apiResp.Data, nil
}

// ListSeatMaps returns the seat maps for an offer as opaque payloads; the
// storefront renders them without interpreting their structure here.
func (c *Client) ListSeatMaps(ctx context.Context, offerID string) ([]json.RawMessage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "duffel client not configured")
	}
	trimmed := strings.TrimSpace(offerID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
	}

	endpoint := fmt.Sprintf("%s/air/seat_maps?offer_id=%s", strings.TrimRight(c.baseURL, "/"), url.QueryEscape(trimmed))
	var apiResp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &apiResp, "seat map lookup"); err != nil {
		return nil, err
	}
	return apiResp.Data, nil
}

// CreateOrder books the offer. The passenger and service payloads are
// passed through verbatim so optional identity fields survive untouched,
// and the payment declaration must equal the amount actually captured.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "duffel client not configured")
	}
	if strings.TrimSpace(input.OfferID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id is required")
	}
	if len(input.Passengers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "passengers are required")
	}
	if input.Payment.Amount == "" || input.Payment.Currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount and currency are required")
	}

	payment := input.Payment
	if payment.Type == "" {
		payment.Type = "balance"
	}

	body := map[string]any{
		"data": map[string]any{
			"type":            "instant",
			"selected_offers": []string{input.OfferID},
			"passengers":      input.Passengers,
			"payments":        []OrderPayment{payment},
		},
	}
	if len(input.Services) > 0 {
		body["data"].(map[string]any)["services"] = input.Services
	}

	endpoint := fmt.Sprintf("%s/air/orders", strings.TrimRight(c.baseURL, "/"))
	var apiResp struct {
		Data Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, endpoint, body, &apiResp, "order creation"); err != nil {
		return nil, err
	}
	return &apiResp.Data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, dest any, operation string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal "+operation+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+operation+" request")
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Duffel-Version", apiVersion)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+operation+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			operation+" failed")
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+operation+" response")
	}
	return nil
}
