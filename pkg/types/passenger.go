package types

import "github.com/wayfarerhq/wayfarer-backend/pkg/enums"

// Passenger is the traveler shape shared by the storefront and the
// supplier order contract. Identity and loyalty fields are optional and
// pass through unset when absent.
type Passenger struct {
	ID          string              `json:"id"`
	Type        enums.PassengerType `json:"type,omitempty"`
	Title       string              `json:"title,omitempty"`
	GivenName   string              `json:"given_name"`
	FamilyName  string              `json:"family_name"`
	BornOn      string              `json:"born_on,omitempty"`
	Gender      string              `json:"gender,omitempty"`
	Email       string              `json:"email,omitempty"`
	PhoneNumber string              `json:"phone_number,omitempty"`

	IdentityDocuments []IdentityDocument `json:"identity_documents,omitempty"`
	LoyaltyAccounts   []LoyaltyAccount   `json:"loyalty_programme_accounts,omitempty"`
}

// IdentityDocument mirrors the supplier's travel document payload.
type IdentityDocument struct {
	Type             string `json:"type"`
	UniqueIdentifier string `json:"unique_identifier"`
	IssuingCountry   string `json:"issuing_country_code,omitempty"`
	ExpiresOn        string `json:"expires_on,omitempty"`
}

// LoyaltyAccount mirrors the supplier's frequent flyer payload.
type LoyaltyAccount struct {
	AirlineIATACode string `json:"airline_iata_code"`
	AccountNumber   string `json:"account_number"`
}
