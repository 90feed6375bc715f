package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CartItem holds one flight offer in a cart. The offer and search payloads
// are supplier-opaque blobs; only the offer id is interpreted here.
// At most one item per offer id exists in a cart (unique index).
type CartItem struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID       uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_offer"`
	OfferID      string            `gorm:"column:offer_id;not null;uniqueIndex:idx_cart_items_cart_offer"`
	Offer        json.RawMessage   `gorm:"column:offer;type:jsonb"`
	SearchParams json.RawMessage   `gorm:"column:search_params;type:jsonb"`
	PassengerIDs pq.StringArray    `gorm:"column:passenger_ids;type:text[]"`
	Services     []CartItemService `gorm:"foreignKey:CartItemID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
